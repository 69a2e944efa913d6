package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/openddz/ddz-server/internal/card"
)

// startDeal shuffles, deals 17 cards to each seat, and opens bidding at seat 0.
// Must run on the room goroutine.
func (r *Room) startDeal() {
	deck := card.NewDeck()
	deck.Shuffle(r.rng)
	hands, bottom, err := deck.Deal()
	if err != nil {
		// NewDeck always yields 54 cards and we deal exactly once, so this
		// only trips on a programming error.
		panic(err)
	}

	r.gameID = uuid.New()
	r.bottom = bottom
	r.landlord = -1
	r.multiplier = 1
	r.bidsTaken = 0
	r.lastRobber = -1
	r.trick = nil
	r.passes = 0
	r.plays = nil
	r.phase = PhaseBidding

	for i, s := range r.seats {
		sortHand(hands[i])
		s.Hand = hands[i]
		s.Role = RoleNone
	}

	r.emit(Event{Type: EventGameStarted, Payload: map[string]interface{}{
		"gameId": r.gameID.String(),
	}})
	for i, s := range r.seats {
		r.emitTo(s.Account, Event{Type: EventPrivateDeal, Payload: map[string]interface{}{
			"seat":  i,
			"cards": cardValues(s.Hand),
		}})
	}

	r.turn = 0
	r.beginTurn()
	si := r.turn
	r.emit(Event{Type: EventBiddingTurn, Seat: &si})
}

// Rob records the seat's decision to rob the landlord position or decline.
// Each seat decides once, in seat order; the last seat to rob becomes
// landlord. If nobody robs the deal is abandoned.
func (r *Room) Rob(account string, rob bool) error {
	return r.do(func() error {
		if r.phase != PhaseBidding {
			return ErrWrongPhase
		}
		idx, s := r.seatOf(account)
		if s == nil {
			return ErrSeatNotFound
		}
		if idx != r.turn {
			return ErrNotYourTurn
		}
		r.applyRob(idx, rob)
		return nil
	})
}

func (r *Room) applyRob(seat int, rob bool) {
	r.bidsTaken++
	si := seat
	r.emit(Event{Type: EventPlayerRob, Seat: &si, Payload: map[string]interface{}{
		"rob": rob,
	}})
	if rob {
		// Contesting an existing claim doubles the stakes.
		if r.lastRobber >= 0 && r.Rules.DoublePerRob {
			r.raiseMultiplier("rob")
		}
		r.lastRobber = seat
	}

	if r.bidsTaken < 3 {
		r.turn = (r.turn + 1) % 3
		r.beginTurn()
		ni := r.turn
		r.emit(Event{Type: EventBiddingTurn, Seat: &ni})
		return
	}

	if r.lastRobber < 0 {
		r.abandonDeal("nobody_robbed")
		return
	}
	r.assignLandlord(r.lastRobber)
}

// assignLandlord gives the bottom cards to the winning bidder and opens play.
func (r *Room) assignLandlord(seat int) {
	r.landlord = seat
	for i, s := range r.seats {
		if i == seat {
			s.Role = RoleLandlord
		} else {
			s.Role = RoleFarmer
		}
	}
	s := r.seats[seat]
	s.Hand = append(s.Hand, r.bottom...)
	sortHand(s.Hand)

	si := seat
	r.emit(Event{Type: EventLandlordAssigned, Seat: &si, Payload: map[string]interface{}{
		"bottom":     cardValues(r.bottom),
		"multiplier": r.multiplier,
	}})

	r.phase = PhasePlaying
	r.trick = nil
	r.passes = 0
	r.turn = seat
	r.beginTurn()
	r.emitTurn()
}

// abandonDeal resets the room to idle without settlement. Hands are cleared
// and every seat must ready up again.
func (r *Room) abandonDeal(reason string) {
	r.stopTurnTimer()
	r.emit(Event{Type: EventBiddingFailed, Payload: map[string]interface{}{
		"reason": reason,
	}})
	r.resetToIdle()
}

func (r *Room) resetToIdle() {
	r.phase = PhaseIdle
	r.trick = nil
	r.passes = 0
	r.bottom = nil
	r.landlord = -1
	for _, s := range r.seats {
		if s != nil {
			s.Hand = nil
			s.Role = RoleNone
			s.Ready = false
		}
	}
}

// PlayCards plays a hand from the account's seat onto the current trick.
func (r *Room) PlayCards(account string, cards []card.Card) error {
	return r.do(func() error {
		if r.phase != PhasePlaying {
			return ErrWrongPhase
		}
		idx, s := r.seatOf(account)
		if s == nil {
			return ErrSeatNotFound
		}
		if idx != r.turn {
			return ErrNotYourTurn
		}
		if !holdsAll(s.Hand, cards) {
			return ErrCardsNotHeld
		}
		h := card.Classify(cards)
		if h.Type == card.Invalid {
			return ErrIllegalHandType
		}
		if r.trick != nil && !card.Beats(h, r.trick.hand) {
			return ErrHandDoesNotBeat
		}
		r.applyPlay(idx, s, cards, h)
		return nil
	})
}

// Pass declines to beat the current trick. The trick leader cannot pass.
func (r *Room) Pass(account string) error {
	return r.do(func() error {
		if r.phase != PhasePlaying {
			return ErrWrongPhase
		}
		idx, s := r.seatOf(account)
		if s == nil {
			return ErrSeatNotFound
		}
		if idx != r.turn {
			return ErrNotYourTurn
		}
		if r.trick == nil {
			return ErrMustLead
		}
		r.applyPass(idx)
		return nil
	})
}

func (r *Room) applyPlay(seat int, s *Seat, cards []card.Card, h card.Hand) {
	removeAll(&s.Hand, cards)
	r.trick = &lastPlay{seat: seat, cards: cards, hand: h}
	r.passes = 0
	r.recordPlay(seat, Play{Seat: seat, Cards: cards, Hand: h})

	if h.Type == card.Bomb || h.Type == card.Rocket {
		r.raiseMultiplier(h.Type.String())
	}

	si := seat
	r.emit(Event{Type: EventHandPlayed, Seat: &si, Payload: map[string]interface{}{
		"cards":     cardValues(cards),
		"cardsText": cardStrings(cards),
		"handType":  h.Type.String(),
		"cardsLeft": len(s.Hand),
	}})

	if len(s.Hand) == 0 {
		r.finishDeal(s.Role, "played_out")
		return
	}
	r.turn = (r.turn + 1) % 3
	r.beginTurn()
	r.emitTurn()
}

func (r *Room) applyPass(seat int) {
	r.passes++
	r.recordPlay(seat, Play{Seat: seat, Pass: true})
	si := seat
	r.emit(Event{Type: EventPlayerPassed, Seat: &si})

	if r.passes >= 2 {
		// Both opponents passed; the trick owner leads again.
		leader := r.trick.seat
		r.trick = nil
		r.passes = 0
		li := leader
		r.emit(Event{Type: EventTrickClosed, Seat: &li})
		r.turn = leader
	} else {
		r.turn = (r.turn + 1) % 3
	}
	r.beginTurn()
	r.emitTurn()
}

func (r *Room) recordPlay(seat int, p Play) {
	r.plays = append(r.plays, p)
	if r.OnPlay != nil {
		r.OnPlay(r.ID, r.gameID, r.seq, r.seats[seat].Account, p)
	}
}

func (r *Room) raiseMultiplier(reason string) {
	r.multiplier *= 2
	r.emit(Event{Type: EventMultiplierRaised, Payload: map[string]interface{}{
		"multiplier": r.multiplier,
		"reason":     reason,
	}})
}

func (r *Room) emitTurn() {
	si := r.turn
	r.emit(Event{Type: EventTurnChanged, Seat: &si, Payload: map[string]interface{}{
		"mustLead": r.trick == nil,
	}})
}

// beginTurn bumps the turn id and schedules the timeout for the seat to act.
func (r *Room) beginTurn() {
	r.turnID++
	r.stopTurnTimer()
	if r.Rules.TurnTimerSec <= 0 {
		return
	}
	id := r.turnID
	d := time.Duration(r.Rules.TurnTimerSec) * time.Second
	r.turnTimer = r.clock.AfterFunc(d, func() {
		r.async(func() {
			// The action may have arrived while the callback was queued.
			if r.turnID != id {
				return
			}
			r.onTurnTimeout()
		})
	})
}

func (r *Room) stopTurnTimer() {
	if r.turnTimer != nil {
		r.turnTimer.Stop()
		r.turnTimer = nil
	}
}

// onTurnTimeout acts for a seat that let the timer lapse: decline during
// bidding, pass on an open trick, otherwise lead the lowest single.
func (r *Room) onTurnTimeout() {
	switch r.phase {
	case PhaseBidding:
		r.applyRob(r.turn, false)
	case PhasePlaying:
		if r.trick != nil {
			r.applyPass(r.turn)
			return
		}
		s := r.seats[r.turn]
		low := s.Hand[len(s.Hand)-1] // hands sort highest first
		cards := []card.Card{low}
		r.applyPlay(r.turn, s, cards, card.Classify(cards))
	}
}

// finishDeal settles the deal, notifies everyone and returns the room to idle.
func (r *Room) finishDeal(winner Role, reason string) {
	r.stopTurnTimer()
	st := settle(r.gameID, r.ID, r.landlord, winner, r.Rules.BaseRate, r.multiplier)
	r.emit(Event{Type: EventGameOver, Payload: map[string]interface{}{
		"winner":     winner.String(),
		"reason":     reason,
		"settlement": st,
	}})
	if r.OnSettle != nil {
		var accounts [3]string
		for i, s := range r.seats {
			if s != nil {
				accounts[i] = s.Account
			}
		}
		r.OnSettle(st, accounts)
	}
	r.resetToIdle()
}

// holdsAll reports whether hand contains every card in cards, as a multiset.
// Cards are unique within a deck, so membership is enough.
func holdsAll(hand, cards []card.Card) bool {
	if len(cards) == 0 || len(cards) > len(hand) {
		return false
	}
	held := make(map[card.Card]bool, len(hand))
	for _, c := range hand {
		held[c] = true
	}
	seen := make(map[card.Card]bool, len(cards))
	for _, c := range cards {
		if !held[c] || seen[c] {
			return false
		}
		seen[c] = true
	}
	return true
}

func removeAll(hand *[]card.Card, cards []card.Card) {
	drop := make(map[card.Card]bool, len(cards))
	for _, c := range cards {
		drop[c] = true
	}
	kept := (*hand)[:0]
	for _, c := range *hand {
		if !drop[c] {
			kept = append(kept, c)
		}
	}
	*hand = kept
}
