package game

import "github.com/openddz/ddz-server/internal/card"

// SeatInfo is the public view of a seat. CardsLeft stands in for the hand
// itself so other players only learn counts.
type SeatInfo struct {
	Index     int    `json:"index"`
	Account   string `json:"account"`
	Name      string `json:"name"`
	Ready     bool   `json:"ready"`
	Role      string `json:"role"`
	CardsLeft int    `json:"cardsLeft"`
}

// RoomInfo is the public room summary served over REST and in lobby lists.
type RoomInfo struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Owner   string     `json:"owner"`
	Phase   string     `json:"phase"`
	Players int        `json:"players"`
	Rules   Rules      `json:"rules"`
	Seats   []SeatInfo `json:"seats"`
}

// TrickInfo describes the hand currently owning the trick.
type TrickInfo struct {
	Seat     int    `json:"seat"`
	Cards    []int  `json:"cards"`
	HandType string `json:"handType"`
}

// Snapshot is the full per-account state sync sent on connect or reconnect.
// Hand contains the viewer's own cards only.
type Snapshot struct {
	RoomInfo
	GameID     string     `json:"gameId,omitempty"`
	Seat       int        `json:"seat"`
	Hand       []int      `json:"hand"`
	Turn       int        `json:"turn"`
	Landlord   int        `json:"landlord"`
	Multiplier int        `json:"multiplier"`
	Bottom     []int      `json:"bottom,omitempty"`
	Trick      *TrickInfo `json:"trick,omitempty"`
}

// Info returns the public room summary.
func (r *Room) Info() RoomInfo {
	var info RoomInfo
	r.do(func() error {
		info = r.infoLocked()
		return nil
	})
	return info
}

func (r *Room) infoLocked() RoomInfo {
	info := RoomInfo{
		ID:    r.ID,
		Name:  r.Name,
		Owner: r.owner,
		Phase: r.phase.String(),
		Rules: r.Rules,
	}
	for i, s := range r.seats {
		if s == nil {
			continue
		}
		info.Players++
		info.Seats = append(info.Seats, SeatInfo{
			Index:     i,
			Account:   s.Account,
			Name:      s.Name,
			Ready:     s.Ready,
			Role:      s.Role.String(),
			CardsLeft: len(s.Hand),
		})
	}
	return info
}

// SyncState builds the private snapshot for one seated account.
func (r *Room) SyncState(account string) (Snapshot, error) {
	var snap Snapshot
	err := r.do(func() error {
		idx, s := r.seatOf(account)
		if s == nil {
			return ErrSeatNotFound
		}
		snap = Snapshot{
			RoomInfo:   r.infoLocked(),
			Seat:       idx,
			Hand:       cardValues(s.Hand),
			Turn:       r.turn,
			Landlord:   r.landlord,
			Multiplier: r.multiplier,
		}
		if r.phase == PhaseBidding || r.phase == PhasePlaying {
			snap.GameID = r.gameID.String()
		}
		// The bottom is public knowledge once the landlord picked it up.
		if r.phase == PhasePlaying {
			snap.Bottom = cardValues(r.bottom)
		}
		if r.trick != nil {
			snap.Trick = &TrickInfo{
				Seat:     r.trick.seat,
				Cards:    cardValues(r.trick.cards),
				HandType: r.trick.hand.Type.String(),
			}
		}
		return nil
	})
	return snap, err
}

// handOf exposes a seat's hand for tests.
func (r *Room) handOf(seat int) []card.Card {
	var hand []card.Card
	r.do(func() error {
		if s := r.seats[seat]; s != nil {
			hand = append([]card.Card(nil), s.Hand...)
		}
		return nil
	})
	return hand
}
