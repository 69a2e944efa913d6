// Package game implements the Dou Dizhu room engine: a per-room state machine
// covering seating, bidding, trick play and settlement. Each room runs its own
// goroutine and all state transitions happen on that goroutine, so operations
// never race and events are emitted in a single total order.
package game

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/openddz/ddz-server/internal/card"
)

// Phase is the lifecycle stage of a room.
type Phase int

const (
	PhaseIdle    Phase = iota // waiting for players to seat and ready up
	PhaseBidding              // cards dealt, seats deciding who robs the landlord
	PhasePlaying              // landlord assigned, tricks in progress
	PhaseClosed               // room torn down, no further operations
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseBidding:
		return "bidding"
	case PhasePlaying:
		return "playing"
	case PhaseClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Seat holds one of the three positions at the table.
type Seat struct {
	Account string
	Name    string
	Ready   bool
	Role    Role
	Hand    []card.Card
}

// Play is one entry in the per-deal play log, kept for replay and persisted
// through the cache on each action.
type Play struct {
	Seat  int         `json:"seat"`
	Pass  bool        `json:"pass"`
	Cards []card.Card `json:"cards,omitempty"`
	Hand  card.Hand   `json:"-"`
}

// lastPlay tracks the hand currently owning the trick.
type lastPlay struct {
	seat  int
	cards []card.Card
	hand  card.Hand
}

// Room is a single game room. External callers use the exported methods, which
// dispatch onto the room's goroutine; everything below the cmds channel is
// owned by that goroutine and never touched directly from outside.
type Room struct {
	ID    string
	Name  string
	Rules Rules

	// EmitFn broadcasts an event to every player in the room. If nil, events
	// are dropped.
	EmitFn EmitFn

	// EmitToFn sends an event to a single account only.
	EmitToFn EmitToFn

	// OnEmpty is invoked after the last seat is vacated.
	OnEmpty func(roomID string)

	// OnSettle receives every finished deal's settlement together with the
	// accounts seated at the time, for persistence and gold updates.
	OnSettle func(s Settlement, accounts [3]string)

	// OnPlay receives each play as it happens, for the replay log.
	OnPlay func(roomID string, gameID uuid.UUID, seq uint64, account string, p Play)

	clock quartz.Clock
	rng   *rand.Rand

	cmds      chan func()
	closed    chan struct{}
	closeOnce sync.Once

	owner string
	seats [3]*Seat
	phase Phase
	seq   uint64

	// per-deal state, reset by startDeal
	gameID     uuid.UUID
	bottom     []card.Card
	landlord   int
	multiplier int
	bidsTaken  int
	lastRobber int
	turn       int
	turnID     int
	turnTimer  *quartz.Timer
	trick      *lastPlay
	passes     int
	plays      []Play
}

// NewRoom builds a room and starts its goroutine. The clock is injectable so
// tests can drive turn timers deterministically.
func NewRoom(id, name, owner string, rules Rules, clock quartz.Clock, rng *rand.Rand) *Room {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	r := &Room{
		ID:       id,
		Name:     name,
		Rules:    rules,
		clock:    clock,
		rng:      rng,
		cmds:     make(chan func(), 16),
		closed:   make(chan struct{}),
		owner:    owner,
		phase:    PhaseIdle,
		landlord: -1,
	}
	go r.run()
	return r
}

func (r *Room) run() {
	for {
		select {
		case fn := <-r.cmds:
			fn()
		case <-r.closed:
			return
		}
	}
}

// do runs fn on the room goroutine and waits for its result.
func (r *Room) do(fn func() error) error {
	errc := make(chan error, 1)
	select {
	case r.cmds <- func() { errc <- fn() }:
	case <-r.closed:
		return ErrRoomClosed
	}
	select {
	case err := <-errc:
		return err
	case <-r.closed:
		return ErrRoomClosed
	}
}

// async queues fn without waiting. Used by timer callbacks, which must not
// block and which may race room closure.
func (r *Room) async(fn func()) {
	select {
	case r.cmds <- fn:
	case <-r.closed:
	}
}

func (r *Room) emit(ev Event) {
	r.seq++
	ev.Seq = r.seq
	ev.RoomID = r.ID
	if r.EmitFn != nil {
		r.EmitFn(ev)
	}
}

func (r *Room) emitTo(account string, ev Event) {
	r.seq++
	ev.Seq = r.seq
	ev.RoomID = r.ID
	if r.EmitToFn != nil {
		r.EmitToFn(account, ev)
	}
}

func (r *Room) seatOf(account string) (int, *Seat) {
	for i, s := range r.seats {
		if s != nil && s.Account == account {
			return i, s
		}
	}
	return -1, nil
}

// Owner returns the current owner account.
func (r *Room) Owner() string {
	var owner string
	r.do(func() error {
		owner = r.owner
		return nil
	})
	return owner
}

// Join seats an account at the lowest free position.
func (r *Room) Join(account, name string) (int, error) {
	var seat int
	err := r.do(func() error {
		if _, s := r.seatOf(account); s != nil {
			return ErrAlreadySeated
		}
		idx := -1
		for i, s := range r.seats {
			if s == nil {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrRoomFull
		}
		r.seats[idx] = &Seat{Account: account, Name: name}
		seat = idx
		si := idx
		r.emit(Event{Type: EventPlayerJoined, Seat: &si, Payload: map[string]interface{}{
			"account": account,
			"name":    name,
		}})
		return nil
	})
	return seat, err
}

// Leave vacates the account's seat. Leaving mid-deal forfeits: during bidding
// the deal is abandoned, during play the leaver's side loses immediately.
func (r *Room) Leave(account string) error {
	return r.do(func() error {
		idx, s := r.seatOf(account)
		if s == nil {
			return ErrSeatNotFound
		}
		switch r.phase {
		case PhaseBidding:
			r.abandonDeal("player_left")
		case PhasePlaying:
			winner := RoleLandlord
			if s.Role == RoleLandlord {
				winner = RoleFarmer
			}
			r.finishDeal(winner, "forfeit")
		}
		r.seats[idx] = nil
		si := idx
		r.emit(Event{Type: EventPlayerLeft, Seat: &si, Payload: map[string]interface{}{
			"account": account,
		}})
		if r.owner == account {
			r.transferOwnership()
		}
		if r.empty() {
			if r.OnEmpty != nil {
				r.OnEmpty(r.ID)
			}
		}
		return nil
	})
}

func (r *Room) empty() bool {
	for _, s := range r.seats {
		if s != nil {
			return false
		}
	}
	return true
}

// transferOwnership hands the room to the lowest occupied seat, if any.
func (r *Room) transferOwnership() {
	r.owner = ""
	for i, s := range r.seats {
		if s != nil {
			r.owner = s.Account
			si := i
			r.emit(Event{Type: EventOwnerChanged, Seat: &si, Payload: map[string]interface{}{
				"account": s.Account,
			}})
			return
		}
	}
}

// SetReady toggles the ready flag. With AutoStart, the deal begins as soon as
// all three seats are ready.
func (r *Room) SetReady(account string, ready bool) error {
	return r.do(func() error {
		if r.phase != PhaseIdle {
			return ErrWrongPhase
		}
		idx, s := r.seatOf(account)
		if s == nil {
			return ErrSeatNotFound
		}
		s.Ready = ready
		si := idx
		r.emit(Event{Type: EventPlayerReady, Seat: &si, Payload: map[string]interface{}{
			"account": account,
			"ready":   ready,
		}})
		if ready && r.Rules.AutoStart && r.allReady() {
			r.startDeal()
		}
		return nil
	})
}

// Start begins a deal at the owner's request, without waiting for AutoStart.
func (r *Room) Start(account string) error {
	return r.do(func() error {
		if r.phase != PhaseIdle {
			return ErrWrongPhase
		}
		if account != r.owner {
			return ErrNotOwner
		}
		if !r.allReady() {
			return ErrInsufficientPlayers
		}
		r.startDeal()
		return nil
	})
}

func (r *Room) allReady() bool {
	for _, s := range r.seats {
		if s == nil || !s.Ready {
			return false
		}
	}
	return true
}

// UpdateRules lets the owner adjust room rules between deals.
func (r *Room) UpdateRules(account string, newRules map[string]interface{}) error {
	return r.do(func() error {
		if r.phase != PhaseIdle {
			return ErrWrongPhase
		}
		if account != r.owner {
			return ErrNotOwner
		}
		if err := r.Rules.Update(newRules); err != nil {
			return err
		}
		r.emit(Event{Type: EventRulesChanged, Payload: map[string]interface{}{
			"rules": r.Rules,
		}})
		return nil
	})
}

// Close tears the room down. A deal still in the playing phase settles as a
// forfeit against the owner's side first; every player gets a room_closed
// event before the goroutine stops.
func (r *Room) Close() {
	r.closeOnce.Do(func() {
		r.do(func() error {
			if r.phase == PhasePlaying {
				if _, s := r.seatOf(r.owner); s != nil && s.Role != RoleNone {
					winner := RoleLandlord
					if s.Role == RoleLandlord {
						winner = RoleFarmer
					}
					r.finishDeal(winner, "forfeit")
				}
			}
			r.stopTurnTimer()
			r.phase = PhaseClosed
			r.emit(Event{Type: EventRoomClosed})
			return nil
		})
		close(r.closed)
	})
}

// sortHand orders cards highest first, the way clients render a hand.
func sortHand(cs []card.Card) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Order() != cs[j].Order() {
			return cs[i].Order() > cs[j].Order()
		}
		return cs[i] < cs[j]
	})
}
