package game

import "github.com/openddz/ddz-server/internal/card"

// EventType is an enum-like type for broadcasting room and game actions.
type EventType string

const (
	EventPlayerJoined     EventType = "player_joined"      // seat taken, public
	EventPlayerLeft       EventType = "player_left"        // seat vacated, public
	EventOwnerChanged     EventType = "owner_changed"      // room ownership transferred
	EventPlayerReady      EventType = "player_ready"       // ready flag toggled
	EventGameStarted      EventType = "game_started"       // deal begins
	EventPrivateDeal      EventType = "private_deal"       // a seat's 17 cards, private
	EventBiddingTurn      EventType = "bidding_turn"       // whose rob decision is pending
	EventPlayerRob        EventType = "player_rob"         // a seat robbed or declined
	EventBiddingFailed    EventType = "bidding_failed"     // nobody robbed, deal abandoned
	EventLandlordAssigned EventType = "landlord_assigned"  // landlord settled, bottom revealed
	EventHandPlayed       EventType = "hand_played"        // cards played, public
	EventPlayerPassed     EventType = "player_passed"      // seat passed on the trick
	EventTrickClosed      EventType = "trick_closed"       // both opponents passed
	EventTurnChanged      EventType = "turn_changed"       // next seat to act
	EventMultiplierRaised EventType = "multiplier_raised"  // bomb/rocket/rob doubled the stakes
	EventGameOver         EventType = "game_over"          // settlement results
	EventPrivateSyncState EventType = "private_sync_state" // full state sync on connect/reconnect
	EventRoomClosed       EventType = "room_closed"        // room torn down
	EventRulesChanged     EventType = "rules_changed"      // owner updated room rules
)

// Event is the single envelope broadcast to clients. Seq is a per-room
// monotonic counter assigned at emission so clients can order and de-dupe.
// Broadcast and private sends draw from the same counter, so any one client's
// stream has gaps wherever other seats received private events; Seq is a
// total order over the room, not a dense per-connection sequence. A client
// that falls behind recovers with a state sync rather than a retransmit.
type Event struct {
	Type    EventType              `json:"type"`
	Seq     uint64                 `json:"seq"`
	RoomID  string                 `json:"roomId"`
	Seat    *int                   `json:"seat,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// EmitFn sends an event to every connected player in the room.
type EmitFn func(ev Event)

// EmitToFn sends an event to a single account only.
type EmitToFn func(account string, ev Event)

// cardStrings renders a card slice for event payloads and logs.
func cardStrings(cs []card.Card) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.String()
	}
	return out
}

// cardValues renders a card slice as raw byte values for wire payloads.
func cardValues(cs []card.Card) []int {
	out := make([]int, len(cs))
	for i, c := range cs {
		out[i] = int(c)
	}
	return out
}
