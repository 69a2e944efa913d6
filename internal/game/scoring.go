package game

import "github.com/google/uuid"

// Role marks which side of the table a seat plays for during a deal.
type Role int

const (
	RoleNone Role = iota
	RoleFarmer
	RoleLandlord
)

func (r Role) String() string {
	switch r {
	case RoleFarmer:
		return "farmer"
	case RoleLandlord:
		return "landlord"
	default:
		return "none"
	}
}

// Settlement is the outcome of a finished deal. Deltas is indexed by seat and
// always sums to zero: the landlord's swing is twice each farmer's.
type Settlement struct {
	GameID     uuid.UUID `json:"gameId"`
	RoomID     string    `json:"roomId"`
	Winner     Role      `json:"winner"`
	Landlord   int       `json:"landlordSeat"`
	Multiplier int       `json:"multiplier"`
	Rate       int       `json:"rate"`
	Deltas     [3]int    `json:"deltas"`
}

// settle computes the gold movement for a finished deal. The stake per farmer
// is rate*multiplier; the landlord wins or loses against both farmers at once.
func settle(gameID uuid.UUID, roomID string, landlord int, winner Role, rate, multiplier int) Settlement {
	s := Settlement{
		GameID:     gameID,
		RoomID:     roomID,
		Winner:     winner,
		Landlord:   landlord,
		Multiplier: multiplier,
		Rate:       rate,
	}
	stake := rate * multiplier
	for seat := 0; seat < 3; seat++ {
		if seat == landlord {
			if winner == RoleLandlord {
				s.Deltas[seat] = 2 * stake
			} else {
				s.Deltas[seat] = -2 * stake
			}
		} else {
			if winner == RoleLandlord {
				s.Deltas[seat] = -stake
			} else {
				s.Deltas[seat] = stake
			}
		}
	}
	return s
}
