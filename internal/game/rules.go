package game

import "fmt"

// Rules defines per-room options the owner can adjust before a deal starts.
type Rules struct {
	TurnTimerSec int  `json:"turnTimerSec"` // seconds to wait for a bid or play; 0 disables the timer
	BaseRate     int  `json:"baseRate"`     // gold at stake per point of multiplier
	DoublePerRob bool `json:"doublePerRob"` // each rob after the first doubles the multiplier
	AutoStart    bool `json:"autoStart"`    // deal automatically once all three seats are ready
}

// DefaultRules returns the rules a freshly created room starts with.
func DefaultRules() Rules {
	return Rules{
		TurnTimerSec: 30,
		BaseRate:     100,
		DoublePerRob: true,
		AutoStart:    true,
	}
}

// Update applies the provided values onto the rules. Keys that are absent or
// nil keep their old value.
func (rules *Rules) Update(newRules map[string]interface{}) error {
	assignBool := func(field *bool, key string) error {
		if val, exists := newRules[key]; exists && val != nil {
			b, ok := val.(bool)
			if !ok {
				return fmt.Errorf("invalid type for %s", key)
			}
			*field = b
		}
		return nil
	}

	assignInt := func(field *int, key string, minVal int) error {
		if val, exists := newRules[key]; exists && val != nil {
			// JSON numbers arrive as float64
			switch v := val.(type) {
			case float64:
				*field = int(v)
			case int:
				*field = v
			default:
				return fmt.Errorf("invalid type for %s", key)
			}
			if *field < minVal {
				return fmt.Errorf("%s must be at least %d", key, minVal)
			}
		}
		return nil
	}

	if err := assignInt(&rules.TurnTimerSec, "turnTimerSec", 0); err != nil {
		return err
	}
	if err := assignInt(&rules.BaseRate, "baseRate", 1); err != nil {
		return err
	}
	if err := assignBool(&rules.DoublePerRob, "doublePerRob"); err != nil {
		return err
	}
	if err := assignBool(&rules.AutoStart, "autoStart"); err != nil {
		return err
	}
	return nil
}

// ParseRules applies a rules map onto a copy of current and returns it.
func ParseRules(rules map[string]interface{}, current Rules) (Rules, error) {
	out := current
	err := out.Update(rules)
	return out, err
}
