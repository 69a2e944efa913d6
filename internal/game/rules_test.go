package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRulesUpdatePartial(t *testing.T) {
	rules := DefaultRules()
	err := rules.Update(map[string]interface{}{
		"turnTimerSec": 15.0, // JSON numbers arrive as float64
		"doublePerRob": false,
	})
	require.NoError(t, err)
	assert.Equal(t, 15, rules.TurnTimerSec)
	assert.False(t, rules.DoublePerRob)
	// Untouched fields keep their defaults.
	assert.Equal(t, 100, rules.BaseRate)
	assert.True(t, rules.AutoStart)
}

func TestRulesUpdateRejectsBadTypes(t *testing.T) {
	rules := DefaultRules()
	assert.Error(t, rules.Update(map[string]interface{}{"baseRate": "lots"}))
	assert.Error(t, rules.Update(map[string]interface{}{"autoStart": 1}))
	assert.Error(t, rules.Update(map[string]interface{}{"baseRate": 0.0}))
	assert.Error(t, rules.Update(map[string]interface{}{"turnTimerSec": -5.0}))
}

func TestRulesUpdateIgnoresUnknownAndNil(t *testing.T) {
	rules := DefaultRules()
	require.NoError(t, rules.Update(map[string]interface{}{
		"somethingElse": true,
		"baseRate":      nil,
	}))
	assert.Equal(t, DefaultRules(), rules)
}

func TestParseRulesDoesNotMutateCurrent(t *testing.T) {
	current := DefaultRules()
	out, err := ParseRules(map[string]interface{}{"baseRate": 500.0}, current)
	require.NoError(t, err)
	assert.Equal(t, 500, out.BaseRate)
	assert.Equal(t, 100, current.BaseRate)
}
