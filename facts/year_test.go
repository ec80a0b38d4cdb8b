package facts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextState(t *testing.T) {
	tests := []struct {
		name          string
		state         State
		ok, datesLeft bool
		want          State
	}{
		{"search hit", StateSearching, true, true, StateFilingFound},
		{"search miss retries", StateSearching, false, true, StateSearching},
		{"search miss exhausted", StateSearching, false, false, StateNotFound},
		{"found proceeds", StateFilingFound, true, true, StateFetching},
		{"fetch ok", StateFetching, true, false, StateParsing},
		{"fetch rejected retries", StateFetching, false, true, StateSearching},
		{"fetch rejected exhausted", StateFetching, false, false,
			StateNotFound},
		{"parse ok", StateParsing, true, false, StateExtracting},
		{"parse corrupt retries", StateParsing, false, true, StateSearching},
		{"parse corrupt exhausted", StateParsing, false, false, StateNotFound},
		{"extract ok", StateExtracting, true, false, StateDone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want,
				nextState(tt.state, tt.ok, tt.datesLeft))
		})
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "searching", StateSearching.String())
	assert.Equal(t, "done", StateDone.String())
	assert.Equal(t, "not found", StateNotFound.String())
}

func TestNotFoundError(t *testing.T) {
	err := &NotFoundError{Year: 2023, DatesTried: 36}
	assert.Contains(t, err.Error(), "2023")
	assert.Contains(t, err.Error(), "36")
	require.ErrorIs(t, err, &NotFoundError{})
}
