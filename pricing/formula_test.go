package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	vars := map[string]float64{
		"SQ":   26,
		"EAVE": 100,
		"R":    80,
	}

	cases := []struct {
		formula string
		want    float64
	}{
		{"SQ", 26},
		{"SQ * 1.1", 28.6},
		{"EAVE + R", 180},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"-SQ + 30", 4},
		{"EAVE / 4", 25},
		{"sq * 2", 52}, // variable names are case-insensitive
		{"10 - 2 - 3", 5},
		{"100", 100},
	}
	for _, tc := range cases {
		t.Run(tc.formula, func(t *testing.T) {
			got, err := Evaluate(tc.formula, vars)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}

	t.Run("UnknownVariable", func(t *testing.T) {
		_, err := Evaluate("SQ * HIP_CAP", vars)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownVariable)
	})

	t.Run("DivisionByZero", func(t *testing.T) {
		_, err := Evaluate("SQ / 0", vars)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDivisionByZero)
	})

	t.Run("MalformedInput", func(t *testing.T) {
		for _, formula := range []string{"", "SQ *", "(SQ", "SQ 2", "1..2", "SQ $ 2"} {
			_, err := Evaluate(formula, vars)
			assert.ErrorIs(t, err, ErrInvalidFormula, "formula %q", formula)
		}
	})
}
