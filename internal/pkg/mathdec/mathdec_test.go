// Copyright 2026 Peter Edge
//
// All rights reserved.

package mathdec

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNewDecimal(t *testing.T) {
	t.Parallel()
	d, err := NewDecimal("123.456789")
	require.NoError(t, err)
	require.Equal(t, "123.456789", ToString(d))
	d, err = NewDecimal("")
	require.NoError(t, err)
	require.True(t, d.IsZero())
	_, err = NewDecimal("12x")
	require.Error(t, err)
}

func TestRoundCents(t *testing.T) {
	t.Parallel()
	for _, test := range []struct {
		input string
		want  string
	}{
		{"1.005", "1.01"},
		{"-1.005", "-1.01"},
		{"0.6666666666666667", "0.67"},
		{"200", "200.00"},
		{"-0.004", "0.00"},
	} {
		got := ToMoneyString(RoundCents(MustDecimal(test.input)))
		require.Equal(t, test.want, got, test.input)
	}
}

func TestEqualWithin(t *testing.T) {
	t.Parallel()
	require.True(t, EqualWithin(MustDecimal("10.00"), MustDecimal("10.01"), MustDecimal("0.01")))
	require.False(t, EqualWithin(MustDecimal("10.00"), MustDecimal("10.02"), MustDecimal("0.01")))
	require.True(t, EqualWithin(MustDecimal("-3"), MustDecimal("-3"), decimal.Zero))
	require.False(t, EqualWithin(MustDecimal("-3"), MustDecimal("3"), decimal.Zero))
}
