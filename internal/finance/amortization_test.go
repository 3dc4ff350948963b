package finance

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeMonthlyPayment_ZeroRate(t *testing.T) {
	cases := []struct {
		principal float64
		term      int
		want      float64
	}{
		{12000, 12, 1000},
		{25000, 60, 25000.0 / 60},
		{0, 36, 0},
		{-6000, 12, -500}, // negative principal passes through
	}
	for _, tc := range cases {
		got, err := ComputeMonthlyPayment(tc.principal, 0, tc.term)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "principal=%v term=%d", tc.principal, tc.term)
	}
}

func TestComputeMonthlyPayment_StandardAmortization(t *testing.T) {
	// salePrice=30000, down=2000, trade=3000 -> principal=25000 at 6% over 60mo.
	got, err := ComputeMonthlyPayment(25000, 6, 60)
	require.NoError(t, err)
	assert.InDelta(t, 483.32, got, 0.005)
}

func TestComputeMonthlyPayment_InterestNonNegative(t *testing.T) {
	cases := []struct {
		principal float64
		rate      float64
		term      int
	}{
		{10000, 1, 12},
		{25000, 6, 60},
		{500, 29.99, 84},
		{1, 0.1, 1},
	}
	for _, tc := range cases {
		payment, err := ComputeMonthlyPayment(tc.principal, tc.rate, tc.term)
		require.NoError(t, err)
		total := payment * float64(tc.term)
		assert.Greater(t, total, tc.principal,
			"payment x term must exceed principal at %v%% over %d months", tc.rate, tc.term)
	}
}

func TestComputeMonthlyPayment_InvalidTerm(t *testing.T) {
	for _, term := range []int{0, -1, -60} {
		_, err := ComputeMonthlyPayment(10000, 5, term)
		var termErr *InvalidTermError
		require.ErrorAs(t, err, &termErr)
		assert.Equal(t, term, termErr.TermMonths)
	}
	// detectable via errors.As through wrapping too
	_, err := ComputeMonthlyPayment(10000, 5, 0)
	assert.True(t, errors.As(err, new(*InvalidTermError)))
}

func TestRoundCents(t *testing.T) {
	assert.Equal(t, 483.32, RoundCents(483.3215))
	assert.Equal(t, 483.33, RoundCents(483.326))
	assert.Equal(t, -12.34, RoundCents(-12.3449))
}
