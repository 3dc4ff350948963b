package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseLeaseInput() LeaseInput {
	return LeaseInput{
		MSRP:            35000,
		CapCost:         33000,
		ResidualPercent: 55,
		MoneyFactor:     0.00125,
		TermMonths:      36,
		DownPayment:     2000,
		SalesTaxRate:    7,
	}
}

func TestQuoteLease_ConcreteScenario(t *testing.T) {
	got, err := QuoteLease(baseLeaseInput())
	require.NoError(t, err)

	assert.Equal(t, 19250.0, got.ResidualValue)
	assert.InDelta(t, 326.39, got.Depreciation, 0.005) // (31000-19250)/36
	assert.InDelta(t, 62.8125, got.RentCharge, 1e-9)   // (31000+19250)*0.00125
	assert.InDelta(t, 27.24, got.Tax, 0.005)
	assert.Equal(t, 416.0, got.MonthlyPayment, "rounded to whole dollars at output")
	assert.Equal(t, 2261.0, got.TotalInterest) // 62.8125*36 = 2261.25
}

func TestQuoteLease_MoneyFactorNormalization(t *testing.T) {
	raw := baseLeaseInput()
	raw.MoneyFactor = 0.0015

	times2400 := baseLeaseInput()
	times2400.MoneyFactor = 3.6 // 3.6/2400 = 0.0015

	a, err := QuoteLease(raw)
	require.NoError(t, err)
	b, err := QuoteLease(times2400)
	require.NoError(t, err)

	assert.Equal(t, a.MonthlyPayment, b.MonthlyPayment)
	assert.Equal(t, a.TotalInterest, b.TotalInterest)
}

func TestQuoteLease_DepreciationFloor(t *testing.T) {
	// Net cap cost below residual: depreciation floors at zero while rent
	// charge and tax remain positive components of the payment.
	in := baseLeaseInput()
	in.DownPayment = 16000 // netCapCost = 17000 < residual 19250

	got, err := QuoteLease(in)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Depreciation)
	assert.Greater(t, got.RentCharge, 0.0)
	assert.Greater(t, got.Tax, 0.0)
	assert.Greater(t, got.MonthlyPayment, 0.0)
}

func TestQuoteLease_NegativeNetCapCostPropagates(t *testing.T) {
	in := baseLeaseInput()
	in.TradeInValue = 40000 // trade exceeds cap cost

	got, err := QuoteLease(in)
	require.NoError(t, err)
	// Depreciation floors at zero but the rent charge reflects the real
	// (negative-net) balance; netCapCost itself is not floored.
	assert.Equal(t, 0.0, got.Depreciation)
	assert.InDelta(t, (33000.0-2000-40000+19250)*0.00125, got.RentCharge, 1e-9)
}

func TestQuoteLease_MissingFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*LeaseInput)
		field  string
	}{
		{"msrp", func(in *LeaseInput) { in.MSRP = 0 }, "msrp"},
		{"capCost", func(in *LeaseInput) { in.CapCost = 0 }, "capCost"},
		{"residualPercent", func(in *LeaseInput) { in.ResidualPercent = 0 }, "residualPercent"},
		{"moneyFactor", func(in *LeaseInput) { in.MoneyFactor = 0 }, "moneyFactor"},
		{"term", func(in *LeaseInput) { in.TermMonths = 0 }, "term"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := baseLeaseInput()
			tc.mutate(&in)
			_, err := QuoteLease(in)
			var inputErr *InvalidInputError
			require.ErrorAs(t, err, &inputErr)
			assert.Equal(t, tc.field, inputErr.Field)
		})
	}
}

func TestCompareTerms(t *testing.T) {
	in := baseLeaseInput()
	in.ResidualPercents = map[int]float64{24: 65, 36: 58}
	in.VehicleLabel = "2022 Honda Accord"

	got, err := CompareTerms(in, []int{24, 36, 48})
	require.NoError(t, err)
	assert.Equal(t, "2022 Honda Accord", got.VehicleLabel)
	require.Len(t, got.Options, 3)

	assert.Equal(t, 24, got.Options[0].TermMonths)
	assert.Equal(t, RoundDollars(35000*0.65), got.Options[0].ResidualValue)
	assert.Equal(t, RoundDollars(35000*0.58), got.Options[1].ResidualValue)
	// 48 months has no mapping: defaults to 50%.
	assert.Equal(t, RoundDollars(35000*0.50), got.Options[2].ResidualValue)

	// Shorter terms carry more monthly depreciation pressure but the
	// comparison stays internally consistent with single-term quotes.
	single := baseLeaseInput()
	single.ResidualPercent = 58
	q, err := QuoteLease(single)
	require.NoError(t, err)
	assert.Equal(t, q.MonthlyPayment, got.Options[1].MonthlyPayment)
}

func TestCompareTerms_EmptyTerms(t *testing.T) {
	_, err := CompareTerms(baseLeaseInput(), nil)
	var inputErr *InvalidInputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "terms", inputErr.Field)
}

func TestCompareTerms_DefaultVehicleLabel(t *testing.T) {
	got, err := CompareTerms(baseLeaseInput(), []int{36})
	require.NoError(t, err)
	assert.Equal(t, "Vehicle", got.VehicleLabel)
}
