package revenue

import (
	"testing"

	"github.com/MaulRai/tiku/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBasisPoints(t *testing.T) {
	tests := []struct {
		name       string
		percentage float64
		expected   int64
	}{
		{"zero", 0, 0},
		{"full", 100, 10000},
		{"half", 50, 5000},
		{"fractional", 2.5, 250},
		{"two decimals", 33.33, 3333},
		{"rounds up", 33.335, 3334},
		{"rounds down", 33.334, 3333},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToBasisPoints(tt.percentage))
		})
	}
}

func TestToBasisPointsRange(t *testing.T) {
	for p := 0.0; p <= 100.0; p += 0.07 {
		bps := ToBasisPoints(p)
		assert.GreaterOrEqual(t, bps, int64(0))
		assert.LessOrEqual(t, bps, int64(10000))
	}
}

func TestValidateTotalPercentage(t *testing.T) {
	tests := []struct {
		name        string
		percentages []float64
		expected    bool
	}{
		{"exact", []float64{60, 40}, true},
		{"single full", []float64{100}, true},
		{"rounding noise below", []float64{33.33, 33.33, 33.335}, true},
		{"rounding noise above", []float64{33.34, 33.33, 33.335}, true},
		{"real shortfall", []float64{60, 39}, false},
		{"real overage", []float64{60, 41}, false},
		{"just outside tolerance", []float64{50, 49.98}, false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateTotalPercentage(tt.percentages, DefaultEpsilon))
		})
	}
}

func TestValidateTotalPercentageCustomEpsilon(t *testing.T) {
	// 更宽的容差放行更大的噪声
	assert.True(t, ValidateTotalPercentage([]float64{50, 49.95}, 0.1))
	assert.False(t, ValidateTotalPercentage([]float64{50, 49.95}, 0.01))

	// 非法容差回退到默认值
	assert.True(t, ValidateTotalPercentage([]float64{60, 40}, 0))
}

func TestValidateSplit(t *testing.T) {
	addr1 := "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"
	addr2 := "0x2546BcD3c84621e976D8185a91A922aE77ECEc30"

	t.Run("valid split", func(t *testing.T) {
		err := ValidateSplit([]model.RevenueBeneficiary{
			{Address: addr1, BasisPoints: 7000},
			{Address: addr2, BasisPoints: 3000},
		})
		require.NoError(t, err)
	})

	t.Run("empty list", func(t *testing.T) {
		require.Error(t, ValidateSplit(nil))
	})

	t.Run("invalid address", func(t *testing.T) {
		err := ValidateSplit([]model.RevenueBeneficiary{
			{Address: "not-an-address", BasisPoints: 10000},
		})
		require.Error(t, err)
	})

	t.Run("duplicate address", func(t *testing.T) {
		err := ValidateSplit([]model.RevenueBeneficiary{
			{Address: addr1, BasisPoints: 5000},
			{Address: addr1, BasisPoints: 5000},
		})
		require.Error(t, err)
	})

	t.Run("sum below total", func(t *testing.T) {
		err := ValidateSplit([]model.RevenueBeneficiary{
			{Address: addr1, BasisPoints: 5000},
			{Address: addr2, BasisPoints: 4999},
		})
		require.Error(t, err)
	})

	t.Run("sum above total", func(t *testing.T) {
		err := ValidateSplit([]model.RevenueBeneficiary{
			{Address: addr1, BasisPoints: 5000},
			{Address: addr2, BasisPoints: 5001},
		})
		require.Error(t, err)
	})

	t.Run("zero basis points", func(t *testing.T) {
		err := ValidateSplit([]model.RevenueBeneficiary{
			{Address: addr1, BasisPoints: 0},
			{Address: addr2, BasisPoints: 10000},
		})
		require.Error(t, err)
	})
}
