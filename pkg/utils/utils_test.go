package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateInterest(t *testing.T) {
	tests := []struct {
		name      string
		principal decimal.Decimal
		rate      decimal.Decimal
		expected  decimal.Decimal
	}{
		{
			name:      "standard loan",
			principal: decimal.NewFromInt(1000),
			rate:      decimal.NewFromInt(10),
			expected:  decimal.NewFromInt(100), // 1000 * 10 / 100
		},
		{
			name:      "zero interest rate",
			principal: decimal.NewFromInt(5000),
			rate:      decimal.Zero,
			expected:  decimal.Zero,
		},
		{
			name:      "fractional rate rounds to cents",
			principal: decimal.RequireFromString("333.33"),
			rate:      decimal.RequireFromString("7.5"),
			expected:  decimal.RequireFromString("25.00"), // 24.99975
		},
		{
			name:      "full rate doubles the principal",
			principal: decimal.NewFromInt(250),
			rate:      decimal.NewFromInt(100),
			expected:  decimal.NewFromInt(250),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateInterest(tt.principal, tt.rate)
			assert.True(t, result.Equal(tt.expected),
				"Expected %v, but got %v", tt.expected, result)
		})
	}
}

func TestCalculateTotal(t *testing.T) {
	total := CalculateTotal(decimal.NewFromInt(1000), CalculateInterest(decimal.NewFromInt(1000), decimal.NewFromInt(10)))
	assert.True(t, total.Equal(decimal.NewFromInt(1100)), "got %v", total)
}

func TestCalculateBalance(t *testing.T) {
	tests := []struct {
		name     string
		total    decimal.Decimal
		paid     decimal.Decimal
		expected decimal.Decimal
	}{
		{"nothing paid", decimal.NewFromInt(1100), decimal.Zero, decimal.NewFromInt(1100)},
		{"partially paid", decimal.NewFromInt(1100), decimal.NewFromInt(300), decimal.NewFromInt(800)},
		{"fully paid", decimal.NewFromInt(1100), decimal.NewFromInt(1100), decimal.Zero},
		{"overpaid is floored", decimal.NewFromInt(1100), decimal.NewFromInt(1200), decimal.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateBalance(tt.total, tt.paid)
			assert.True(t, result.Equal(tt.expected), "Expected %v, but got %v", tt.expected, result)
			assert.False(t, result.IsNegative())
		})
	}
}

func TestExcess(t *testing.T) {
	assert.True(t, Excess(decimal.NewFromInt(1200), decimal.NewFromInt(1100)).Equal(decimal.NewFromInt(100)))
	assert.True(t, Excess(decimal.NewFromInt(1100), decimal.NewFromInt(1100)).IsZero())
	assert.True(t, Excess(decimal.NewFromInt(50), decimal.NewFromInt(1100)).IsZero())
}

func TestIsPercentage(t *testing.T) {
	assert.True(t, IsPercentage(decimal.Zero))
	assert.True(t, IsPercentage(decimal.NewFromInt(100)))
	assert.True(t, IsPercentage(decimal.RequireFromString("12.5")))
	assert.False(t, IsPercentage(decimal.RequireFromString("-0.01")))
	assert.False(t, IsPercentage(decimal.RequireFromString("100.01")))
}

func TestIsSettled(t *testing.T) {
	assert.True(t, IsSettled(decimal.Zero))
	assert.True(t, IsSettled(decimal.NewFromInt(-5)))
	assert.False(t, IsSettled(decimal.RequireFromString("0.01")))
}

func TestIsCents(t *testing.T) {
	tests := []struct {
		amount   string
		expected bool
	}{
		{"0", true},
		{"1100", true},
		{"12.5", true},
		{"0.01", true},
		{"12.340", true},
		{"0.005", false},
		{"0.004", false},
		{"99.999", false},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsCents(decimal.RequireFromString(tt.amount)))
		})
	}
}
