package service_test

import (
	"testing"

	"crystalerp/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProfitMarginUsesSellingPriceDenominator(t *testing.T) {
	// selling 500, cost 300 — margin is 40.0, not the 66.67 that dividing by
	// cost would produce
	margin := service.ProfitMargin(decimal.NewFromInt(500), decimal.NewFromInt(300))
	assert.Equal(t, "40", margin.String())
}

func TestProfitMarginZeroSellingPrice(t *testing.T) {
	margin := service.ProfitMargin(decimal.Zero, decimal.NewFromInt(300))
	assert.True(t, margin.IsZero())
}

func TestProfitMarginNegativeWhenSoldBelowCost(t *testing.T) {
	margin := service.ProfitMargin(decimal.NewFromInt(200), decimal.NewFromInt(300))
	assert.Equal(t, "-50", margin.String())
}

func TestProfitMarginRounding(t *testing.T) {
	// (300-100)/300*100 = 66.666... → 66.67
	margin := service.ProfitMargin(decimal.NewFromInt(300), decimal.NewFromInt(100))
	assert.Equal(t, "66.67", margin.String())
}

func TestUnitCostFloorsQuantityAtOne(t *testing.T) {
	price := decimal.NewFromInt(60)
	assert.Equal(t, "60", service.UnitCost(price, 0).String())
	assert.Equal(t, "60", service.UnitCost(price, -3).String())
	assert.Equal(t, "1", service.UnitCost(price, 60).String())
}

func TestUnitCostRoundsToFourPlaces(t *testing.T) {
	// 100 / 3 = 33.3333...
	cost := service.UnitCost(decimal.NewFromInt(100), 3)
	assert.Equal(t, "33.3333", cost.String())
}

func TestMaterialCostSumsLines(t *testing.T) {
	lines := []service.CostLine{
		{Quantity: 5, UnitCost: decimal.NewFromFloat(1.5)},  // 7.5
		{Quantity: 3, UnitCost: decimal.NewFromFloat(2.25)}, // 6.75
	}
	assert.Equal(t, "14.25", service.MaterialCost(lines).String())
}

func TestMaterialCostEmpty(t *testing.T) {
	assert.True(t, service.MaterialCost(nil).IsZero())
}

func TestTotalCost(t *testing.T) {
	total := service.TotalCost(
		decimal.NewFromInt(100),
		decimal.NewFromInt(20),
		decimal.NewFromInt(30),
	)
	assert.Equal(t, "150", total.String())
}
