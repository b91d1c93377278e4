package service

import "github.com/shopspring/decimal"

// Cost/profit math for SKU composition and reporting. These are the only
// implementations of the cost formulas in the codebase — creation, restock
// and reporting all call them rather than re-deriving the arithmetic inline.

// CostLine is one constituent material's contribution to a SKU's cost.
type CostLine struct {
	Quantity int
	UnitCost decimal.Decimal
}

// MaterialCost sums quantity x unit cost over all constituent materials.
func MaterialCost(lines []CostLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.UnitCost.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// TotalCost is the full per-SKU cost: materials + labor + craft.
func TotalCost(materialCost, laborCost, craftCost decimal.Decimal) decimal.Decimal {
	return materialCost.Add(laborCost).Add(craftCost)
}

// ProfitMargin returns (sellingPrice - totalCost) / sellingPrice * 100.
//
// The denominator is ALWAYS the selling price. Dividing by cost instead
// (yielding e.g. 66.67 instead of 40.0 for price 500 / cost 300) is the
// classic miscalculation this function exists to prevent. Returns zero when
// the selling price is zero.
func ProfitMargin(sellingPrice, totalCost decimal.Decimal) decimal.Decimal {
	if sellingPrice.IsZero() {
		return decimal.Zero
	}
	return sellingPrice.Sub(totalCost).
		Div(sellingPrice).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}

// UnitCost divides a total price across a derived quantity. The denominator
// is floored at 1 so a zero or missing quantity can never divide by zero.
func UnitCost(totalPrice decimal.Decimal, quantity int) decimal.Decimal {
	if quantity < 1 {
		quantity = 1
	}
	return totalPrice.Div(decimal.NewFromInt(int64(quantity))).Round(4)
}
