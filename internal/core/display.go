package core

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DisplayCurrency is the ISO code amounts are rendered in.
const DisplayCurrency = money.INR

// FormatAmount renders d as a currency string such as "₹1,234.50".
// Amounts are rounded half away from zero to the currency's minor unit.
func FormatAmount(d decimal.Decimal) string {
	c := money.GetCurrency(DisplayCurrency)
	minor := d.Shift(int32(c.Fraction)).Round(0).IntPart()
	return money.New(minor, DisplayCurrency).Display()
}
