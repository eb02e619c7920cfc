package checkout

import (
	"github.com/shopspring/decimal"
	"github.com/uniedit/checkout/internal/model"
)

// OrderTotal is an order total with and without tax.
type OrderTotal struct {
	InclTax decimal.Decimal
	ExclTax decimal.Decimal
}

// CalculateOrderTotal adds the shipping charge to the basket lines less voucher discounts.
// The discounted lines total never goes below zero.
func CalculateOrderTotal(basket *model.Basket, shipping ShippingCharge) OrderTotal {
	inclTax, exclTax := basket.LinesTotal()

	discount := decimal.Zero
	for _, v := range basket.Vouchers {
		discount = discount.Add(v.Discount)
	}
	inclTax = decimal.Max(decimal.Zero, inclTax.Sub(discount))
	exclTax = decimal.Max(decimal.Zero, exclTax.Sub(discount))

	return OrderTotal{
		InclTax: inclTax.Add(shipping.InclTax()).Round(2),
		ExclTax: exclTax.Add(shipping.ExclTax).Round(2),
	}
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
