package order

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money renders an amount with two decimals followed by the currency label.
func Money(d decimal.Decimal, currency string) string {
	s := d.StringFixed(2)
	if currency == "" {
		return s
	}
	return s + " " + currency
}

// LineText renders "Name - price x qty = subtotal".
func LineText(name string, unit decimal.Decimal, qty int, currency string) string {
	sub := unit.Mul(decimal.NewFromInt(int64(qty)))
	return fmt.Sprintf("%s - %s x %d = %s", name, Money(unit, currency), qty, Money(sub, currency))
}

// OperatorText is the plain-text message sent to the operator for a new order.
func OperatorText(o Order, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New order #%s from user ID: %d\n\n", o.ShortID(), o.UserID)
	fmt.Fprintf(&b, "Name: %s\nPhone: %s\nAddress: %s\n\n", o.Name, o.Phone, o.Address)
	b.WriteString("Items:\n")
	for _, l := range o.Lines {
		b.WriteString(LineText(l.Name, l.UnitPrice, l.Quantity, currency))
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "\nTotal: %s", Money(o.Total, currency))
	return b.String()
}
