package storefront

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/m3rciful/shopbot/core/telegram/format"
	"github.com/m3rciful/shopbot/shop/cart"
	"github.com/m3rciful/shopbot/shop/catalog"
	"github.com/m3rciful/shopbot/shop/checkout"
	"github.com/m3rciful/shopbot/shop/order"
)

// Reply keyboard labels; typing them works like the matching command.
const (
	MenuCatalog = "Catalog"
	MenuCart    = "Cart"
)

const (
	msgWelcome        = "Welcome to our shop! Choose an action:"
	msgChooseAction   = "Choose an action:"
	msgChooseProduct  = "Choose a product from the catalog:"
	msgCatalogEmpty   = "The catalog is empty for now."
	msgNotFound       = "Product not found"
	msgAdded          = "Added to cart!"
	msgRemoved        = "Removed from cart"
	msgCartEmpty      = "Your cart is empty"
	msgCartCleared    = "Your cart has been cleared"
	msgCannotCheckout = "Your cart is empty, there is nothing to check out"
	msgAskName        = "Please enter your name:"
	msgAskPhone       = "Please enter your phone number:"
	msgAskAddress     = "Enter the delivery address:"
	msgBlank          = "The answer cannot be empty."
	msgThanks         = "Thank you for your order! We will contact you shortly to confirm it."
	msgCancelled      = "Checkout cancelled. Your items are still in the cart."
	msgNoCheckout     = "There is no checkout in progress."
	msgNothingToDo    = "Nothing to do"
	msgOrderEmpty     = "Your cart is empty, the order was not placed."
	msgUnsupported    = "Unsupported action"
	msgUnknown        = "Sorry, I did not understand that. Send /help to see what I can do."

	msgHelp = "Bot commands:\n" +
		"/start - start the bot\n" +
		"/catalog - browse the catalog\n" +
		"/cart - view your cart\n" +
		"/order - place an order\n" +
		"/cancel - cancel the current checkout"
)

func mainMenu() *Keyboard {
	return &Keyboard{Menu: [][]string{{MenuCatalog}, {MenuCart}}}
}

func (s *Storefront) money(d decimal.Decimal) string {
	return order.Money(d, s.currency)
}

func (s *Storefront) catalogKeyboard(products []catalog.Product) *Keyboard {
	rows := make([][]Button, 0, len(products))
	for _, p := range products {
		rows = append(rows, row(Button{
			Text: fmt.Sprintf("%s - %s", p.Name, s.money(p.Price)),
			Data: ViewToken(p.ID),
		}))
	}
	return inline(rows...)
}

func (s *Storefront) productCard(p catalog.Product) Reply {
	name := format.EscapeMarkdown(p.Name)
	desc := format.EscapeMarkdown(p.Description)
	price := format.EscapeMarkdown(s.money(p.Price))
	text := fmt.Sprintf("*%s*\n%s\nPrice: %s", name, desc, price)
	return Reply{
		Text:     text,
		Markdown: true,
		Keyboard: inline(
			row(Button{Text: "Add to cart", Data: AddToken(p.ID)}),
			row(Button{Text: "Back to catalog", Data: TokenCatalog}),
		),
	}
}

func (s *Storefront) itemLines(b *strings.Builder, items []cart.Item) {
	for _, it := range items {
		b.WriteString(order.LineText(it.Product.Name, it.Product.Price, it.Quantity, s.currency))
		b.WriteByte('\n')
	}
}

func (s *Storefront) cartText(items []cart.Item) string {
	var b strings.Builder
	b.WriteString("Your cart:\n\n")
	s.itemLines(&b, items)
	fmt.Fprintf(&b, "\nTotal: %s", s.money(cart.Sum(items)))
	return b.String()
}

func cartKeyboard(items []cart.Item) *Keyboard {
	rows := make([][]Button, 0, len(items)+3)
	for _, it := range items {
		rows = append(rows, row(Button{
			Text: fmt.Sprintf("❌ %s (%d pcs)", it.Product.Name, it.Quantity),
			Data: RemoveToken(it.Product.ID),
		}))
	}
	rows = append(rows,
		row(Button{Text: "Checkout", Data: TokenCheckout}),
		row(Button{Text: "Clear cart", Data: TokenClearCart}),
		row(Button{Text: "Back", Data: TokenBackToMain}),
	)
	return inline(rows...)
}

func (s *Storefront) reviewText(d checkout.Draft, items []cart.Item) string {
	var b strings.Builder
	b.WriteString("Please check your order:\n\n")
	fmt.Fprintf(&b, "Name: %s\nPhone: %s\nAddress: %s\n\n", d.Name, d.Phone, d.Address)
	b.WriteString("Items:\n")
	s.itemLines(&b, items)
	fmt.Fprintf(&b, "\nTotal: %s", s.money(cart.Sum(items)))
	return b.String()
}

func confirmKeyboard() *Keyboard {
	return inline(row(
		Button{Text: "Confirm", Data: TokenConfirm},
		Button{Text: "Cancel", Data: TokenCancel},
	))
}
