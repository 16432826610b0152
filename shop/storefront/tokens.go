package storefront

import (
	"strconv"
	"strings"
)

// Callback tokens carried by inline buttons. Argument-bearing tokens are
// "<action>_<id>"; the rest are bare.
const (
	ActionView   = "view"
	ActionAdd    = "add"
	ActionRemove = "remove"

	TokenCatalog    = "catalog"
	TokenClearCart  = "clear_cart"
	TokenBackToMain = "back_to_main"
	TokenCheckout   = "checkout"
	TokenConfirm    = "confirm_order"
	TokenCancel     = "cancel_order"
)

// Token is a parsed callback token.
type Token struct {
	Action string
	Arg    int64
	HasArg bool
}

// ParseToken splits a trailing integer argument off data. Data without one is a bare action.
func ParseToken(data string) Token {
	data = strings.TrimSpace(data)
	if i := strings.LastIndexByte(data, '_'); i > 0 && i < len(data)-1 {
		if n, err := strconv.ParseInt(data[i+1:], 10, 64); err == nil {
			return Token{Action: data[:i], Arg: n, HasArg: true}
		}
	}
	return Token{Action: data}
}

// String renders the token back into callback data.
func (t Token) String() string {
	if !t.HasArg {
		return t.Action
	}
	return t.Action + "_" + strconv.FormatInt(t.Arg, 10)
}

func argToken(action string, id int64) string {
	return Token{Action: action, Arg: id, HasArg: true}.String()
}

// ViewToken opens a product card.
func ViewToken(productID int64) string { return argToken(ActionView, productID) }

// AddToken adds one unit of a product to the cart.
func AddToken(productID int64) string { return argToken(ActionAdd, productID) }

// RemoveToken deletes the cart line holding productID.
func RemoveToken(productID int64) string { return argToken(ActionRemove, productID) }
