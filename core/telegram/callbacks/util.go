// Package callbacks reads the raw data carried by inline button presses.
package callbacks

import (
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Data returns the callback data of cb. Buttons built with a telebot unique
// arrive split into Unique and Data; those are joined back with '_'.
func Data(cb *tele.Callback) string {
	if cb == nil {
		return ""
	}
	data := strings.TrimSpace(strings.TrimPrefix(cb.Data, "\f"))
	if cb.Unique == "" {
		return data
	}
	if data == "" {
		return cb.Unique
	}
	return cb.Unique + "_" + data
}

// Split separates a trailing "_<integer>" argument from data.
// "view_12" yields ("view", "12"); "clear_cart" yields ("clear_cart", "").
func Split(data string) (key, arg string) {
	i := strings.LastIndexByte(data, '_')
	if i <= 0 || i == len(data)-1 {
		return data, ""
	}
	if _, err := strconv.ParseInt(data[i+1:], 10, 64); err != nil {
		return data, ""
	}
	return data[:i], data[i+1:]
}

// Key returns the routing key of the current callback.
func Key(c tele.Context) string {
	key, _ := Split(Data(c.Callback()))
	return key
}
