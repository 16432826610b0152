package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

func TestRegistryCommands(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCommand("/cart", Command{Handler: noop, Description: "Cart", Aliases: []string{"order"}}))
	require.NoError(t, reg.RegisterCommand("/stats", Command{Handler: noop, Description: "Stats", AdminOnly: true}))
	require.NoError(t, reg.RegisterCommand("/catalog", Command{Handler: noop, Description: "Catalog"}))

	assert.Error(t, reg.RegisterCommand("/cart", Command{Handler: noop, Description: "again"}))
	assert.Error(t, reg.RegisterCommand("help", Command{Handler: noop, Description: "Help"}))
	assert.Error(t, reg.RegisterCommand("/help", Command{Description: "Help"}))

	name, _, ok := reg.LookupCommand("order")
	require.True(t, ok)
	assert.Equal(t, "/cart", name)
	name, _, ok = reg.LookupCommand("/catalog")
	require.True(t, ok)
	assert.Equal(t, "/catalog", name)
	_, _, ok = reg.LookupCommand("/nope")
	assert.False(t, ok)

	assert.Equal(t, []tele.Command{
		{Text: "/cart", Description: "Cart"},
		{Text: "/catalog", Description: "Catalog"},
	}, reg.MenuCommands())
}

func TestRegistryCallbacks(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCallback("view", noop))
	require.NoError(t, reg.RegisterCallback("add", noop))
	assert.Error(t, reg.RegisterCallback("view", noop))
	assert.Error(t, reg.RegisterCallback("", noop))

	_, ok := reg.Callback("add")
	assert.True(t, ok)
	assert.Equal(t, []string{"add", "view"}, reg.CallbackKeys())

	before := reg.CallbackNotFound()
	reg.SetCallbackNotFound(nil)
	assert.NotNil(t, before)
	assert.NotNil(t, reg.CallbackNotFound())
}
