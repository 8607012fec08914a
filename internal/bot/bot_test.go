package bot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopbot/internal/config"
	"shopbot/internal/gateway"
	"shopbot/internal/shop"
	"shopbot/internal/store"
)

func newTestBot(t *testing.T) *Bot {
	t.Helper()

	st := store.New(t.TempDir())
	tracker := shop.NewTracker(st, gateway.NewMock(), time.Millisecond, 3)
	service := shop.NewService(st, tracker, nil)

	cfg := config.BotConfig{
		Token:    "test-token",
		Prefix:   ".",
		AdminIDs: []string{"42"},
	}
	b, err := New(context.Background(), cfg, st, service, gateway.NewRateClient("http://localhost"))
	require.NoError(t, err)
	return b
}

func TestCommandTableResolvesAliases(t *testing.T) {
	b := newTestBot(t)

	buy, ok := b.commands["buy"]
	require.True(t, ok)
	assert.Same(t, buy, b.commands["purchase"])

	pending, ok := b.commands["pending_orders"]
	require.True(t, ok)
	for _, alias := range []string{"pendingdelivery", "pdorders", "pdo", "deliverypending"} {
		assert.Same(t, pending, b.commands[alias], alias)
	}

	del, ok := b.commands["delete_pending_order"]
	require.True(t, ok)
	assert.Same(t, del, b.commands["dpo"])
}

func TestAdminCommandsAreFlagged(t *testing.T) {
	b := newTestBot(t)

	for _, name := range []string{"addproduct", "delproduct", "editprice", "stock", "pending_orders", "delete_pending_order", "checkpayment", "delivery"} {
		cmd, ok := b.commands[name]
		require.True(t, ok, name)
		assert.True(t, cmd.AdminOnly, name)
	}
	for _, name := range []string{"register", "myinfo", "buy", "products", "ltc"} {
		cmd, ok := b.commands[name]
		require.True(t, ok, name)
		assert.False(t, cmd.AdminOnly, name)
	}
}

func TestAdminSetFromConfig(t *testing.T) {
	b := newTestBot(t)

	assert.True(t, b.admins["42"])
	assert.False(t, b.admins["7"])
}

func TestParseUserArg(t *testing.T) {
	assert.Equal(t, "123", parseUserArg("123"))
	assert.Equal(t, "123", parseUserArg("<@123>"))
	assert.Equal(t, "123", parseUserArg("<@!123>"))
}
