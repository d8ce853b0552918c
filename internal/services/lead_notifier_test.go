package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wikid82/autosource/backend/internal/models"
)

func TestNewShoutrrrNotifier_EmptyURL(t *testing.T) {
	assert.Nil(t, NewShoutrrrNotifier("  "))
}

func TestNormalizeNotifyURL(t *testing.T) {
	assert.Equal(t, "discord://tok_en@12345", normalizeNotifyURL("https://discord.com/api/webhooks/12345/tok_en"))
	assert.Equal(t, "slack://a/b/c", normalizeNotifyURL("slack://a/b/c"))
}

func TestShoutrrrNotifier_NotifyNewLead(t *testing.T) {
	n := NewShoutrrrNotifier("generic://example.com/hook")
	var gotURL, gotMsg string
	n.send = func(url, message string) error {
		gotURL, gotMsg = url, message
		return nil
	}

	lead := &models.Lead{VehicleInterest: "Audi A4", Budget: "20k", Contact: "jane@example.com", Source: models.LeadSourceSourcing}
	require.NoError(t, n.NotifyNewLead(context.Background(), lead))
	assert.Equal(t, "generic://example.com/hook", gotURL)
	assert.Contains(t, gotMsg, "New lead (sourcing)")
	assert.Contains(t, gotMsg, "Budget: 20k")
	assert.Contains(t, gotMsg, "Contact: jane@example.com")

	n.send = func(string, string) error { return errors.New("boom") }
	assert.Error(t, n.NotifyNewLead(context.Background(), lead))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.NotifyNewLead(ctx, lead), context.Canceled)
}
