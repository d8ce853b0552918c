package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/containrrr/shoutrrr"

	"github.com/Wikid82/autosource/backend/internal/models"
)

// ShoutrrrNotifier posts a short message about each new lead to a shoutrrr
// service URL (Discord, Slack, Telegram, SMTP and so on).
type ShoutrrrNotifier struct {
	url  string
	send func(url, message string) error
}

// NewShoutrrrNotifier returns nil when url is empty so callers can pass the
// result straight to LeadService.SetNotifier.
func NewShoutrrrNotifier(url string) *ShoutrrrNotifier {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}
	return &ShoutrrrNotifier{url: normalizeNotifyURL(url), send: shoutrrr.Send}
}

var discordWebhookRegex = regexp.MustCompile(`^https://discord(?:app)?\.com/api/webhooks/(\d+)/([a-zA-Z0-9_-]+)`)

// normalizeNotifyURL accepts a plain Discord webhook URL as well as the
// shoutrrr form.
func normalizeNotifyURL(rawURL string) string {
	if m := discordWebhookRegex.FindStringSubmatch(rawURL); len(m) == 3 {
		return fmt.Sprintf("discord://%s@%s", m[2], m[1])
	}
	return rawURL
}

func (n *ShoutrrrNotifier) NotifyNewLead(ctx context.Context, lead *models.Lead) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := n.send(n.url, leadMessage(lead)); err != nil {
		return fmt.Errorf("send lead notification: %w", err)
	}
	return nil
}

func leadMessage(lead *models.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New lead (%s)\n\n", lead.Source)
	fmt.Fprintf(&b, "Vehicle: %s\n", lead.VehicleInterest)
	if lead.Budget != "" {
		fmt.Fprintf(&b, "Budget: %s\n", lead.Budget)
	}
	fmt.Fprintf(&b, "Contact: %s", lead.Contact)
	return b.String()
}
