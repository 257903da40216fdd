// Package notification handles sending notifications to external services.
package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/containrrr/shoutrrr"

	"github.com/zorak1103/ncdeploy/internal/config"
)

// Notifier handles sending deploy notifications via Shoutrrr
type Notifier struct {
	enabled     bool
	shoutrrrURL string
}

// NewNotifier initializes a Shoutrrr-based notification client from config.
func NewNotifier(cfg *config.Config) (*Notifier, error) {
	if !cfg.Notification.Enabled {
		return &Notifier{enabled: false}, nil
	}

	url := strings.TrimSpace(cfg.Notification.ShoutrrURL)
	if url == "" {
		return &Notifier{enabled: false}, fmt.Errorf("notification enabled but shoutrrr_url not configured: provide URL in format 'service://credentials' (e.g., slack://token@channel, discord://token@webhookid)")
	}

	return &Notifier{
		enabled:     true,
		shoutrrrURL: url,
	}, nil
}

// SendDeployResult delivers a deploy outcome via the configured channel.
// Failures here are reported to the caller but must never fail the deploy.
func (n *Notifier) SendDeployResult(host, tag string, success bool, took time.Duration) error {
	if !n.enabled {
		return nil // Notifications disabled
	}

	var sb strings.Builder
	if success {
		sb.WriteString("🚀 Deploy succeeded\n")
	} else {
		sb.WriteString("❌ Deploy failed\n")
	}
	sb.WriteString(fmt.Sprintf("🖥  Host: %s\n", host))
	if tag != "" {
		sb.WriteString(fmt.Sprintf("🏷  Tag: %s\n", tag))
	}
	sb.WriteString(fmt.Sprintf("⏱  Took: %s\n", took.Round(time.Second)))
	sb.WriteString(fmt.Sprintf("📅 Time: %s\n", time.Now().Format("2006-01-02 15:04:05")))

	if err := shoutrrr.Send(n.shoutrrrURL, sb.String()); err != nil {
		serviceType := "unknown"
		if idx := strings.Index(n.shoutrrrURL, "://"); idx > 0 {
			serviceType = n.shoutrrrURL[:idx]
		}
		return fmt.Errorf("notification failed to send via %s (host: %s, success: %t): %w", serviceType, host, success, err)
	}

	return nil
}

// IsEnabled reports whether notifications are configured and active.
func (n *Notifier) IsEnabled() bool {
	return n.enabled
}
