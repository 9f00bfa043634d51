package discordsender

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DIMO-Network/server-garage/pkg/richerrors"
	"github.com/DIMO-Network/shop-notifier/internal/events"
	"github.com/DIMO-Network/shop-notifier/internal/notification"
)

const (
	// DispatchFailureCode is the code returned when the chat webhook could not be delivered to.
	DispatchFailureCode = -1

	// FormatEmbed sends one rich embed per notification.
	FormatEmbed = "embed"
	// FormatText sends the notification as a plain markdown message.
	FormatText = "text"

	// Default timeout for webhook requests
	defaultTimeout = 30 * time.Second
	// Maximum response body size to read for error logging
	maxResponseBodySize = 1024
	// Discord rejects message content longer than this.
	maxContentLength = 2000
	// Discord rejects embed descriptions longer than this.
	maxDescriptionLength = 4096
)

var kindColors = map[string]int{
	events.KindEstimateViewed:       0x3498DB,
	events.KindWorkAuthorization:    0x2ECC71,
	events.KindRepairOrderCompleted: 0x9B59B6,
	events.KindPaymentMade:          0xF1C40F,
	events.KindInspectionCompleted:  0x1ABC9C,
	events.KindPartsReceived:        0xE67E22,
}

// Config holds the Discord destination settings.
type Config struct {
	WebhookURL string
	Format     string
	Username   string
}

// Message is the Discord execute-webhook body.
type Message struct {
	Content  string  `json:"content,omitempty"`
	Username string  `json:"username,omitempty"`
	Embeds   []Embed `json:"embeds,omitempty"`
}

// Embed is a Discord rich embed.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

// EmbedField is a name/value pair inside an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// DiscordSender delivers notifications to a Discord channel webhook.
type DiscordSender struct {
	client *http.Client
	cfg    Config
	now    func() time.Time
}

// NewDiscordSender creates a new DiscordSender. A nil client gets a default with a 30 second timeout.
func NewDiscordSender(client *http.Client, cfg Config) *DiscordSender {
	if client == nil {
		client = &http.Client{
			Timeout: defaultTimeout,
		}
	}
	if cfg.Format != FormatText {
		cfg.Format = FormatEmbed
	}
	return &DiscordSender{
		client: client,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Enabled reports whether a destination is configured.
func (d *DiscordSender) Enabled() bool {
	return d.cfg.WebhookURL != ""
}

// Send posts content to the configured webhook.
// Returns a rich error with DispatchFailureCode for delivery failures, nil for success.
func (d *DiscordSender) Send(ctx context.Context, content *notification.Content) error {
	if content == nil {
		return errors.New("nil notification content")
	}
	body, err := json.Marshal(d.BuildMessage(content))
	if err != nil {
		return fmt.Errorf("failed to marshal discord message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.WebhookURL, bytes.NewBuffer(body))
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return richerrors.Error{
				Code: DispatchFailureCode,
				Err:  fmt.Errorf("invalid URL: %w", err),
			}
		}
		return fmt.Errorf("failed to create discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "DIMO-Shop-Notifier/1.0")

	resp, err := d.client.Do(req)
	if err != nil {
		return richerrors.Error{
			Code: DispatchFailureCode,
			Err:  fmt.Errorf("failed to POST to discord: %w", err),
		}
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
		return richerrors.Error{
			Code: DispatchFailureCode,
			Err:  fmt.Errorf("discord returned status code %d: %s", resp.StatusCode, string(respBody)),
		}
	}
	return nil
}

// BuildMessage converts content into the configured Discord message shape.
func (d *DiscordSender) BuildMessage(content *notification.Content) Message {
	msg := Message{Username: d.cfg.Username}
	if d.cfg.Format == FormatText {
		msg.Content = truncate(TextContent(content), maxContentLength)
		return msg
	}

	embed := Embed{
		Title:       content.Title,
		Description: truncate(content.Body, maxDescriptionLength),
		Color:       kindColors[content.Kind],
		Timestamp:   d.now().UTC().Format(time.RFC3339),
	}
	for _, f := range content.Fields {
		embed.Fields = append(embed.Fields, EmbedField{Name: f.Label, Value: f.Value, Inline: true})
	}
	msg.Embeds = []Embed{embed}
	return msg
}

// TextContent renders content as a single markdown message.
func TextContent(content *notification.Content) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n%s", content.Title, content.Body)
	if len(content.Fields) > 0 {
		b.WriteString("\n")
		for _, f := range content.Fields {
			fmt.Fprintf(&b, "\n%s: %s", f.Label, f.Value)
		}
	}
	return b.String()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
