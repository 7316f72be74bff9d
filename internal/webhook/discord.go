package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kylemclaren/clockbar/internal/reminder"
)

// Discord posts break reminders to a Discord webhook
type Discord struct {
	webhookURL string
	client     *http.Client
}

// NewDiscord creates a new Discord webhook sink
func NewDiscord(webhookURL string) *Discord {
	return &Discord{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// DiscordEmbed represents a Discord embed object
type DiscordEmbed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
}

// EmbedField represents a field in a Discord embed
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// EmbedFooter represents the footer of a Discord embed
type EmbedFooter struct {
	Text string `json:"text"`
}

// DiscordPayload represents the webhook payload
type DiscordPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []DiscordEmbed `json:"embeds,omitempty"`
}

// Notify sends the reminder as a single embed
func (d *Discord) Notify(ctx context.Context, n reminder.Notification) error {
	embed := DiscordEmbed{
		Title:       "☕ " + n.Summary,
		Description: n.Body,
		Color:       0xd97757,
		Fields: []EmbedField{
			{Name: "Task", Value: n.TaskName, Inline: true},
			{Name: "Elapsed", Value: fmt.Sprintf("%d min", n.ElapsedMinutes), Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
		Footer:    &EmbedFooter{Text: "clockbar"},
	}

	return postJSON(ctx, d.client, d.webhookURL, DiscordPayload{Embeds: []DiscordEmbed{embed}})
}

func postJSON(ctx context.Context, client *http.Client, webhookURL string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
