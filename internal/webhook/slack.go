package webhook

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kylemclaren/clockbar/internal/reminder"
)

// Slack posts break reminders to a Slack incoming webhook
type Slack struct {
	webhookURL string
	client     *http.Client
}

// NewSlack creates a new Slack webhook sink
func NewSlack(webhookURL string) *Slack {
	return &Slack{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// SlackBlock represents a Slack Block Kit block
type SlackBlock struct {
	Type     string         `json:"type"`
	Text     *SlackTextObj  `json:"text,omitempty"`
	Fields   []SlackTextObj `json:"fields,omitempty"`
	Elements []SlackElement `json:"elements,omitempty"`
}

// SlackTextObj represents a Slack text object
type SlackTextObj struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

// SlackElement represents a Slack element (for context blocks)
type SlackElement struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SlackAttachment represents a Slack attachment (for colored sidebar)
type SlackAttachment struct {
	Color  string       `json:"color"`
	Blocks []SlackBlock `json:"blocks"`
}

// SlackPayload represents the webhook payload
type SlackPayload struct {
	Text        string            `json:"text,omitempty"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

// Notify sends the reminder as a header, a field section and a context line
func (s *Slack) Notify(ctx context.Context, n reminder.Notification) error {
	blocks := []SlackBlock{
		{
			Type: "header",
			Text: &SlackTextObj{Type: "plain_text", Text: ":coffee: " + n.Summary, Emoji: true},
		},
		{
			Type: "section",
			Fields: []SlackTextObj{
				{Type: "mrkdwn", Text: fmt.Sprintf("*Task:*\n%s", n.TaskName)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Elapsed:*\n%d min", n.ElapsedMinutes)},
			},
		},
		{
			Type: "context",
			Elements: []SlackElement{
				{Type: "mrkdwn", Text: fmt.Sprintf("clockbar • %s", time.Now().Format("15:04"))},
			},
		},
	}

	payload := SlackPayload{
		Text: n.Body,
		Attachments: []SlackAttachment{
			{Color: "#d97757", Blocks: blocks},
		},
	}

	return postJSON(ctx, s.client, s.webhookURL, payload)
}
