package models

import (
	"strings"
	"time"
)

// NotificationEvent is a raw banking-app notification captured by the device
// listener. It is ephemeral: consumed once by the pipeline, never persisted.
type NotificationEvent struct {
	SourceAppID string
	Title       string
	Text        string
	BigText     string
	Timestamp   time.Time
}

// FullText joins the notification title and body into the text handed to the
// classifier. BigText, when present, supersedes the collapsed Text field.
func (e NotificationEvent) FullText() string {
	body := e.BigText
	if body == "" {
		body = e.Text
	}

	parts := make([]string, 0, 2)
	if strings.TrimSpace(e.Title) != "" {
		parts = append(parts, strings.TrimSpace(e.Title))
	}
	if strings.TrimSpace(body) != "" {
		parts = append(parts, strings.TrimSpace(body))
	}
	return strings.Join(parts, " - ")
}

// EventFromMillis builds a NotificationEvent with an epoch-milliseconds
// timestamp, the wire format used by the device listener and the webhook.
func EventFromMillis(sourceAppID, title, text, bigText string, millis int64) NotificationEvent {
	return NotificationEvent{
		SourceAppID: sourceAppID,
		Title:       title,
		Text:        text,
		BigText:     bigText,
		Timestamp:   time.UnixMilli(millis),
	}
}
