package message

import (
	"strings"
	"time"
)

// RawMessage is an inbound recruiting message as handed over by the
// acquisition layer. It is read-only for the pipeline.
type RawMessage struct {
	Sender     string    `json:"sender"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at,omitempty"`

	// Context holds prior messages of the same thread, oldest first.
	// Empty for a first contact.
	Context []string `json:"context,omitempty"`
}

// HasContext reports whether the message carries prior thread messages.
func (m *RawMessage) HasContext() bool {
	return m != nil && len(m.Context) > 0
}

// ContextText joins the prior thread messages into a single block suitable
// for prompting.
func (m *RawMessage) ContextText() string {
	if !m.HasContext() {
		return ""
	}
	return strings.Join(m.Context, "\n---\n")
}
