package session

import (
	"github.com/lvyanru/venue-chat/internal/toolpayload"
)

// Transcript notices
const (
	CompletedNotice   = "✅ Request completed."
	ConnectionNotice  = "⚠️ Connection error."
	ServerErrorPrefix = "⚠️ Error: "
	InterruptedMarker = "*(interrupted)*"
	InlineErrorPrefix = "\n⚠️ "
	LongLinkNotice    = "link available in the widget"
)

// Config tunes a Session
type Config struct {
	// ExpandIncrement is how many venues one expansion reveals
	ExpandIncrement int
	// LongLinkThreshold is the URL length above which links are replaced
	LongLinkThreshold int
	// ShowMorePrompt is sent when the full list is not held locally
	ShowMorePrompt string
	// BookPrompt is a format string taking the venue name
	BookPrompt string
	// Repairer recovers truncated tool output
	Repairer toolpayload.Repairer
}

// DefaultConfig returns the defaults used by the CLI
func DefaultConfig() Config {
	return Config{
		ExpandIncrement:   6,
		LongLinkThreshold: 35,
		ShowMorePrompt:    "Show me more venues",
		BookPrompt:        "I'd like to book a table at %s",
		Repairer: toolpayload.Repairer{
			Marker: toolpayload.DefaultTruncationMarker,
			Field:  toolpayload.DefaultExpandableField,
		},
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ExpandIncrement <= 0 {
		c.ExpandIncrement = d.ExpandIncrement
	}
	if c.LongLinkThreshold <= 0 {
		c.LongLinkThreshold = d.LongLinkThreshold
	}
	if c.ShowMorePrompt == "" {
		c.ShowMorePrompt = d.ShowMorePrompt
	}
	if c.BookPrompt == "" {
		c.BookPrompt = d.BookPrompt
	}
	if c.Repairer.Marker == "" {
		c.Repairer.Marker = d.Repairer.Marker
	}
	if c.Repairer.Field == "" {
		c.Repairer.Field = d.Repairer.Field
	}
	return c
}
