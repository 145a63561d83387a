package domain

import (
	"strings"
	"time"
)

// TranscriptClockLayout is the time-of-day format used in rendered transcripts.
const TranscriptClockLayout = "15:04:05"

const (
	closingAuthor  = "Ticket"
	closingContent = "Closed"
)

// TranscriptEntry is one captured message of a ticket conversation.
type TranscriptEntry struct {
	At      time.Time `json:"at"`
	Author  string    `json:"author"`
	Content string    `json:"content"`
}

// ClosingEntry is the synthetic record appended when a ticket is closed.
func ClosingEntry(at time.Time) TranscriptEntry {
	return TranscriptEntry{At: at, Author: closingAuthor, Content: closingContent}
}

// Clock returns the UTC time of day of the entry.
func (e TranscriptEntry) Clock() string {
	return e.At.UTC().Format(TranscriptClockLayout)
}

// String renders the entry as "(HH:MM:SS) author: content".
func (e TranscriptEntry) String() string {
	return "(" + e.Clock() + ") " + e.Author + ": " + e.Content
}

// RenderTranscript joins the rendered entries with newlines.
func RenderTranscript(entries []TranscriptEntry) string {
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, entry.String())
	}
	return strings.Join(lines, "\n")
}
