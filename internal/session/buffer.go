package session

import (
	"fmt"
	"strings"
	"time"
)

// TranscriptEntry is one utterance captured from one speaker in one
// recording interval.
type TranscriptEntry struct {
	SpeakerID   string
	SpeakerName string
	CapturedAt  time.Time
	Text        string
}

func (e TranscriptEntry) line() string {
	return fmt.Sprintf("%s: %s", e.SpeakerName, e.Text)
}

// transcriptBuffer accumulates tagged utterances between activation-phrase
// flushes. It is owned exclusively by the session loop; entries are combined
// and flushed in append order.
type transcriptBuffer struct {
	entries []TranscriptEntry
}

func (b *transcriptBuffer) append(entry TranscriptEntry) {
	b.entries = append(b.entries, entry)
}

func (b *transcriptBuffer) len() int {
	return len(b.entries)
}

// flush combines everything buffered so far, including the triggering
// utterance, into one message and clears the buffer.
func (b *transcriptBuffer) flush() string {
	if len(b.entries) == 0 {
		return ""
	}
	lines := make([]string, len(b.entries))
	for i, entry := range b.entries {
		lines[i] = entry.line()
	}
	b.entries = nil
	return strings.Join(lines, "\n")
}
