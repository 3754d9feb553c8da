package session

import (
	"testing"
	"time"
)

func TestTranscriptBuffer_GrowsUntilFlushed(t *testing.T) {
	var b transcriptBuffer

	b.append(TranscriptEntry{SpeakerName: "Alice", Text: "hello", CapturedAt: time.Now()})
	b.append(TranscriptEntry{SpeakerName: "Bob", Text: "hey barkeep", CapturedAt: time.Now()})

	if b.len() != 2 {
		t.Fatalf("expected 2 buffered entries, got %d", b.len())
	}

	got := b.flush()
	want := "Alice: hello\nBob: hey barkeep"
	if got != want {
		t.Fatalf("unexpected flush output:\n%q\nwant:\n%q", got, want)
	}
	if b.len() != 0 {
		t.Fatalf("expected buffer to be empty after flush, got %d entries", b.len())
	}
}

func TestTranscriptBuffer_FlushEmptyReturnsEmptyString(t *testing.T) {
	var b transcriptBuffer
	if got := b.flush(); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestTranscriptBuffer_FlushPreservesAppendOrder(t *testing.T) {
	var b transcriptBuffer
	b.append(TranscriptEntry{SpeakerName: "C", Text: "third speaker first"})
	b.append(TranscriptEntry{SpeakerName: "A", Text: "then this"})
	b.append(TranscriptEntry{SpeakerName: "B", Text: "then that"})

	got := b.flush()
	want := "C: third speaker first\nA: then this\nB: then that"
	if got != want {
		t.Fatalf("unexpected flush output: %q", got)
	}
}
