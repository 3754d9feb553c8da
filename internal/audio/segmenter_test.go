package audio

import (
	"encoding/binary"
	"errors"
	"testing"
)

type fakeClassifier struct {
	speechFrames map[int]bool
	err          error
	calls        int
}

func (f *fakeClassifier) IsSpeech(frame []int16, sampleRate int) (bool, error) {
	idx := f.calls
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.speechFrames[idx], nil
}

// 30ms at 16kHz
const testFrameSize = 480

func TestHasSpeech_ShorterThanOneFrame(t *testing.T) {
	seg := NewSegmenter(&fakeClassifier{speechFrames: map[int]bool{0: true}})
	if seg.HasSpeech(make([]int16, testFrameSize-1), 16000) {
		t.Fatal("buffer shorter than one frame must never contain speech")
	}
	if seg.HasSpeech(nil, 16000) {
		t.Fatal("empty buffer must never contain speech")
	}
}

func TestHasSpeech_FirstSpeechFrameWins(t *testing.T) {
	fc := &fakeClassifier{speechFrames: map[int]bool{2: true}}
	seg := NewSegmenter(fc)
	if !seg.HasSpeech(make([]int16, testFrameSize*5), 16000) {
		t.Fatal("expected speech to be detected")
	}
	if fc.calls != 3 {
		t.Fatalf("expected classification to stop at first speech frame, got %d calls", fc.calls)
	}
}

func TestHasSpeech_AllSilence(t *testing.T) {
	fc := &fakeClassifier{speechFrames: map[int]bool{}}
	seg := NewSegmenter(fc)
	if seg.HasSpeech(make([]int16, testFrameSize*4), 16000) {
		t.Fatal("expected no speech")
	}
	if fc.calls != 4 {
		t.Fatalf("expected 4 full frames to be classified, got %d", fc.calls)
	}
}

func TestHasSpeech_TrailingPartialFrameIgnored(t *testing.T) {
	fc := &fakeClassifier{speechFrames: map[int]bool{}}
	seg := NewSegmenter(fc)
	seg.HasSpeech(make([]int16, testFrameSize*2+100), 16000)
	if fc.calls != 2 {
		t.Fatalf("expected trailing partial frame to be skipped, got %d calls", fc.calls)
	}
}

func TestHasSpeech_ClassifierErrorIsSilence(t *testing.T) {
	seg := NewSegmenter(&fakeClassifier{err: errors.New("malformed frame")})
	if seg.HasSpeech(make([]int16, testFrameSize*3), 16000) {
		t.Fatal("classifier errors must be treated as silence")
	}
}

func TestHasSpeech_InvalidSampleRate(t *testing.T) {
	seg := NewSegmenter(&fakeClassifier{speechFrames: map[int]bool{0: true}})
	if seg.HasSpeech(make([]int16, testFrameSize), 0) {
		t.Fatal("invalid sample rate must be treated as no speech")
	}
}

func TestDownmixStereo(t *testing.T) {
	mono := DownmixStereo([]int16{100, 200, -100, -200}, 2)
	if len(mono) != 2 {
		t.Fatalf("unexpected mono length: %d", len(mono))
	}
	if mono[0] != 150 || mono[1] != -150 {
		t.Fatalf("unexpected downmix result: %v", mono)
	}
}

func TestDownmixStereo_MonoPassthrough(t *testing.T) {
	in := []int16{1, 2, 3}
	out := DownmixStereo(in, 1)
	if len(out) != 3 || out[0] != 1 || out[2] != 3 {
		t.Fatalf("mono input should pass through unchanged: %v", out)
	}
}

func TestResampleAndWiden(t *testing.T) {
	in := PCM{Samples: []int16{10, 20, 30, 40}, SampleRate: 24000, Channels: 1}
	out := ResampleAndWiden(in, 48000)
	if out.SampleRate != 48000 || out.Channels != 2 {
		t.Fatalf("unexpected output format: %d Hz %d ch", out.SampleRate, out.Channels)
	}
	if len(out.Samples) != 16 {
		t.Fatalf("expected 8 stereo sample pairs, got %d samples", len(out.Samples))
	}
	// first input sample duplicated into both channels
	if out.Samples[0] != 10 || out.Samples[1] != 10 {
		t.Fatalf("unexpected first sample pair: %v", out.Samples[:2])
	}
}

func TestEncodeWAV_Header(t *testing.T) {
	samples := []int16{0, 1000, -1000}
	wav := EncodeWAV(samples, 48000, 1)
	if len(wav) != 44+len(samples)*2 {
		t.Fatalf("unexpected wav size: %d", len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE markers")
	}
	if rate := binary.LittleEndian.Uint32(wav[24:28]); rate != 48000 {
		t.Fatalf("unexpected sample rate in header: %d", rate)
	}
	if got := int16(binary.LittleEndian.Uint16(wav[46:48])); got != 1000 {
		t.Fatalf("unexpected encoded sample: %d", got)
	}
}
