package discord

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keghouse/barkeep/internal/audio"
	discordpkg "github.com/keghouse/barkeep/internal/discord"
	"github.com/keghouse/barkeep/internal/transcriber"
)

const (
	voiceSampleRate = 48000
	voiceChannels   = 2
	// Discord voice frames are 20ms: 960 samples per channel at 48kHz.
	voiceFrameSize = 960
)

// pcmDecoder and pcmEncoder are the opus codec seams; real implementations
// live behind the opus build tag.
type pcmDecoder interface {
	Decode(packet []byte) ([]int16, error)
}

type pcmEncoder interface {
	Encode(frame []int16) ([]byte, error)
}

type voiceConnection struct {
	client  *Client
	vc      *discordgo.VoiceConnection
	guildID string

	mu      sync.Mutex
	capture *captureState

	recvOnce sync.Once
	ssrcMu   sync.RWMutex
	ssrcToID map[uint32]string
}

func newVoiceConnection(client *Client, vc *discordgo.VoiceConnection, guildID string) *voiceConnection {
	v := &voiceConnection{
		client:   client,
		vc:       vc,
		guildID:  guildID,
		ssrcToID: make(map[uint32]string),
	}
	vc.AddHandler(func(_ *discordgo.VoiceConnection, vs *discordgo.VoiceSpeakingUpdate) {
		if !vs.Speaking {
			return
		}
		v.ssrcMu.Lock()
		v.ssrcToID[uint32(vs.SSRC)] = vs.UserID
		v.ssrcMu.Unlock()
	})
	return v
}

func (v *voiceConnection) StartCapture() (discordpkg.Capture, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.capture != nil {
		return nil, fmt.Errorf("capture already in progress")
	}
	v.recvOnce.Do(func() { go v.receiveLoop() })
	state := newCaptureState()
	v.capture = state
	return &captureHandle{conn: v, state: state}, nil
}

// receiveLoop runs for the connection's whole life. Packets arriving outside
// a recording interval are discarded.
func (v *voiceConnection) receiveLoop() {
	if v.vc.OpusRecv == nil {
		slog.Warn("voice connection has no receive channel")
		return
	}
	for p := range v.vc.OpusRecv {
		if p == nil || len(p.Opus) == 0 {
			continue
		}
		v.mu.Lock()
		state := v.capture
		v.mu.Unlock()
		if state == nil {
			continue
		}
		v.ssrcMu.RLock()
		userID := v.ssrcToID[p.SSRC]
		v.ssrcMu.RUnlock()
		if userID == "" {
			userID = strconv.FormatUint(uint64(p.SSRC), 10)
		}
		state.ingest(userID, p.Opus)
	}
}

func (v *voiceConnection) Play(ctx context.Context, pcm audio.PCM) error {
	if pcm.SampleRate != voiceSampleRate || pcm.Channels != voiceChannels {
		return fmt.Errorf("playback requires %dHz %d-channel pcm, got %dHz %d-channel", voiceSampleRate, voiceChannels, pcm.SampleRate, pcm.Channels)
	}
	encoder, err := newPCMEncoder()
	if err != nil {
		return fmt.Errorf("create opus encoder: %w", err)
	}

	if err := v.vc.Speaking(true); err != nil {
		return fmt.Errorf("set speaking state: %w", err)
	}
	defer func() {
		if err := v.vc.Speaking(false); err != nil {
			slog.Warn("failed to clear speaking state", "error", err)
		}
	}()

	frameSamples := voiceFrameSize * voiceChannels
	for start := 0; start < len(pcm.Samples); start += frameSamples {
		end := start + frameSamples
		frame := make([]int16, frameSamples)
		if end > len(pcm.Samples) {
			copy(frame, pcm.Samples[start:])
		} else {
			copy(frame, pcm.Samples[start:end])
		}
		packet, err := encoder.Encode(frame)
		if err != nil {
			return fmt.Errorf("encode opus frame: %w", err)
		}
		if len(packet) == 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case v.vc.OpusSend <- packet:
		}
	}
	return nil
}

func (v *voiceConnection) Connected() bool {
	return v.vc != nil && v.vc.Ready
}

func (v *voiceConnection) Disconnect() error {
	return v.vc.Disconnect()
}

type speakerBuffer struct {
	decoder     pcmDecoder
	samples     []int16
	firstPacket time.Time
}

type captureState struct {
	mu       sync.Mutex
	speakers map[string]*speakerBuffer
}

func newCaptureState() *captureState {
	return &captureState{speakers: make(map[string]*speakerBuffer)}
}

func (s *captureState) ingest(userID string, packet []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf, ok := s.speakers[userID]
	if !ok {
		decoder, err := newPCMDecoder()
		if err != nil {
			slog.Error("failed to create opus decoder", "error", err, "user_id", userID)
			return
		}
		buf = &speakerBuffer{decoder: decoder, firstPacket: time.Now()}
		s.speakers[userID] = buf
	}
	samples, err := buf.decoder.Decode(packet)
	if err != nil {
		slog.Warn("failed to decode opus packet", "error", err, "user_id", userID)
		return
	}
	buf.samples = append(buf.samples, samples...)
}

type captureHandle struct {
	conn  *voiceConnection
	state *captureState
}

// Stop detaches this capture from the connection and returns one turn per
// speaker, ordered by each speaker's first packet.
func (h *captureHandle) Stop() []transcriber.SpeakerTurn {
	h.conn.mu.Lock()
	if h.conn.capture == h.state {
		h.conn.capture = nil
	}
	h.conn.mu.Unlock()

	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	turns := make([]transcriber.SpeakerTurn, 0, len(h.state.speakers))
	for userID, buf := range h.state.speakers {
		if len(buf.samples) == 0 {
			continue
		}
		turns = append(turns, transcriber.SpeakerTurn{
			UserID:      userID,
			DisplayName: h.conn.client.ResolveDisplayName(h.conn.guildID, userID),
			PCM:         buf.samples,
			SampleRate:  voiceSampleRate,
			Channels:    voiceChannels,
			CapturedAt:  buf.firstPacket,
		})
	}
	sort.Slice(turns, func(i, j int) bool {
		return turns[i].CapturedAt.Before(turns[j].CapturedAt)
	})
	return turns
}
