package discord

import (
	"context"

	"github.com/keghouse/barkeep/internal/audio"
	"github.com/keghouse/barkeep/internal/transcriber"
)

type SlashCommandDefinition struct {
	Name        string
	Description string
}

type SlashCommandEvent struct {
	GuildID          string
	ChannelID        string
	CommandName      string
	UserID           string
	RespondEphemeral func(content string) error
}

type VoiceStateEvent struct {
	GuildID         string
	UserID          string
	UserIsBot       bool
	BeforeChannelID string
	AfterChannelID  string
}

type VoiceParticipant struct {
	UserID      string
	DisplayName string
	IsBot       bool
}

type Client interface {
	Connect(ctx context.Context) error
	Close() error
	Run() error
	JoinVoiceChannel(guildID, channelID string) (VoiceConnection, error)
	SendChannelMessage(channelID, content string) error
	SendMessageReply(channelID, messageID, content string) error
	AddReaction(channelID, messageID, emoji string) error
	RegisterVoiceStateUpdateHandler(handler func(VoiceStateEvent))
	RegisterSlashCommandHandler(handler func(SlashCommandEvent))
	UpsertGuildSlashCommands(guildID string, defs []SlashCommandDefinition) error
	GetUserVoiceChannelID(guildID, userID string) (string, error)
	ListVoiceChannelParticipants(guildID, channelID string) ([]VoiceParticipant, error)
	ResolveDisplayName(guildID, userID string) string
	GetGuildName(guildID string) (string, error)
	GetChannelName(channelID string) (string, error)
	GetBotUserID() (string, error)
	GetBotDisplayName(guildID string) (string, error)
	UpdateBotNickname(guildID, nickname string) error
	ListOnlineUsers(guildID string) ([]string, error)
}

// VoiceConnection is one occupancy of a voice channel. Capture and playback
// run on the same underlying connection; the session loop guarantees they
// never overlap for one session.
type VoiceConnection interface {
	// StartCapture begins accumulating per-speaker audio until Stop is
	// called on the returned capture.
	StartCapture() (Capture, error)
	// Play streams 48kHz stereo PCM into the channel and blocks until
	// playback drains or ctx is canceled.
	Play(ctx context.Context, pcm audio.PCM) error
	Connected() bool
	Disconnect() error
}

// Capture yields the per-speaker buffers of one recording interval, ordered
// by each speaker's first packet time.
type Capture interface {
	Stop() []transcriber.SpeakerTurn
}
