package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/keghouse/barkeep/internal/assistant"
	"github.com/keghouse/barkeep/internal/config"
	"github.com/keghouse/barkeep/internal/discord"
	"github.com/keghouse/barkeep/internal/repository"
	"github.com/keghouse/barkeep/internal/speech"
	"github.com/keghouse/barkeep/internal/tools"
	"github.com/keghouse/barkeep/internal/transcriber"
	"github.com/keghouse/barkeep/internal/webhook"
)

const (
	slashCommandStart = "barkeep"
	slashCommandStop  = "barkeep-stop"
)

// Manager owns the registry of live voice sessions, keyed by guild id. At
// most one session runs per guild; all starts and stops go through it.
type Manager struct {
	cfg         *config.Config
	repo        repository.Repository
	discord     discord.Client
	runs        assistant.RunService
	transcriber transcriber.Transcriber
	synth       speech.Synthesizer
	webhook     webhook.Sender

	// starting reserves a guild between the slash-command check and the
	// registry write, so two concurrent starts cannot both pass the check.
	mu       sync.Mutex
	sessions map[string]*runningSession
	starting map[string]struct{}
}

type runningSession struct {
	session     *VoiceSession
	repoSession *repository.Session
	voice       discord.VoiceConnection
	cancel      context.CancelFunc
}

func NewManager(
	cfg *config.Config,
	repo repository.Repository,
	dc discord.Client,
	runs assistant.RunService,
	stt transcriber.Transcriber,
	synth speech.Synthesizer,
	wh webhook.Sender,
) *Manager {
	return &Manager{
		cfg:         cfg,
		repo:        repo,
		discord:     dc,
		runs:        runs,
		transcriber: stt,
		synth:       synth,
		webhook:     wh,
		sessions:    make(map[string]*runningSession),
		starting:    make(map[string]struct{}),
	}
}

func SlashCommandDefinitions() []discord.SlashCommandDefinition {
	return []discord.SlashCommandDefinition{
		{Name: slashCommandStart, Description: slashCommandStartDescription},
		{Name: slashCommandStop, Description: slashCommandStopDescription},
	}
}

func (m *Manager) HandleSlashCommand(event discord.SlashCommandEvent) {
	slog.Info("slash command received", "command", event.CommandName, "guild_id", event.GuildID, "user_id", event.UserID)
	if event.GuildID != m.cfg.DiscordGuildID {
		_ = event.RespondEphemeral(messageEphemeralWrongGuild)
		return
	}

	switch event.CommandName {
	case slashCommandStart:
		m.handleStartCommand(event)
	case slashCommandStop:
		m.handleStopCommand(event)
	default:
		slog.Warn("unknown slash command", "command", event.CommandName)
		_ = event.RespondEphemeral(messageEphemeralUnknownCommand)
	}
}

func (m *Manager) handleStartCommand(event discord.SlashCommandEvent) {
	channelID, err := m.discord.GetUserVoiceChannelID(event.GuildID, event.UserID)
	if err != nil {
		slog.Error("failed to look up user voice channel", "error", err, "user_id", event.UserID)
		_ = event.RespondEphemeral(messageEphemeralVoiceLookupFailed)
		return
	}
	if channelID == "" {
		_ = event.RespondEphemeral(messageEphemeralJoinVCFirst)
		return
	}

	if !m.reserveGuild(event.GuildID) {
		_ = event.RespondEphemeral(messageEphemeralAlreadyRunning)
		return
	}

	if err := m.startSession(event.GuildID, channelID, event.UserID); err != nil {
		m.releaseGuild(event.GuildID)
		slog.Error("failed to start session", "error", err, "guild_id", event.GuildID, "channel_id", channelID)
		_ = event.RespondEphemeral(messageEphemeralStartFailed)
		return
	}
	_ = event.RespondEphemeral(startEphemeralTitle(channelID))
}

func (m *Manager) handleStopCommand(event discord.SlashCommandEvent) {
	m.mu.Lock()
	rs, active := m.sessions[event.GuildID]
	m.mu.Unlock()
	if !active {
		_ = event.RespondEphemeral(messageEphemeralNotRunning)
		return
	}
	channelID := rs.repoSession.ChannelID
	if err := m.stopSession(event.GuildID, stopReasonManualSlash); err != nil {
		slog.Error("failed to stop session", "error", err, "guild_id", event.GuildID)
		_ = event.RespondEphemeral(messageEphemeralStopFailed)
		return
	}
	_ = event.RespondEphemeral(stopEphemeralTitle(channelID))
}

// HandleVoiceStateUpdate ends a session when its channel empties of humans
// or the bot itself is disconnected by a moderator.
func (m *Manager) HandleVoiceStateUpdate(event discord.VoiceStateEvent) {
	if event.GuildID != m.cfg.DiscordGuildID {
		return
	}

	m.mu.Lock()
	rs, active := m.sessions[event.GuildID]
	m.mu.Unlock()
	if !active {
		return
	}
	sessionChannelID := rs.repoSession.ChannelID

	if event.UserIsBot {
		botID, err := m.discord.GetBotUserID()
		if err == nil && event.UserID == botID && event.BeforeChannelID == sessionChannelID && event.AfterChannelID != sessionChannelID {
			slog.Warn("bot removed from voice channel", "guild_id", event.GuildID, "channel_id", sessionChannelID)
			if err := m.stopSession(event.GuildID, stopReasonBotRemoved); err != nil {
				slog.Error("failed to stop session after bot removal", "error", err, "guild_id", event.GuildID)
			}
		}
		return
	}
	if event.BeforeChannelID != sessionChannelID || event.AfterChannelID == sessionChannelID {
		return
	}

	participants, err := m.discord.ListVoiceChannelParticipants(event.GuildID, sessionChannelID)
	if err != nil {
		slog.Error("failed to list voice channel participants", "error", err, "guild_id", event.GuildID, "channel_id", sessionChannelID)
		return
	}
	for _, p := range participants {
		if !p.IsBot {
			return
		}
	}
	slog.Info("voice channel emptied; stopping session", "guild_id", event.GuildID, "channel_id", sessionChannelID)
	if err := m.stopSession(event.GuildID, stopReasonParticipantsLeft); err != nil {
		slog.Error("failed to stop session after channel emptied", "error", err, "guild_id", event.GuildID)
	}
}

// reserveGuild claims a guild for a session start. It fails when the guild
// already has a live session or another start is in flight.
func (m *Manager) reserveGuild(guildID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[guildID]; ok {
		return false
	}
	if _, ok := m.starting[guildID]; ok {
		return false
	}
	m.starting[guildID] = struct{}{}
	return true
}

func (m *Manager) releaseGuild(guildID string) {
	m.mu.Lock()
	delete(m.starting, guildID)
	m.mu.Unlock()
}

// openingPrompt tells the assistant where it is and who called it, before
// any transcript arrives. Name lookups fall back to raw ids.
func (m *Manager) openingPrompt(guildID, channelID, userID string) string {
	guildName, err := m.discord.GetGuildName(guildID)
	if err != nil || guildName == "" {
		guildName = guildID
	}
	channelName, err := m.discord.GetChannelName(channelID)
	if err != nil || channelName == "" {
		channelName = channelID
	}
	return sessionOpeningPrompt(guildName, channelName, channelID, m.discord.ResolveDisplayName(guildID, userID))
}

func (m *Manager) startSession(guildID, channelID, userID string) error {
	ctx := context.Background()

	orphan, err := m.repo.GetRunningSessionByGuild(ctx, guildID)
	if err != nil {
		return fmt.Errorf("query running session: %w", err)
	}
	if orphan != nil {
		slog.Warn("found orphan running session in repository; closing and continuing", "session_id", orphan.ID, "guild_id", guildID)
		if err := m.repo.UpdateSessionCompleted(ctx, repository.CompleteSessionInput{
			SessionID:  orphan.ID,
			EndedAt:    time.Now(),
			StopReason: "orphaned session closed on restart",
		}); err != nil {
			return fmt.Errorf("complete orphan session: %w", err)
		}
	}

	threadID, err := m.runs.CreateThread(ctx)
	if err != nil {
		return fmt.Errorf("create conversation thread: %w", err)
	}
	if err := m.runs.AppendUserMessage(ctx, threadID, m.openingPrompt(guildID, channelID, userID)); err != nil {
		slog.Warn("failed to seed thread with session context", "error", err, "thread_id", threadID)
	}

	voice, err := m.discord.JoinVoiceChannel(guildID, channelID)
	if err != nil {
		return fmt.Errorf("join voice channel: %w", err)
	}
	slog.Info("joined voice channel", "guild_id", guildID, "channel_id", channelID)

	created, err := m.repo.CreateSession(ctx, repository.CreateSessionInput{
		GuildID:   guildID,
		ChannelID: channelID,
		ThreadID:  threadID,
		StartedAt: time.Now(),
	})
	if err != nil {
		_ = voice.Disconnect()
		return fmt.Errorf("create session: %w", err)
	}
	slog.Info("created session", "session_id", created.ID, "guild_id", guildID, "thread_id", threadID)

	sp := NewSpeaker(m.synth, voice)
	registry, err := buildToolset(m.discord, guildID, channelID, sp)
	if err != nil {
		_ = voice.Disconnect()
		return fmt.Errorf("build toolset: %w", err)
	}
	dispatcher := tools.NewDispatcher(registry, m.cfg.ToolCallTimeout)
	engine := assistant.NewEngine(m.runs, dispatcher, m.repo, assistant.PollPolicy{
		Interval:    m.cfg.RunPollInterval,
		MaxInterval: m.cfg.RunPollMaxInterval,
		Timeout:     m.cfg.RunTimeout,
	}, created.ID)

	notify := func(content string) {
		if err := m.discord.SendChannelMessage(channelID, content); err != nil {
			slog.Error("failed to post channel message", "error", err, "channel_id", channelID)
		}
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	vs := newVoiceSession(
		created.ID, guildID, channelID, threadID,
		loopConfig{
			recordingInterval: m.cfg.RecordingInterval,
			pauseInterval:     m.cfg.PauseInterval,
			activationPhrase:  m.cfg.ActivationPhrase,
		},
		voice, m.transcriber, engine, sp, notify,
	)

	m.mu.Lock()
	delete(m.starting, guildID)
	m.sessions[guildID] = &runningSession{
		session:     vs,
		repoSession: created,
		voice:       voice,
		cancel:      cancel,
	}
	m.mu.Unlock()

	notify(messageStartChannelTitle + "\n" + startChannelHint(m.cfg.ActivationPhrase))

	go vs.run(loopCtx, func() {
		if err := m.stopSession(guildID, stopReasonConnectionLost); err != nil {
			slog.Error("failed to stop session after connection loss", "error", err, "guild_id", guildID)
		}
	})
	return nil
}

func (m *Manager) stopSession(guildID, reason string) error {
	m.mu.Lock()
	rs, ok := m.sessions[guildID]
	if ok {
		delete(m.sessions, guildID)
	}
	m.mu.Unlock()
	if !ok {
		return nil
	}

	slog.Info("stopping session", "session_id", rs.repoSession.ID, "guild_id", guildID, "reason", reason)
	rs.cancel()
	select {
	case <-rs.session.done:
	case <-time.After(5 * time.Second):
		slog.Warn("session loop did not stop in time", "session_id", rs.repoSession.ID)
	}
	_ = rs.voice.Disconnect()

	go m.finalizeSession(rs.repoSession, reason)
	return nil
}

func (m *Manager) finalizeSession(s *repository.Session, reason string) {
	ctx := context.Background()
	endedAt := time.Now()

	_ = m.discord.SendChannelMessage(s.ChannelID, messageStopChannelTitle+"\n-# "+stopReasonDetail(reason))

	if err := m.repo.UpdateSessionCompleted(ctx, repository.CompleteSessionInput{
		SessionID:  s.ID,
		EndedAt:    endedAt,
		StopReason: reason,
	}); err != nil {
		slog.Error("failed to complete session", "error", err, "session_id", s.ID)
	}
	if err := m.webhook.SendSessionEnded(ctx, webhook.SessionEndedPayload{
		SessionID:  s.ID,
		GuildID:    s.GuildID,
		ChannelID:  s.ChannelID,
		ThreadID:   s.ThreadID,
		StartedAt:  s.StartedAt,
		EndedAt:    endedAt,
		StopReason: reason,
	}); err != nil {
		slog.Error("failed to send session ended webhook", "error", err, "session_id", s.ID)
	}
}

// StopAll ends every live session, used during shutdown.
func (m *Manager) StopAll() {
	m.stopAll(stopReasonServerClosed)
}

func (m *Manager) stopAll(reason string) {
	m.mu.Lock()
	guildIDs := make([]string, 0, len(m.sessions))
	for guildID := range m.sessions {
		guildIDs = append(guildIDs, guildID)
	}
	m.mu.Unlock()
	for _, guildID := range guildIDs {
		if err := m.stopSession(guildID, reason); err != nil {
			slog.Error("failed to stop session during shutdown", "error", err, "guild_id", guildID)
		}
	}
}
