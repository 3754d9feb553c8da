package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/keghouse/barkeep/internal/discord"
	"github.com/keghouse/barkeep/internal/tools"
)

// toolSpec is the session-independent part of a tool: what the assistant
// sees. Handlers are bound per session because they close over the session's
// guild, channel, and voice connection.
type toolSpec struct {
	name        string
	description string
	parameters  map[string]any
}

func noParameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
		"required":   []string{},
	}
}

func stringParameters(descriptions map[string]string, required ...string) map[string]any {
	props := make(map[string]any, len(descriptions))
	for name, desc := range descriptions {
		props[name] = map[string]any{"type": "string", "description": desc}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

var toolSpecs = []toolSpec{
	{
		name:        "get_online_users",
		description: "List the display names of server members who are currently online.",
		parameters:  noParameters(),
	},
	{
		name:        "list_voice_channel_users",
		description: "List the display names of everyone currently in the bartender's voice channel.",
		parameters:  noParameters(),
	},
	{
		name:        "get_bot_display_name",
		description: "Get the bartender's current display name on this server.",
		parameters:  noParameters(),
	},
	{
		name:        "update_bot_display_name",
		description: "Change the bartender's display name on this server.",
		parameters: stringParameters(map[string]string{
			"name": "The new display name.",
		}, "name"),
	},
	{
		name:        "send_channel_message",
		description: "Post a text message to the voice channel's chat.",
		parameters: stringParameters(map[string]string{
			"content": "The message text to post.",
		}, "content"),
	},
	{
		name:        "send_message_reaction",
		description: "React to a message in the voice channel's chat with an emoji.",
		parameters: stringParameters(map[string]string{
			"message_id": "The id of the message to react to.",
			"emoji":      "The emoji to react with, for example \U0001F44D.",
		}, "message_id", "emoji"),
	},
	{
		name:        "send_message_reply",
		description: "Reply to a specific message in the voice channel's chat.",
		parameters: stringParameters(map[string]string{
			"message_id": "The id of the message to reply to.",
			"reply":      "The reply text.",
		}, "message_id", "reply"),
	},
	{
		name:        "speak",
		description: "Say something out loud in the voice channel. Use this to address the room directly.",
		parameters: stringParameters(map[string]string{
			"text": "What to say.",
		}, "text"),
	},
}

// AssistantToolDefinitions returns the tool surface advertised to the
// assistant. It matches what buildToolset registers for every session.
func AssistantToolDefinitions() []tools.Definition {
	defs := make([]tools.Definition, 0, len(toolSpecs))
	for _, spec := range toolSpecs {
		defs = append(defs, tools.Definition{
			Name:        spec.name,
			Description: spec.description,
			Parameters:  spec.parameters,
		})
	}
	return defs
}

type sessionToolset struct {
	discord   discord.Client
	guildID   string
	channelID string
	speaker   speaker
}

// buildToolset binds every tool to this session's guild, channel, and voice
// connection and returns a ready registry.
func buildToolset(dc discord.Client, guildID, channelID string, sp speaker) (*tools.Registry, error) {
	ts := &sessionToolset{discord: dc, guildID: guildID, channelID: channelID, speaker: sp}
	handlers := map[string]tools.Handler{
		"get_online_users":         ts.getOnlineUsers,
		"list_voice_channel_users": ts.listVoiceChannelUsers,
		"get_bot_display_name":     ts.getBotDisplayName,
		"update_bot_display_name":  ts.updateBotDisplayName,
		"send_channel_message":     ts.sendChannelMessage,
		"send_message_reaction":    ts.sendMessageReaction,
		"send_message_reply":       ts.sendMessageReply,
		"speak":                    ts.speak,
	}

	registry := tools.NewRegistry()
	for _, spec := range toolSpecs {
		handler, ok := handlers[spec.name]
		if !ok {
			return nil, fmt.Errorf("no handler bound for tool %q", spec.name)
		}
		if err := registry.Register(tools.Tool{
			Name:        spec.name,
			Description: spec.description,
			Parameters:  spec.parameters,
			Handler:     handler,
		}); err != nil {
			return nil, fmt.Errorf("register tool %q: %w", spec.name, err)
		}
	}
	return registry, nil
}

func (ts *sessionToolset) getOnlineUsers(_ context.Context, _ json.RawMessage) (string, error) {
	names, err := ts.discord.ListOnlineUsers(ts.guildID)
	if err != nil {
		return "", fmt.Errorf("list online users: %w", err)
	}
	if len(names) == 0 {
		return "No one is online right now.", nil
	}
	return strings.Join(names, ", "), nil
}

func (ts *sessionToolset) listVoiceChannelUsers(_ context.Context, _ json.RawMessage) (string, error) {
	participants, err := ts.discord.ListVoiceChannelParticipants(ts.guildID, ts.channelID)
	if err != nil {
		return "", fmt.Errorf("list voice channel participants: %w", err)
	}
	names := make([]string, 0, len(participants))
	for _, p := range participants {
		if p.IsBot {
			continue
		}
		names = append(names, p.DisplayName)
	}
	if len(names) == 0 {
		return "The voice channel is empty.", nil
	}
	return strings.Join(names, ", "), nil
}

func (ts *sessionToolset) getBotDisplayName(_ context.Context, _ json.RawMessage) (string, error) {
	name, err := ts.discord.GetBotDisplayName(ts.guildID)
	if err != nil {
		return "", fmt.Errorf("get bot display name: %w", err)
	}
	return name, nil
}

func (ts *sessionToolset) updateBotDisplayName(_ context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("decode arguments: %w", err)
	}
	if strings.TrimSpace(in.Name) == "" {
		return "", fmt.Errorf("name must not be empty")
	}
	if err := ts.discord.UpdateBotNickname(ts.guildID, in.Name); err != nil {
		return "", fmt.Errorf("update bot nickname: %w", err)
	}
	return fmt.Sprintf("Display name changed to %q.", in.Name), nil
}

func (ts *sessionToolset) sendChannelMessage(_ context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("decode arguments: %w", err)
	}
	if strings.TrimSpace(in.Content) == "" {
		return "", fmt.Errorf("content must not be empty")
	}
	if err := ts.discord.SendChannelMessage(ts.channelID, in.Content); err != nil {
		return "", fmt.Errorf("send channel message: %w", err)
	}
	return "Message posted.", nil
}

func (ts *sessionToolset) sendMessageReaction(_ context.Context, args json.RawMessage) (string, error) {
	var in struct {
		MessageID string `json:"message_id"`
		Emoji     string `json:"emoji"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("decode arguments: %w", err)
	}
	if in.MessageID == "" || in.Emoji == "" {
		return "", fmt.Errorf("message_id and emoji are required")
	}
	if err := ts.discord.AddReaction(ts.channelID, in.MessageID, in.Emoji); err != nil {
		return "", fmt.Errorf("add reaction: %w", err)
	}
	return "Reaction added.", nil
}

func (ts *sessionToolset) sendMessageReply(_ context.Context, args json.RawMessage) (string, error) {
	var in struct {
		MessageID string `json:"message_id"`
		Reply     string `json:"reply"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("decode arguments: %w", err)
	}
	if in.MessageID == "" || strings.TrimSpace(in.Reply) == "" {
		return "", fmt.Errorf("message_id and reply are required")
	}
	if err := ts.discord.SendMessageReply(ts.channelID, in.MessageID, in.Reply); err != nil {
		return "", fmt.Errorf("send message reply: %w", err)
	}
	return "Reply posted.", nil
}

func (ts *sessionToolset) speak(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("decode arguments: %w", err)
	}
	if strings.TrimSpace(in.Text) == "" {
		return "", fmt.Errorf("text must not be empty")
	}
	if err := ts.speaker.Speak(ctx, in.Text); err != nil {
		return "", fmt.Errorf("speak: %w", err)
	}
	return "Said it out loud.", nil
}
