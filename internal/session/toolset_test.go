package session

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/keghouse/barkeep/internal/discord"
	"github.com/keghouse/barkeep/internal/tools"
)

func newTestToolset(t *testing.T, dc *mockDiscordClient, sp speaker) *tools.Registry {
	t.Helper()
	registry, err := buildToolset(dc, "guild-1", "vc-1", sp)
	if err != nil {
		t.Fatalf("unexpected error building toolset: %v", err)
	}
	return registry
}

func invokeTool(t *testing.T, registry *tools.Registry, name, args string) (string, error) {
	t.Helper()
	tool, ok := registry.Lookup(name)
	if !ok {
		t.Fatalf("tool %q not registered", name)
	}
	return tool.Handler(context.Background(), json.RawMessage(args))
}

func TestAssistantToolDefinitions_MatchesRegisteredToolset(t *testing.T) {
	registry := newTestToolset(t, &mockDiscordClient{}, &fakeSpeaker{})

	defs := AssistantToolDefinitions()
	registered := registry.Definitions()
	if len(defs) != len(registered) {
		t.Fatalf("definition count mismatch: advertised %d, registered %d", len(defs), len(registered))
	}
	for i := range defs {
		if defs[i].Name != registered[i].Name {
			t.Fatalf("definition order mismatch at %d: %q vs %q", i, defs[i].Name, registered[i].Name)
		}
	}
}

func TestGetOnlineUsers_JoinsNames(t *testing.T) {
	dc := &mockDiscordClient{onlineUsers: []string{"Alice", "Bob"}}
	registry := newTestToolset(t, dc, &fakeSpeaker{})

	out, err := invokeTool(t, registry, "get_online_users", `{}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Alice, Bob" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestGetOnlineUsers_EmptyListHasFriendlyMessage(t *testing.T) {
	registry := newTestToolset(t, &mockDiscordClient{}, &fakeSpeaker{})

	out, err := invokeTool(t, registry, "get_online_users", `{}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "No one is online right now." {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestListVoiceChannelUsers_ExcludesBots(t *testing.T) {
	dc := &mockDiscordClient{participants: []discord.VoiceParticipant{
		{UserID: "bot-self", DisplayName: "Barkeep", IsBot: true},
		{UserID: "u1", DisplayName: "Alice"},
		{UserID: "u2", DisplayName: "Bob"},
	}}
	registry := newTestToolset(t, dc, &fakeSpeaker{})

	out, err := invokeTool(t, registry, "list_voice_channel_users", `{}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Alice, Bob" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestUpdateBotDisplayName_RejectsBlankName(t *testing.T) {
	dc := &mockDiscordClient{}
	registry := newTestToolset(t, dc, &fakeSpeaker{})

	if _, err := invokeTool(t, registry, "update_bot_display_name", `{"name":"  "}`); err == nil {
		t.Fatal("expected an error for a blank name")
	}
	if len(dc.nicknameUpdates) != 0 {
		t.Fatalf("expected no nickname update, got %+v", dc.nicknameUpdates)
	}
}

func TestUpdateBotDisplayName_AppliesNickname(t *testing.T) {
	dc := &mockDiscordClient{}
	registry := newTestToolset(t, dc, &fakeSpeaker{})

	out, err := invokeTool(t, registry, "update_bot_display_name", `{"name":"Sam the Barman"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dc.nicknameUpdates) != 1 || dc.nicknameUpdates[0] != "Sam the Barman" {
		t.Fatalf("unexpected nickname updates: %+v", dc.nicknameUpdates)
	}
	if out == "" {
		t.Fatal("expected a confirmation message")
	}
}

func TestSendChannelMessage_PostsToSessionChannel(t *testing.T) {
	dc := &mockDiscordClient{}
	registry := newTestToolset(t, dc, &fakeSpeaker{})

	if _, err := invokeTool(t, registry, "send_channel_message", `{"content":"last call!"}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dc.sendCalls) != 1 || dc.sendCalls[0] != "last call!" {
		t.Fatalf("unexpected sends: %+v", dc.sendCalls)
	}
}

func TestSendMessageReaction_RequiresBothArguments(t *testing.T) {
	dc := &mockDiscordClient{}
	registry := newTestToolset(t, dc, &fakeSpeaker{})

	if _, err := invokeTool(t, registry, "send_message_reaction", `{"message_id":"m-1"}`); err == nil {
		t.Fatal("expected an error when emoji is missing")
	}
	if _, err := invokeTool(t, registry, "send_message_reaction", `{"message_id":"m-1","emoji":"🍺"}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dc.reactions) != 1 || dc.reactions[0] != "m-1:🍺" {
		t.Fatalf("unexpected reactions: %+v", dc.reactions)
	}
}

func TestSendMessageReply_RequiresBothArguments(t *testing.T) {
	dc := &mockDiscordClient{}
	registry := newTestToolset(t, dc, &fakeSpeaker{})

	if _, err := invokeTool(t, registry, "send_message_reply", `{"message_id":"m-1"}`); err == nil {
		t.Fatal("expected an error when reply text is missing")
	}
	out, err := invokeTool(t, registry, "send_message_reply", `{"message_id":"m-1","reply":"coming right up"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Reply posted." {
		t.Fatalf("unexpected output: %q", out)
	}
	if len(dc.replies) != 1 || dc.replies[0] != "m-1:coming right up" {
		t.Fatalf("unexpected replies: %+v", dc.replies)
	}
}

func TestSpeakTool_DelegatesToSpeaker(t *testing.T) {
	sp := &fakeSpeaker{}
	registry := newTestToolset(t, &mockDiscordClient{}, sp)

	if _, err := invokeTool(t, registry, "speak", `{"text":"welcome in"}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sp.spoken) != 1 || sp.spoken[0] != "welcome in" {
		t.Fatalf("unexpected spoken text: %+v", sp.spoken)
	}
}

func TestSpeakTool_RejectsMalformedArguments(t *testing.T) {
	sp := &fakeSpeaker{}
	registry := newTestToolset(t, &mockDiscordClient{}, sp)

	if _, err := invokeTool(t, registry, "speak", `{not json`); err == nil {
		t.Fatal("expected a decode error")
	}
	if len(sp.spoken) != 0 {
		t.Fatalf("expected nothing spoken, got %+v", sp.spoken)
	}
}
