package session

import "fmt"

const (
	stopReasonManualSlash      = "stopped by slash command"
	stopReasonParticipantsLeft = "all participants left the voice channel"
	stopReasonBotRemoved       = "bot was removed from the voice channel"
	stopReasonConnectionLost   = "voice connection was lost"
	stopReasonServerClosed     = "server shut down"
)

const (
	slashCommandStartDescription = "Invite the bartender into your voice channel."
	slashCommandStopDescription  = "Send the bartender home from your voice channel."

	messageEphemeralWrongGuild        = ":warning: **This command is not available on this server.**"
	messageEphemeralUnknownCommand    = ":warning: **Unknown command.**"
	messageEphemeralVoiceLookupFailed = ":warning: **Could not check your voice channel status.**"
	messageEphemeralJoinVCFirst       = ":warning: **Join a voice channel first, then try again.**"
	messageEphemeralAlreadyRunning    = ":warning: **The bartender is already tending this server.**"
	messageEphemeralStartFailed       = ":warning: **Could not bring the bartender in.**"
	messageEphemeralStopFailed        = ":warning: **Could not send the bartender home.**"
	messageEphemeralNotRunning        = ":warning: **The bartender is not in a voice channel right now.**"

	messageStartChannelTitle = ":tumbler_glass: **The bartender is behind the bar.**"
	messageStopChannelTitle  = ":door: **The bartender has left the bar.**"

	messageStartEphemeralTitleFormat = ":tumbler_glass: <#%s> **now has a bartender on duty.**"
	messageStopEphemeralTitleFormat  = ":door: **The bartender has left** <#%s>**.**"

	messageRunFailed = ":warning: **The bartender lost their train of thought. Try asking again.**"
)

func sessionOpeningPrompt(guildName, channelName, channelID, userName string) string {
	return fmt.Sprintf(
		"You are now in a voice conversation in the Discord server %q, voice channel %q (id: %s). The conversation was started by %s.",
		guildName, channelName, channelID, userName,
	)
}

func startChannelHint(phrase string) string {
	return fmt.Sprintf("-# Say \"%s\" in conversation to get its attention.", phrase)
}

func startEphemeralTitle(channelID string) string {
	return fmt.Sprintf(messageStartEphemeralTitleFormat, channelID)
}

func stopEphemeralTitle(channelID string) string {
	return fmt.Sprintf(messageStopEphemeralTitleFormat, channelID)
}

func stopReasonDetail(reason string) string {
	switch reason {
	case stopReasonManualSlash:
		return "A participant ran the stop command."
	case stopReasonParticipantsLeft:
		return "Everyone left the voice channel."
	case stopReasonBotRemoved:
		return "The bot was removed from the voice channel."
	case stopReasonConnectionLost:
		return "The voice connection dropped."
	case stopReasonServerClosed:
		return "The server shut down."
	default:
		return "An unexpected error occurred."
	}
}
