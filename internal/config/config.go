package config

import (
	"fmt"
	"time"
)

const (
	TranscribeBackendOpenAI = "openai"
	TranscribeBackendGoogle = "google"
)

type Config struct {
	Env                        string
	DiscordToken               string
	DiscordGuildID             string
	DatabaseURL                string
	OpenAIAPIKey               string
	OpenAIAssistantID          string
	OpenAIModelTemperature     float32
	OpenAITranscribeModel      string
	OpenAITTSModel             string
	OpenAITTSVoice             string
	TranscribeBackend          string
	GoogleCloudProjectID       string
	GoogleCloudCredentialsJSON string
	GoogleCloudSpeechLocation  string
	GoogleCloudSpeechModel     string
	ActivationPhrase           string
	InstructionPrompt          string
	SessionWebhookURL          string
	RecordingInterval          time.Duration
	PauseInterval              time.Duration
	VADAggressiveness          int
	RunPollInterval            time.Duration
	RunPollMaxInterval         time.Duration
	RunTimeout                 time.Duration
	ToolCallTimeout            time.Duration
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	switch c.TranscribeBackend {
	case TranscribeBackendOpenAI:
	case TranscribeBackendGoogle:
		if c.GoogleCloudProjectID == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT_ID is required when TRANSCRIBE_BACKEND=google")
		}
		if c.GoogleCloudCredentialsJSON == "" {
			return fmt.Errorf("GOOGLE_CLOUD_CREDENTIALS_JSON is required when TRANSCRIBE_BACKEND=google")
		}
	default:
		return fmt.Errorf("TRANSCRIBE_BACKEND must be %q or %q, got %q", TranscribeBackendOpenAI, TranscribeBackendGoogle, c.TranscribeBackend)
	}
	if c.VADAggressiveness < 0 || c.VADAggressiveness > 3 {
		return fmt.Errorf("VAD_AGGRESSIVENESS must be between 0 and 3, got %d", c.VADAggressiveness)
	}
	if c.RecordingInterval <= 0 {
		return fmt.Errorf("RECORDING_INTERVAL must be positive, got %s", c.RecordingInterval)
	}
	if c.PauseInterval < 0 {
		return fmt.Errorf("PAUSE_INTERVAL must not be negative, got %s", c.PauseInterval)
	}
	if c.RunPollInterval <= 0 {
		return fmt.Errorf("RUN_POLL_INTERVAL must be positive, got %s", c.RunPollInterval)
	}
	if c.RunPollMaxInterval < c.RunPollInterval {
		return fmt.Errorf("RUN_POLL_MAX_INTERVAL must not be smaller than RUN_POLL_INTERVAL")
	}
	if c.RunTimeout <= 0 {
		return fmt.Errorf("RUN_TIMEOUT must be positive, got %s", c.RunTimeout)
	}
	if c.ToolCallTimeout <= 0 {
		return fmt.Errorf("TOOL_CALL_TIMEOUT must be positive, got %s", c.ToolCallTimeout)
	}
	if c.OpenAIModelTemperature < 0 || c.OpenAIModelTemperature > 2 {
		return fmt.Errorf("OPENAI_MODEL_TEMPERATURE must be between 0 and 2, got %g", c.OpenAIModelTemperature)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "DISCORD_TOKEN", value: c.DiscordToken},
		{name: "DISCORD_GUILD_ID", value: c.DiscordGuildID},
		{name: "DATABASE_URL", value: c.DatabaseURL},
		{name: "OPENAI_API_KEY", value: c.OpenAIAPIKey},
		{name: "OPENAI_ASSISTANT_ID", value: c.OpenAIAssistantID},
		{name: "ACTIVATION_PHRASE", value: c.ActivationPhrase},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
