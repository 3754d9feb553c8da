package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/keghouse/barkeep/internal/config"
)

type envConfig struct {
	Env                        string        `env:"ENV" envDefault:"production"`
	DiscordToken               string        `env:"DISCORD_TOKEN,required"`
	DiscordGuildID             string        `env:"DISCORD_GUILD_ID,required"`
	DatabaseURL                string        `env:"DATABASE_URL,required"`
	OpenAIAPIKey               string        `env:"OPENAI_API_KEY,required"`
	OpenAIAssistantID          string        `env:"OPENAI_ASSISTANT_ID,required"`
	OpenAIModelTemperature     float32       `env:"OPENAI_MODEL_TEMPERATURE" envDefault:"1.0"`
	OpenAITranscribeModel      string        `env:"OPENAI_TRANSCRIBE_MODEL" envDefault:"whisper-1"`
	OpenAITTSModel             string        `env:"OPENAI_TTS_MODEL" envDefault:"tts-1"`
	OpenAITTSVoice             string        `env:"OPENAI_TTS_VOICE" envDefault:"onyx"`
	TranscribeBackend          string        `env:"TRANSCRIBE_BACKEND" envDefault:"openai"`
	GoogleCloudProjectID       string        `env:"GOOGLE_CLOUD_PROJECT_ID"`
	GoogleCloudCredentialsJSON string        `env:"GOOGLE_CLOUD_CREDENTIALS_JSON"`
	GoogleCloudSpeechLocation  string        `env:"GOOGLE_CLOUD_SPEECH_LOCATION" envDefault:"global"`
	GoogleCloudSpeechModel     string        `env:"GOOGLE_CLOUD_SPEECH_MODEL" envDefault:"chirp_3"`
	ActivationPhrase           string        `env:"ACTIVATION_PHRASE" envDefault:"barkeep"`
	InstructionPrompt          string        `env:"INSTRUCTION_PROMPT"`
	SessionWebhookURL          string        `env:"SESSION_WEBHOOK_URL"`
	RecordingInterval          time.Duration `env:"RECORDING_INTERVAL" envDefault:"10s"`
	PauseInterval              time.Duration `env:"PAUSE_INTERVAL" envDefault:"100ms"`
	VADAggressiveness          int           `env:"VAD_AGGRESSIVENESS" envDefault:"3"`
	RunPollInterval            time.Duration `env:"RUN_POLL_INTERVAL" envDefault:"500ms"`
	RunPollMaxInterval         time.Duration `env:"RUN_POLL_MAX_INTERVAL" envDefault:"5s"`
	RunTimeout                 time.Duration `env:"RUN_TIMEOUT" envDefault:"2m"`
	ToolCallTimeout            time.Duration `env:"TOOL_CALL_TIMEOUT" envDefault:"30s"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                        raw.Env,
		DiscordToken:               raw.DiscordToken,
		DiscordGuildID:             raw.DiscordGuildID,
		DatabaseURL:                raw.DatabaseURL,
		OpenAIAPIKey:               raw.OpenAIAPIKey,
		OpenAIAssistantID:          raw.OpenAIAssistantID,
		OpenAIModelTemperature:     raw.OpenAIModelTemperature,
		OpenAITranscribeModel:      raw.OpenAITranscribeModel,
		OpenAITTSModel:             raw.OpenAITTSModel,
		OpenAITTSVoice:             raw.OpenAITTSVoice,
		TranscribeBackend:          raw.TranscribeBackend,
		GoogleCloudProjectID:       raw.GoogleCloudProjectID,
		GoogleCloudCredentialsJSON: raw.GoogleCloudCredentialsJSON,
		GoogleCloudSpeechLocation:  raw.GoogleCloudSpeechLocation,
		GoogleCloudSpeechModel:     raw.GoogleCloudSpeechModel,
		ActivationPhrase:           raw.ActivationPhrase,
		InstructionPrompt:          raw.InstructionPrompt,
		SessionWebhookURL:          raw.SessionWebhookURL,
		RecordingInterval:          raw.RecordingInterval,
		PauseInterval:              raw.PauseInterval,
		VADAggressiveness:          raw.VADAggressiveness,
		RunPollInterval:            raw.RunPollInterval,
		RunPollMaxInterval:         raw.RunPollMaxInterval,
		RunTimeout:                 raw.RunTimeout,
		ToolCallTimeout:            raw.ToolCallTimeout,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
