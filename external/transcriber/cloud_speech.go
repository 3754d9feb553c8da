package transcriber

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/auth/credentials"
	speech "cloud.google.com/go/speech/apiv2"
	speechpb "cloud.google.com/go/speech/apiv2/speechpb"
	"google.golang.org/api/option"

	"github.com/keghouse/barkeep/internal/transcriber"
)

const (
	speechAPIEndpointPort = 443
	defaultLanguageCode   = "en-US"
)

type CloudSpeechConfig struct {
	ProjectID       string
	CredentialsJSON string
	Location        string
	Model           string
}

// CloudSpeechRecognizer is the Google Cloud alternative to Whisper. It sends
// each WAV clip through the synchronous v2 Recognize call; clips are short
// enough (one recording interval per speaker) to stay under the inline audio
// limit.
type CloudSpeechRecognizer struct {
	client     *speech.Client
	recognizer string
	model      string
}

func NewCloudSpeechRecognizer(ctx context.Context, cfg CloudSpeechConfig) (transcriber.SpeechToText, error) {
	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		CredentialsJSON: []byte(cfg.CredentialsJSON),
		Scopes:          []string{"https://www.googleapis.com/auth/cloud-platform"},
	})
	if err != nil {
		return nil, fmt.Errorf("detect credentials: %w", err)
	}

	location := strings.TrimSpace(cfg.Location)
	opts := []option.ClientOption{
		option.WithAuthCredentials(creds),
	}
	if location != "global" {
		opts = append(opts, option.WithEndpoint(fmt.Sprintf("%s-speech.googleapis.com:%d", location, speechAPIEndpointPort)))
	}

	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}
	return &CloudSpeechRecognizer{
		client:     client,
		recognizer: fmt.Sprintf("projects/%s/locations/%s/recognizers/_", cfg.ProjectID, location),
		model:      strings.TrimSpace(cfg.Model),
	}, nil
}

func (r *CloudSpeechRecognizer) Recognize(ctx context.Context, wav []byte) (string, error) {
	resp, err := r.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Recognizer: r.recognizer,
		Config: &speechpb.RecognitionConfig{
			Model:         r.model,
			LanguageCodes: []string{defaultLanguageCode},
			DecodingConfig: &speechpb.RecognitionConfig_AutoDecodingConfig{
				AutoDecodingConfig: &speechpb.AutoDetectDecodingConfig{},
			},
			Features: &speechpb.RecognitionFeatures{},
		},
		AudioSource: &speechpb.RecognizeRequest_Content{Content: wav},
	})
	if err != nil {
		return "", fmt.Errorf("recognize audio: %w", err)
	}

	parts := make([]string, 0, len(resp.GetResults()))
	for _, result := range resp.GetResults() {
		if len(result.GetAlternatives()) == 0 {
			continue
		}
		parts = append(parts, result.GetAlternatives()[0].GetTranscript())
	}
	return strings.Join(parts, " "), nil
}

func (r *CloudSpeechRecognizer) Close() error {
	return r.client.Close()
}
