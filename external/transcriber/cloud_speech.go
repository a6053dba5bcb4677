package transcriber

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"cloud.google.com/go/auth/credentials"
	speech "cloud.google.com/go/speech/apiv2"
	speechpb "cloud.google.com/go/speech/apiv2/speechpb"
	"github.com/foxseedlab/usterki/internal/transcriber"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	speechAPIEndpointPort = 443
	maxRecognizeAttempts  = 2
)

type CloudSpeechConfig struct {
	ProjectID       string
	CredentialsJSON string
	Language        string
	Location        string
	Model           string
}

type recognizeFunc func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error)

// CloudSpeechTranscriber sends whole voice notes to Speech-to-Text v2. Discord
// voice notes are OGG/Opus, so decoding is left to AutoDecodingConfig.
type CloudSpeechTranscriber struct {
	projectID       string
	credentialsJSON string
	defaultLanguage string
	location        string
	model           string

	mu        sync.Mutex
	recognize recognizeFunc
}

func NewCloudSpeechTranscriber(cfg CloudSpeechConfig) transcriber.Transcriber {
	location := strings.TrimSpace(cfg.Location)
	if location == "" {
		location = "global"
	}
	return &CloudSpeechTranscriber{
		projectID:       cfg.ProjectID,
		credentialsJSON: cfg.CredentialsJSON,
		defaultLanguage: cfg.Language,
		location:        location,
		model:           strings.TrimSpace(cfg.Model),
	}
}

func (t *CloudSpeechTranscriber) Transcribe(ctx context.Context, audio []byte, language string) (string, error) {
	if len(audio) == 0 {
		return "", nil
	}
	if language == "" {
		language = t.defaultLanguage
	}
	recognize, err := t.client(ctx)
	if err != nil {
		return "", err
	}
	req := t.buildRequest(audio, language)

	var resp *speechpb.RecognizeResponse
	for attempt := 1; attempt <= maxRecognizeAttempts; attempt++ {
		resp, err = recognize(ctx, req)
		if err == nil {
			break
		}
		if !isRetryableRecognizeError(err) || attempt == maxRecognizeAttempts {
			return "", fmt.Errorf("recognize: %w", err)
		}
		slog.Warn("cloud speech recognize failed with retryable error; retrying", "error", err, "attempt", attempt)
	}
	return joinTranscripts(resp), nil
}

func (t *CloudSpeechTranscriber) buildRequest(audio []byte, language string) *speechpb.RecognizeRequest {
	return &speechpb.RecognizeRequest{
		Recognizer: fmt.Sprintf("projects/%s/locations/%s/recognizers/_", t.projectID, t.location),
		Config: &speechpb.RecognitionConfig{
			Model:         t.model,
			LanguageCodes: []string{language},
			DecodingConfig: &speechpb.RecognitionConfig_AutoDecodingConfig{
				AutoDecodingConfig: &speechpb.AutoDetectDecodingConfig{},
			},
			Features: &speechpb.RecognitionFeatures{EnableAutomaticPunctuation: true},
		},
		AudioSource: &speechpb.RecognizeRequest_Content{Content: audio},
	}
}

// client dials Speech lazily so a misconfigured project only breaks voice notes.
func (t *CloudSpeechTranscriber) client(ctx context.Context) (recognizeFunc, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.recognize != nil {
		return t.recognize, nil
	}

	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		CredentialsJSON: []byte(t.credentialsJSON),
		Scopes:          []string{"https://www.googleapis.com/auth/cloud-platform"},
	})
	if err != nil {
		return nil, fmt.Errorf("detect credentials: %w", err)
	}
	opts := []option.ClientOption{
		option.WithAuthCredentials(creds),
	}
	if t.location != "global" {
		opts = append(opts, option.WithEndpoint(fmt.Sprintf("%s-speech.googleapis.com:%d", t.location, speechAPIEndpointPort)))
	}
	// The client outlives the event that first needed it.
	client, err := speech.NewClient(context.WithoutCancel(ctx), opts...)
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}
	slog.Info("cloud speech client initialized", "location", t.location, "model", t.model)
	t.recognize = func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
		return client.Recognize(ctx, req)
	}
	return t.recognize, nil
}

func joinTranscripts(resp *speechpb.RecognizeResponse) string {
	parts := make([]string, 0, len(resp.GetResults()))
	for _, result := range resp.GetResults() {
		if len(result.GetAlternatives()) == 0 {
			continue
		}
		text := strings.TrimSpace(result.GetAlternatives()[0].GetTranscript())
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func isRetryableRecognizeError(err error) bool {
	st, ok := status.FromError(err)
	if !ok {
		return false
	}
	switch st.Code() {
	case codes.Unavailable, codes.Aborted, codes.ResourceExhausted:
		return true
	default:
		return false
	}
}
