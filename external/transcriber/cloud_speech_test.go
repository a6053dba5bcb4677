package transcriber

import (
	"context"
	"errors"
	"testing"

	speechpb "cloud.google.com/go/speech/apiv2/speechpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func newTestTranscriber(fn recognizeFunc) *CloudSpeechTranscriber {
	t := NewCloudSpeechTranscriber(CloudSpeechConfig{
		ProjectID: "proj",
		Language:  "pl-PL",
		Location:  "eu",
		Model:     "chirp_3",
	}).(*CloudSpeechTranscriber)
	t.recognize = fn
	return t
}

func response(transcripts ...string) *speechpb.RecognizeResponse {
	resp := &speechpb.RecognizeResponse{}
	for _, tr := range transcripts {
		resp.Results = append(resp.Results, &speechpb.SpeechRecognitionResult{
			Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: tr}},
		})
	}
	resp.Results = append(resp.Results, &speechpb.SpeechRecognitionResult{})
	return resp
}

func TestTranscribe_JoinsResultsAndUsesDefaultLanguage(t *testing.T) {
	var got *speechpb.RecognizeRequest
	tr := newTestTranscriber(func(_ context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
		got = req
		return response(" odpadające płytki ", "w łazience"), nil
	})

	text, err := tr.Transcribe(context.Background(), []byte("ogg"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "odpadające płytki w łazience" {
		t.Fatalf("unexpected transcript: %q", text)
	}
	if got.GetRecognizer() != "projects/proj/locations/eu/recognizers/_" {
		t.Fatalf("unexpected recognizer: %s", got.GetRecognizer())
	}
	if langs := got.GetConfig().GetLanguageCodes(); len(langs) != 1 || langs[0] != "pl-PL" {
		t.Fatalf("unexpected languages: %v", langs)
	}
	if got.GetConfig().GetAutoDecodingConfig() == nil {
		t.Fatal("expected auto decoding config")
	}
	if string(got.GetContent()) != "ogg" {
		t.Fatalf("unexpected audio content: %q", got.GetContent())
	}
}

func TestTranscribe_RetriesUnavailableOnce(t *testing.T) {
	calls := 0
	tr := newTestTranscriber(func(context.Context, *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
		calls++
		if calls == 1 {
			return nil, status.Error(codes.Unavailable, "try again")
		}
		return response("kran"), nil
	})

	text, err := tr.Transcribe(context.Background(), []byte("ogg"), "pl-PL")
	if err != nil || text != "kran" {
		t.Fatalf("unexpected result: %q %v", text, err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestTranscribe_DoesNotRetryPermanentErrors(t *testing.T) {
	calls := 0
	tr := newTestTranscriber(func(context.Context, *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
		calls++
		return nil, status.Error(codes.InvalidArgument, "bad audio")
	})

	if _, err := tr.Transcribe(context.Background(), []byte("ogg"), "pl-PL"); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestTranscribe_EmptyAudioSkipsCall(t *testing.T) {
	tr := newTestTranscriber(func(context.Context, *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
		return nil, errors.New("unexpected call")
	})
	text, err := tr.Transcribe(context.Background(), nil, "pl-PL")
	if err != nil || text != "" {
		t.Fatalf("unexpected result: %q %v", text, err)
	}
}

func TestIsRetryableRecognizeError(t *testing.T) {
	if isRetryableRecognizeError(errors.New("plain")) {
		t.Fatal("non-grpc errors must not be retried")
	}
	if !isRetryableRecognizeError(status.Error(codes.ResourceExhausted, "quota")) {
		t.Fatal("resource exhausted should be retried")
	}
}
