package transcriber

import "context"

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, language string) (string, error)
}
