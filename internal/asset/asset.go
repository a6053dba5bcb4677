package asset

import "context"

type UploadInput struct {
	Data        []byte
	UnitID      string
	Filename    string
	ContentType string
}

// Store keeps photo attachments. Delete of an absent asset succeeds.
type Store interface {
	Upload(ctx context.Context, input UploadInput) (string, error)
	Delete(ctx context.Context, assetID string) error
}
