package google

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/auth/credentials"
	"github.com/foxseedlab/usterki/internal/config"
	"github.com/samber/do/v2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const serviceInitTimeout = 15 * time.Second

// Services holds the Workspace clients shared by the ledger and the asset store.
type Services struct {
	Drive  *drive.Service
	Sheets *sheets.Service
}

func NewServices(ctx context.Context, credentialsJSON string, extra ...option.ClientOption) (*Services, error) {
	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		CredentialsJSON: []byte(credentialsJSON),
		Scopes:          []string{sheets.SpreadsheetsScope, drive.DriveScope},
	})
	if err != nil {
		return nil, fmt.Errorf("detect credentials: %w", err)
	}
	opts := append([]option.ClientOption{option.WithAuthCredentials(creds)}, extra...)

	drv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	sh, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Services{Drive: drv, Sheets: sh}, nil
}

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Services, error) {
		cfg := do.MustInvoke[*config.Config](i)
		ctx, cancel := context.WithTimeout(context.Background(), serviceInitTimeout)
		defer cancel()
		return NewServices(ctx, cfg.GoogleCredentialsJSON)
	})
}

// EscapeQuery quotes a value for use inside a single-quoted Drive query literal.
func EscapeQuery(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\\' || r == '\'' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
