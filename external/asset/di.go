package asset

import (
	"context"
	"time"

	"github.com/foxseedlab/usterki/external/google"
	"github.com/foxseedlab/usterki/internal/asset"
	"github.com/foxseedlab/usterki/internal/config"
	"github.com/samber/do/v2"
)

const driveInitTimeout = 15 * time.Second

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (asset.Store, error) {
		cfg := do.MustInvoke[*config.Config](i)
		svc := do.MustInvoke[*google.Services](i)
		ctx, cancel := context.WithTimeout(context.Background(), driveInitTimeout)
		defer cancel()
		store, err := NewDriveStore(ctx, svc.Drive, DriveConfig{
			RootFolderName:    cfg.GoogleDriveRootFolder,
			CreateUnitFolders: cfg.GoogleDriveCreateUnitDirs,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	})
}
