package asset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/foxseedlab/usterki/external/google"
	"github.com/foxseedlab/usterki/internal/asset"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

const (
	folderMimeType     = "application/vnd.google-apps.folder"
	defaultContentType = "image/jpeg"
	myDriveRoot        = "root"
)

var (
	ErrRootFolderNotFound = errors.New("drive root folder not found")
	ErrUnitFolderNotFound = errors.New("drive unit folder not found")
)

type DriveConfig struct {
	RootFolderName    string
	CreateUnitFolders bool
}

// DriveStore files photos under <root>/<unit id>/ in My Drive.
type DriveStore struct {
	svc               *drive.Service
	rootFolderName    string
	rootFolderID      string
	createUnitFolders bool

	mu          sync.Mutex
	unitFolders map[string]string
}

// NewDriveStore resolves the root folder up front so a missing folder fails startup.
func NewDriveStore(ctx context.Context, svc *drive.Service, cfg DriveConfig) (*DriveStore, error) {
	s := &DriveStore{
		svc:               svc,
		rootFolderName:    cfg.RootFolderName,
		createUnitFolders: cfg.CreateUnitFolders,
		unitFolders:       make(map[string]string),
	}
	id, ok, err := s.findFolder(ctx, cfg.RootFolderName, myDriveRoot)
	if err != nil {
		return nil, fmt.Errorf("look up root folder %q: %w", cfg.RootFolderName, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q must exist at the top level of My Drive", ErrRootFolderNotFound, cfg.RootFolderName)
	}
	s.rootFolderID = id
	slog.Info("drive root folder resolved", "name", cfg.RootFolderName, "folder_id", id)
	return s, nil
}

func (s *DriveStore) Upload(ctx context.Context, input asset.UploadInput) (string, error) {
	folderID, err := s.unitFolder(ctx, input.UnitID)
	if err != nil {
		return "", err
	}
	contentType := input.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}
	f, err := s.svc.Files.Create(&drive.File{
		Name:    input.Filename,
		Parents: []string{folderID},
	}).
		Media(bytes.NewReader(input.Data), googleapi.ContentType(contentType)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("upload %q: %w", input.Filename, err)
	}
	slog.Info("photo uploaded to drive", "filename", input.Filename, "unit_id", input.UnitID, "file_id", f.Id)
	return f.Id, nil
}

// Delete treats a file that is already gone as deleted.
func (s *DriveStore) Delete(ctx context.Context, assetID string) error {
	err := s.svc.Files.Delete(assetID).Context(ctx).Do()
	if err == nil {
		slog.Info("photo deleted from drive", "file_id", assetID)
		return nil
	}
	if isNotFound(err) {
		slog.Info("photo already absent from drive", "file_id", assetID)
		return nil
	}
	return fmt.Errorf("delete %q: %w", assetID, err)
}

func (s *DriveStore) unitFolder(ctx context.Context, unitID string) (string, error) {
	s.mu.Lock()
	id, ok := s.unitFolders[unitID]
	s.mu.Unlock()
	if ok {
		return id, nil
	}

	id, ok, err := s.findFolder(ctx, unitID, s.rootFolderID)
	if err != nil {
		return "", fmt.Errorf("look up folder for %q: %w", unitID, err)
	}
	if !ok {
		if !s.createUnitFolders {
			return "", fmt.Errorf("%w: Nie znaleziono folderu Drive dla '%s'", ErrUnitFolderNotFound, unitID)
		}
		id, err = s.createFolder(ctx, unitID, s.rootFolderID)
		if err != nil {
			return "", err
		}
	}

	s.mu.Lock()
	s.unitFolders[unitID] = id
	s.mu.Unlock()
	return id, nil
}

func (s *DriveStore) findFolder(ctx context.Context, name, parentID string) (string, bool, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and '%s' in parents and trashed = false",
		google.EscapeQuery(name), folderMimeType, google.EscapeQuery(parentID))
	resp, err := s.svc.Files.List().
		Q(q).
		Spaces("drive").
		Fields("files(id, name)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", false, err
	}
	if len(resp.Files) == 0 {
		return "", false, nil
	}
	return resp.Files[0].Id, true, nil
}

func (s *DriveStore) createFolder(ctx context.Context, name, parentID string) (string, error) {
	f, err := s.svc.Files.Create(&drive.File{
		Name:     name,
		MimeType: folderMimeType,
		Parents:  []string{parentID},
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create folder %q: %w", name, err)
	}
	slog.Info("drive unit folder created", "name", name, "folder_id", f.Id)
	return f.Id, nil
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusNotFound
}
