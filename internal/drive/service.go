package drive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	mimeFolder      = "application/vnd.google-apps.folder"
	mimeSpreadsheet = "application/vnd.google-apps.spreadsheet"
)

type Service struct {
	srv      *drive.Service
	maxBytes int64
}

// NewService builds a read-only Drive client from a service-account key.
// Extra client options are appended after the credentials.
func NewService(ctx context.Context, credentialsJSON string, opts ...option.ClientOption) (*Service, error) {
	if credentialsJSON != "" {
		config, err := google.JWTConfigFromJSON([]byte(credentialsJSON), drive.DriveReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("parse drive credentials: %w", err)
		}
		opts = append([]option.ClientOption{option.WithHTTPClient(config.Client(ctx))}, opts...)
	}

	srv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive client: %w", err)
	}
	return &Service{srv: srv}, nil
}

// WithMaxBytes caps the size of downloaded files. Zero disables the cap.
func (s *Service) WithMaxBytes(n int64) *Service {
	s.maxBytes = n
	return s
}

type File struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
	Size         int64  `json:"size,string,omitempty"`
}

func (s *Service) ListFiles(ctx context.Context, folderID string) ([]*File, error) {
	if folderID == "" {
		folderID = "root"
	}

	var files []*File
	err := s.srv.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed=false", escapeQuery(folderID))).
		Fields("nextPageToken, files(id, name, mimeType, modifiedTime, size)").
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				files = append(files, &File{
					ID:           f.Id,
					Name:         f.Name,
					MimeType:     f.MimeType,
					ModifiedTime: f.ModifiedTime,
					Size:         f.Size,
				})
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("list drive folder %s: %w", folderID, err)
	}
	return files, nil
}

// Download fetches a file's bytes. Native Google Sheets are exported as CSV
// of their first sheet; uploaded files are returned as stored.
func (s *Service) Download(ctx context.Context, fileID string) (*domain.Blob, error) {
	meta, err := s.srv.Files.Get(fileID).
		Fields("id, name, mimeType").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("stat drive file %s: %w", fileID, err)
	}

	blob := &domain.Blob{Name: meta.Name, ContentType: meta.MimeType}
	var body io.ReadCloser
	if meta.MimeType == mimeSpreadsheet {
		resp, err := s.srv.Files.Export(fileID, "text/csv").Context(ctx).Download()
		if err != nil {
			return nil, fmt.Errorf("export drive sheet %s: %w", fileID, err)
		}
		body = resp.Body
		blob.Name += ".csv"
		blob.ContentType = "text/csv"
	} else {
		resp, err := s.srv.Files.Get(fileID).SupportsAllDrives(true).Context(ctx).Download()
		if err != nil {
			return nil, fmt.Errorf("download drive file %s: %w", fileID, err)
		}
		body = resp.Body
	}
	defer body.Close()

	var r io.Reader = body
	if s.maxBytes > 0 {
		r = io.LimitReader(body, s.maxBytes+1)
	}
	blob.Data, err = io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read drive file %s: %w", fileID, err)
	}
	if s.maxBytes > 0 && int64(len(blob.Data)) > s.maxBytes {
		return nil, fmt.Errorf("drive file %s exceeds %d bytes", fileID, s.maxBytes)
	}
	return blob, nil
}

func (s *Service) FindFolderByPath(ctx context.Context, path string) (string, error) {
	currentID := "root"
	for _, folder := range strings.Split(path, "/") {
		if folder == "" {
			continue
		}

		result, err := s.srv.Files.List().
			Q(fmt.Sprintf("'%s' in parents and name='%s' and mimeType='%s' and trashed=false",
				escapeQuery(currentID), escapeQuery(folder), mimeFolder)).
			Fields("files(id, name)").
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true).
			Context(ctx).
			Do()
		if err != nil {
			return "", fmt.Errorf("find folder %s: %w", folder, err)
		}
		if len(result.Files) == 0 {
			return "", fmt.Errorf("folder not found: %s", folder)
		}
		currentID = result.Files[0].Id
	}
	return currentID, nil
}

func escapeQuery(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}
