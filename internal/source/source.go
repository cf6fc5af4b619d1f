package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/config"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
)

var (
	ErrUnsupportedSource = errors.New("unsupported source url")
	ErrEmptySource       = errors.New("source has no header row")
	ErrTooLarge          = errors.New("source exceeds size limit")
)

// DriveClient downloads a Drive file (exporting native sheets as CSV).
type DriveClient interface {
	Download(ctx context.Context, fileID string) (*domain.Blob, error)
}

// ObjectClient reads objects from S3-compatible storage.
type ObjectClient interface {
	GetObject(ctx context.Context, bucket, key string) (*domain.Blob, error)
}

// Fetcher resolves a link URL to a decoded table.
type Fetcher struct {
	http      *http.Client
	drive     DriveClient
	objects   ObjectClient
	maxBytes  int64
	userAgent string
	decoder   *Decoder
}

type Option func(*Fetcher)

func WithDrive(d DriveClient) Option {
	return func(f *Fetcher) { f.drive = d }
}

func WithObjects(o ObjectClient) Option {
	return func(f *Fetcher) { f.objects = o }
}

func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.http = c }
}

func NewFetcher(cfg config.SourceConfig, opts ...Option) *Fetcher {
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	f := &Fetcher{
		http:      &http.Client{Timeout: timeout},
		maxBytes:  cfg.MaxBytes,
		userAgent: cfg.UserAgent,
		decoder:   NewDecoder(cfg.LegacyCharset),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads rawURL and decodes it into columns and rows.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*domain.Table, error) {
	blob, err := f.FetchBlob(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	table, err := f.decoder.Decode(blob)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", blob.Name, err)
	}
	return table, nil
}

var driveFileID = regexp.MustCompile(`/(?:file|spreadsheets)/d/([A-Za-z0-9_-]{10,})`)

// FetchBlob downloads the raw bytes behind rawURL.
func (f *Fetcher) FetchBlob(ctx context.Context, rawURL string) (*domain.Blob, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedSource, err)
	}

	switch u.Scheme {
	case "s3":
		if f.objects == nil {
			return nil, fmt.Errorf("%w: object storage is not configured", ErrUnsupportedSource)
		}
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return nil, fmt.Errorf("%w: s3 links need s3://bucket/key", ErrUnsupportedSource)
		}
		return f.objects.GetObject(ctx, u.Host, key)
	case "gdrive":
		if f.drive == nil {
			return nil, fmt.Errorf("%w: google drive is not configured", ErrUnsupportedSource)
		}
		return f.drive.Download(ctx, u.Host+u.Path)
	case "http", "https":
		if f.drive != nil && isDriveHost(u.Host) {
			if m := driveFileID.FindStringSubmatch(u.Path); m != nil {
				return f.drive.Download(ctx, m[1])
			}
		}
		return f.get(ctx, u)
	default:
		return nil, fmt.Errorf("%w: scheme %q", ErrUnsupportedSource, u.Scheme)
	}
}

func isDriveHost(host string) bool {
	return host == "drive.google.com" || host == "docs.google.com"
}

func (f *Fetcher) get(ctx context.Context, u *url.URL) (*domain.Blob, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", u.Redacted(), resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if f.maxBytes > 0 {
		body = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", u.Redacted(), err)
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, u.Redacted())
	}

	return &domain.Blob{
		Name:        nameFor(u),
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// nameFor picks a file name that carries the format hint of the URL, so
// published-sheet links ending in output=csv decode as CSV.
func nameFor(u *url.URL) string {
	name := path.Base(u.Path)
	if out := u.Query().Get("output"); out != "" {
		return name + "." + out
	}
	if out := u.Query().Get("format"); out != "" {
		return name + "." + out
	}
	return name
}
