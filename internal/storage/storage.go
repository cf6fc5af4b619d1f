package storage

import (
	"context"
	"path"
	"sort"
	"strings"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
)

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// ObjectStorage captures the S3-compatible operations spreadsheet sources need.
type ObjectStorage interface {
	ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
	GetObject(ctx context.Context, bucket, key string) (*domain.Blob, error)
}

var spreadsheetExts = map[string]bool{".csv": true, ".xlsx": true, ".xls": true}

// Spreadsheets keeps the objects whose key looks like a spreadsheet, sorted by key.
func Spreadsheets(objects []ObjectInfo) []ObjectInfo {
	out := make([]ObjectInfo, 0, len(objects))
	for _, o := range objects {
		if spreadsheetExts[strings.ToLower(path.Ext(o.Key))] {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// LinkURL is the s3:// link registered for an object.
func LinkURL(bucket, key string) string {
	return "s3://" + bucket + "/" + strings.TrimPrefix(key, "/")
}

// LinkName is the object's base name without its extension.
func LinkName(key string) string {
	base := path.Base(key)
	return strings.TrimSuffix(base, path.Ext(base))
}
