package drive

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func fakeDriveAPI(t *testing.T) *Service {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/files/sheet1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "sheet1", "name": "Actual 2024", "mimeType": mimeSpreadsheet})
	})
	mux.HandleFunc("/files/sheet1/export", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/csv", r.URL.Query().Get("mimeType"))
		_, _ = w.Write([]byte("Month,Store\nJan-24,A\n"))
	})
	mux.HandleFunc("/files/upload1", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("alt") == "media" {
			_, _ = w.Write([]byte("PK\x03\x04"))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "upload1", "name": "Budget.xlsx", "mimeType": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"})
	})
	mux.HandleFunc("/files", func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("q"), "'folder1' in parents")
		_ = json.NewEncoder(w).Encode(map[string]any{"files": []map[string]string{
			{"id": "b", "name": "notes.docx", "mimeType": "application/vnd.google-apps.document"},
			{"id": "a", "name": "Budget.xlsx", "mimeType": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
			{"id": "c", "name": "Actual", "mimeType": mimeSpreadsheet},
		}})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	svc, err := NewService(context.Background(), "",
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return svc
}

func TestDownload_ExportsNativeSheets(t *testing.T) {
	svc := fakeDriveAPI(t)

	blob, err := svc.Download(context.Background(), "sheet1")
	require.NoError(t, err)
	assert.Equal(t, "Actual 2024.csv", blob.Name)
	assert.Equal(t, "text/csv", blob.ContentType)
	assert.Equal(t, "Month,Store\nJan-24,A\n", string(blob.Data))
}

func TestDownload_UploadedFile(t *testing.T) {
	svc := fakeDriveAPI(t)

	blob, err := svc.Download(context.Background(), "upload1")
	require.NoError(t, err)
	assert.Equal(t, "Budget.xlsx", blob.Name)
	assert.Equal(t, []byte("PK\x03\x04"), blob.Data)

	_, err = svc.WithMaxBytes(2).Download(context.Background(), "upload1")
	assert.ErrorContains(t, err, "exceeds 2 bytes")
}

func TestSpreadsheets(t *testing.T) {
	svc := fakeDriveAPI(t)

	files, err := svc.Spreadsheets(context.Background(), "folder1")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "Actual", files[0].Name)
	assert.Equal(t, "Budget.xlsx", files[1].Name)
}

func TestLinkHelpers(t *testing.T) {
	f := &File{ID: "abc", Name: "Actual 2024.xlsx"}
	assert.Equal(t, "gdrive://abc", LinkURL(f))
	assert.Equal(t, "Actual 2024", LinkName(f))
	assert.Equal(t, "P&L v1.2", LinkName(&File{Name: "P&L v1.2"}))

	assert.True(t, IsSpreadsheet(&File{Name: "x.CSV"}))
	assert.False(t, IsSpreadsheet(&File{Name: "x.pdf", MimeType: "application/pdf"}))
	assert.False(t, IsSpreadsheet(nil))
}

func TestEscapeQuery(t *testing.T) {
	assert.Equal(t, `O\'Brien`, escapeQuery("O'Brien"))
}
