package drive

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/source"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// TableFetcher resolves a spreadsheet URL into a decoded table.
type TableFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*domain.Table, error)
}

// Files is the Drive surface used by the listing routes.
type Files interface {
	Spreadsheets(ctx context.Context, folderID string) ([]*File, error)
	FindFolderByPath(ctx context.Context, path string) (string, error)
	Download(ctx context.Context, fileID string) (*domain.Blob, error)
}

type Handler struct {
	fetcher       TableFetcher
	files         Files
	defaultFolder string
}

// NewHandler wires the proxy routes. files may be nil when Drive is not
// configured; the /api/drive routes then answer 503.
func NewHandler(fetcher TableFetcher, files Files, defaultFolder string) *Handler {
	return &Handler{
		fetcher:       fetcher,
		files:         files,
		defaultFolder: defaultFolder,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/excel_proxy", h.Proxy).Methods(http.MethodGet)
	router.HandleFunc("/api/drive/files", h.ListFiles).Methods(http.MethodGet)
	router.HandleFunc("/api/drive/files/download", h.DownloadFile).Methods(http.MethodGet)
}

type proxyResponse struct {
	Columns []string        `json:"columns"`
	Rows    []domain.RawRow `json:"rows"`
}

// Proxy downloads the spreadsheet behind ?url= and answers {columns, rows}.
func (h *Handler) Proxy(w http.ResponseWriter, r *http.Request) {
	fileURL := r.URL.Query().Get("url")
	if fileURL == "" {
		writeError(w, http.StatusBadRequest, "Missing Excel URL")
		return
	}

	table, err := h.fetcher.Fetch(r.Context(), fileURL)
	switch {
	case errors.Is(err, source.ErrUnsupportedSource):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, source.ErrEmptySource):
		writeJSON(w, http.StatusOK, proxyResponse{Columns: []string{}, Rows: []domain.RawRow{}})
		return
	case err != nil:
		log.Error().Err(err).Str("url", fileURL).Msg("excel proxy failed")
		writeError(w, http.StatusInternalServerError, "Failed to process Excel file")
		return
	}

	writeJSON(w, http.StatusOK, proxyResponse{Columns: table.Columns, Rows: table.Rows})
}

func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	if h.files == nil {
		writeError(w, http.StatusServiceUnavailable, "google drive is not configured")
		return
	}

	query := r.URL.Query()
	folderID := query.Get("folderId")
	if folderID == "" {
		folderID = h.defaultFolder
	}
	if folderPath := query.Get("path"); folderPath != "" {
		id, err := h.files.FindFolderByPath(r.Context(), folderPath)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		folderID = id
	}

	files, err := h.files.Spreadsheets(r.Context(), folderID)
	if err != nil {
		log.Error().Err(err).Str("folder", folderID).Msg("drive listing failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, files)
}

func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	if h.files == nil {
		writeError(w, http.StatusServiceUnavailable, "google drive is not configured")
		return
	}

	fileID := r.URL.Query().Get("fileId")
	if fileID == "" {
		writeError(w, http.StatusBadRequest, "fileId parameter is required")
		return
	}

	blob, err := h.files.Download(r.Context(), fileID)
	if err != nil {
		log.Error().Err(err).Str("file", fileID).Msg("drive download failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": blob.Name}))
	_, _ = w.Write(blob.Data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
