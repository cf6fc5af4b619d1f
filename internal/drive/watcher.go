package drive

import (
	"context"
	"path"
	"sort"
	"strings"
)

var spreadsheetMimes = map[string]bool{
	mimeSpreadsheet: true,
	"text/csv":      true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-excel": true,
}

// Spreadsheets lists the P&L candidates of a Drive folder: native sheets plus
// uploaded CSV, XLSX and XLS files, sorted by name.
func (s *Service) Spreadsheets(ctx context.Context, folderID string) ([]*File, error) {
	files, err := s.ListFiles(ctx, folderID)
	if err != nil {
		return nil, err
	}
	return FilterSpreadsheets(files), nil
}

func FilterSpreadsheets(files []*File) []*File {
	out := make([]*File, 0, len(files))
	for _, f := range files {
		if IsSpreadsheet(f) {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func IsSpreadsheet(f *File) bool {
	if f == nil {
		return false
	}
	if spreadsheetMimes[f.MimeType] {
		return true
	}
	switch strings.ToLower(path.Ext(f.Name)) {
	case ".csv", ".xlsx", ".xls":
		return true
	}
	return false
}

// LinkURL is the link address that routes a file through the Drive client.
func LinkURL(f *File) string {
	return "gdrive://" + f.ID
}

// LinkName strips a spreadsheet extension so "Actual 2024.xlsx" becomes
// "Actual 2024".
func LinkName(f *File) string {
	ext := path.Ext(f.Name)
	switch strings.ToLower(ext) {
	case ".csv", ".xlsx", ".xls":
		return strings.TrimSuffix(f.Name, ext)
	}
	return f.Name
}
