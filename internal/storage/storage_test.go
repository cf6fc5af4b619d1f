package storage

import (
	"testing"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpreadsheets(t *testing.T) {
	got := Spreadsheets([]ObjectInfo{
		{Key: "pnl/2024/budget.XLSX"},
		{Key: "pnl/readme.txt"},
		{Key: "pnl/2024/actual.csv"},
		{Key: "pnl/legacy.xls"},
	})
	keys := make([]string, len(got))
	for i, o := range got {
		keys[i] = o.Key
	}
	assert.Equal(t, []string{"pnl/2024/actual.csv", "pnl/2024/budget.XLSX", "pnl/legacy.xls"}, keys)
}

func TestLinkURLAndName(t *testing.T) {
	assert.Equal(t, "s3://finance/pnl/actual.csv", LinkURL("finance", "/pnl/actual.csv"))
	assert.Equal(t, "actual 2024", LinkName("pnl/actual 2024.xlsx"))
}

func TestSplitEndpoint(t *testing.T) {
	tests := []struct {
		raw     string
		useSSL  bool
		host    string
		wantSSL bool
	}{
		{"minio:9000", false, "minio:9000", false},
		{"minio:9000/", true, "minio:9000", true},
		{"https://s3.eu-central-1.amazonaws.com", false, "s3.eu-central-1.amazonaws.com", true},
		{"http://localhost:9000", true, "localhost:9000", false},
	}
	for _, tt := range tests {
		host, secure, err := splitEndpoint(tt.raw, tt.useSSL)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.host, host, tt.raw)
		assert.Equal(t, tt.wantSSL, secure, tt.raw)
	}
}

func TestNewMinioClient_Validation(t *testing.T) {
	_, err := NewMinioClient(config.ObjectStoreConfig{})
	assert.ErrorContains(t, err, "endpoint")

	_, err = NewMinioClient(config.ObjectStoreConfig{Endpoint: "localhost:9000"})
	assert.ErrorContains(t, err, "credentials")

	c, err := NewMinioClient(config.ObjectStoreConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b", MaxObjectBytes: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 10, c.maxBytes)
}
