package file

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadFile(t *testing.T) {
	tests := []struct {
		name       string
		inputBytes []byte
		status     int
		wantErr    bool
	}{
		{
			name:       "success",
			inputBytes: []byte("test\n"),
			status:     http.StatusOK,
			wantErr:    false,
		},
		{
			name:       "not found",
			inputBytes: []byte("not found"),
			status:     http.StatusNotFound,
			wantErr:    true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, err := w.Write(tc.inputBytes)
				assert.NoError(t, err)
			}))
			defer srv.Close()

			res, err := DownloadFile(context.Background(), srv.URL)
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.inputBytes, res)
			}
		})
	}
}

func TestSaveFile(t *testing.T) {
	tests := []struct {
		name      string
		content   []byte
		extension string
		wantSize  int64
	}{
		{
			name:      "success",
			content:   []byte("test\n"),
			extension: ".txt",
			wantSize:  5,
		},
		{
			name:      "empty file",
			content:   []byte(""),
			extension: ".dat",
			wantSize:  0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "nested")

			p, err := SaveFile(dir, tc.content, tc.extension)
			require.NoError(t, err)

			assert.Equal(t, dir, filepath.Dir(p))
			assert.Equal(t, tc.extension, filepath.Ext(p))

			stat, err := os.Stat(p)
			require.NoError(t, err)
			assert.Equal(t, tc.wantSize, stat.Size())
		})
	}
}

func TestExtensionFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{url: "https://replicate.delivery/x/out-0.webp", want: ".webp"},
		{url: "https://replicate.delivery/x/out-0.PNG?sig=1", want: ".png"},
		{url: "https://replicate.delivery/x/out", want: ".webp"},
		{url: "https://example.org/a.verylongext", want: ".webp"},
		{url: "::", want: ".webp"},
	}

	for _, tc := range tests {
		t.Run(tc.url, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtensionFromURL(tc.url))
		})
	}
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("png"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	p, err := Download(context.Background(), dir, srv.URL+"/out.png")
	require.NoError(t, err)

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)
	assert.Equal(t, ".png", filepath.Ext(p))
}
