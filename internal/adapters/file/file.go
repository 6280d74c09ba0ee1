package file

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

const defaultExtension = ".webp"

// DownloadFile returns the byte content of a file on a provided URL.
func DownloadFile(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		err = fmt.Errorf("error creating request %w", err)
		log.Error().Err(err).Str("path", path).Send()
		return nil, err
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		err = fmt.Errorf("error executing request %w", err)
		log.Error().Err(err).Str("path", path).Send()
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		err = fmt.Errorf("unexpected status code on download: %d", res.StatusCode)
		log.Error().Err(err).Str("path", path).Send()
		return nil, err
	}

	buf, err := io.ReadAll(res.Body)
	if err != nil {
		err = fmt.Errorf("error reading response %w", err)
		log.Error().Err(err).Str("path", path).Send()
		return nil, err
	}

	return buf, nil
}

// SaveFile writes data to a new uniquely named file in dir and returns its path.
func SaveFile(dir string, data []byte, extension string) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating directory %w", err)
	}

	log.Debug().Int("bytes", len(data)).Str("extension", extension).Msg("creating file")

	p := filepath.Join(dir, id.String()+extension)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		err = fmt.Errorf("error writing file %w", err)
		log.Error().Err(err).Send()
		return "", err
	}

	log.Debug().Str("path", p).Msg("created file")

	return p, nil
}

// ExtensionFromURL returns the file extension of the URL path, including the
// dot. URLs without one are assumed to point at a webp image.
func ExtensionFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return defaultExtension
	}

	ext := strings.ToLower(path.Ext(u.Path))
	if ext == "" || len(ext) > 5 {
		return defaultExtension
	}

	return ext
}

// Download fetches the image at rawURL and stores it in dir.
func Download(ctx context.Context, dir, rawURL string) (string, error) {
	data, err := DownloadFile(ctx, rawURL)
	if err != nil {
		return "", err
	}

	return SaveFile(dir, data, ExtensionFromURL(rawURL))
}
