package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"imagestudio/internal/adapters/store"
	"imagestudio/internal/core/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(viper.New())

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeConfig(t *testing.T, format string, args ...any) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(p, []byte(fmt.Sprintf(format, args...)), 0o600))
	return p
}

// fakeReplicate answers every prediction with output(baseURL) and serves a tiny image under /img/.
func fakeReplicate(t *testing.T, output func(baseURL string) any) *httptest.Server {
	t.Helper()
	var baseURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models/", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "p1", "status": "succeeded", "output": output(baseURL)})
	})
	mux.HandleFunc("/img/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("webp"))
	})
	srv := httptest.NewUnstartedServer(mux)
	baseURL = "http://" + srv.Listener.Addr().String()
	srv.Start()
	t.Cleanup(srv.Close)
	return srv
}

func constant(v any) func(string) any {
	return func(string) any { return v }
}

func TestModelsCmd(t *testing.T) {
	chdir(t, t.TempDir())

	out, err := run(t, "models")
	require.NoError(t, err)

	assert.Contains(t, out, "flux-pro (default)")
	assert.Contains(t, out, "flux-schnell")
	assert.Contains(t, out, "ideogram-ai/ideogram-v2")
}

func TestGenerateCmd(t *testing.T) {
	srv := fakeReplicate(t, func(baseURL string) any { return []string{baseURL + "/img/1.webp"} })
	imageURL := srv.URL + "/img/1.webp"

	cfg := writeConfig(t, "[replicate]\napi_token = \"r8_test\"\nbase_url = %q\n", srv.URL)
	saveDir := t.TempDir()

	out, err := run(t, "--config", cfg, "generate", "--save-dir", saveDir, "a", "red", "fox")
	require.NoError(t, err)

	assert.Contains(t, out, "[OK] "+imageURL)
	assert.Contains(t, out, "saved to")

	files, err := os.ReadDir(saveDir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, ".webp", filepath.Ext(files[0].Name()))
}

func TestGenerateCmdInvalidOutput(t *testing.T) {
	srv := fakeReplicate(t, constant("not-a-url"))
	cfg := writeConfig(t, "[replicate]\napi_token = \"r8_test\"\nbase_url = %q\n", srv.URL)

	_, err := run(t, "--config", cfg, "generate", "a red fox")
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrInvalidUpstreamResponse.Error())
}

func TestGenerateCmdInvalidModel(t *testing.T) {
	srv := fakeReplicate(t, constant("http://img/1.webp"))
	cfg := writeConfig(t, "[replicate]\napi_token = \"r8_test\"\nbase_url = %q\n", srv.URL)

	_, err := run(t, "--config", cfg, "generate", "-m", "dall-e", "a red fox")
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrInvalidModel.Error())
}

func TestGenerateCmdMissingToken(t *testing.T) {
	t.Setenv("REPLICATE_API_TOKEN", "")
	t.Setenv("IMAGESTUDIO_REPLICATE_API_TOKEN", "")
	cfg := writeConfig(t, "[server]\naddr = \":0\"\n")

	_, err := run(t, "--config", cfg, "generate", "a red fox")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "replicate api token is required")
}

func TestGenerateCmdRecordsHistory(t *testing.T) {
	mr := miniredis.RunT(t)
	srv := fakeReplicate(t, constant("http://img/1.webp"))
	cfg := writeConfig(t, "[replicate]\napi_token = \"r8_test\"\nbase_url = %q\n\n[redis]\naddr = %q\n",
		srv.URL, mr.Addr())

	_, err := run(t, "--config", cfg, "generate", "--user", "fox-fan", "a red fox")
	require.NoError(t, err)

	out, err := run(t, "--config", cfg, "history", "--user", "fox-fan")
	require.NoError(t, err)
	assert.Contains(t, out, "a red fox")
	assert.Contains(t, out, "http://img/1.webp")
}

func TestHistoryCmd(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	s := store.NewRedis(rdb, store.DefaultKeyPrefix)
	for i, prompt := range []string{"older", "newer"} {
		_, err := s.Append(context.Background(), domain.HistoryPath("uid-1"), domain.HistoryRecord{
			ImageURL:  fmt.Sprintf("http://img/%d.webp", i),
			Prompt:    prompt,
			Model:     domain.FluxPro,
			CreatedAt: int64(1000 * (i + 1)),
		})
		require.NoError(t, err)
	}

	cfg := writeConfig(t, "[redis]\naddr = %q\n", mr.Addr())

	out, err := run(t, "--config", cfg, "history", "--user", "uid-1", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "newer")
	assert.NotContains(t, out, "older")

	out, err = run(t, "--config", cfg, "history", "--user", "nobody")
	require.NoError(t, err)
	assert.Contains(t, out, "no images yet")
}

func TestHistoryCmdWithoutRedis(t *testing.T) {
	cfg := writeConfig(t, "[server]\naddr = \":0\"\n")

	_, err := run(t, "--config", cfg, "history", "--user", "uid-1")
	require.ErrorIs(t, err, errNoHistoryStore)
}

func TestGenerateCmdUserWithoutRedis(t *testing.T) {
	var calls atomic.Int32
	srv := fakeReplicate(t, func(string) any {
		calls.Add(1)
		return "http://img/1.webp"
	})
	cfg := writeConfig(t, "[replicate]\napi_token = \"r8_test\"\nbase_url = %q\n", srv.URL)

	out, err := run(t, "--config", cfg, "generate", "--user", "fox-fan", "a red fox")
	require.ErrorIs(t, err, errNoHistoryStore)
	assert.NotContains(t, out, "[OK]")
	assert.Zero(t, calls.Load())
}

func TestInvalidConfig(t *testing.T) {
	cfg := writeConfig(t, "[server]\nlog_level = \"loud\"\n")

	_, err := run(t, "--config", cfg, "models")
	require.Error(t, err)
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
