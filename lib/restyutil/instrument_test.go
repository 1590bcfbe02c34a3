package restyutil

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type memoryOutput struct {
	lock     sync.Mutex
	messages map[string]string
}

func (o *memoryOutput) Write(id string, contents string) {
	o.lock.Lock()
	defer o.lock.Unlock()
	if o.messages == nil {
		o.messages = map[string]string{}
	}
	o.messages[id] = contents
}

func withDebugLogging(t *testing.T) {
	t.Helper()
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(previous) })
}

func TestInstrumentClientWritesExchange(t *testing.T) {
	withDebugLogging(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>trending</html>"))
	}))
	defer server.Close()

	out := &memoryOutput{}
	client := resty.New()
	InstrumentClient(client, nil, out)

	res, err := client.R().SetContext(context.Background()).Get(server.URL)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode())

	require.Len(t, out.messages, 1)
	message := out.messages["1"]
	require.Contains(t, message, "---- REQUEST ----")
	require.Contains(t, message, "GET "+server.URL)
	require.Contains(t, message, "Content-Type: text/html")
	require.Contains(t, message, "<html>trending</html>")
}

func TestInstrumentClientNilOutput(t *testing.T) {
	withDebugLogging(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := resty.New()
	InstrumentClient(client, nil, nil)

	res, err := client.R().Get(server.URL)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, res.StatusCode())
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "resty")
	out, err := NewFilesystemOutput(dir)
	require.NoError(t, err)
	require.Equal(t, dir, out.Directory())

	out.Write("1", "contents")
	written, err := os.ReadFile(filepath.Join(dir, "1"))
	require.NoError(t, err)
	require.Equal(t, "contents", string(written))
}

func TestFormatRequestBodyWithoutBody(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "https://github.com/trending", nil)
	require.NoError(t, err)
	req.GetBody = func() (io.ReadCloser, error) { return nil, nil }
	require.Equal(t, "", formatRequestBody(req))

	req.GetBody = nil
	require.Equal(t, "", formatRequestBody(req))
	require.Equal(t, "", formatRequestBody(nil))

	post, err := http.NewRequest(http.MethodPost, "https://github.com/trending", strings.NewReader("since=daily"))
	require.NoError(t, err)
	require.Equal(t, "since=daily", formatRequestBody(post))
}
