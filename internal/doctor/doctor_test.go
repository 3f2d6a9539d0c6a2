package doctor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voxide/voxide/internal/config"
)

func TestReportOKAndString(t *testing.T) {
	report := Report{Checks: []Check{
		{Name: "one", Pass: true, Message: "good"},
		{Name: "two", Pass: false, Message: "bad"},
	}}

	require.False(t, report.OK())
	text := report.String()
	require.Contains(t, text, "[OK] one: good")
	require.Contains(t, text, "[FAIL] two: bad")
}

func TestCheckCommandEmpty(t *testing.T) {
	check := checkCommand(nil, "editor.run_command")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "command is empty")
}

func TestCheckCommandFound(t *testing.T) {
	check := checkCommand([]string{"sh", "-c", "true"}, "editor.run_command")
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "found at")
}

func TestCheckCommandMissing(t *testing.T) {
	check := checkCommand([]string{"definitely-not-a-real-binary"}, "editor.picker")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "binary not found")
}

func TestCheckLexiconBuiltin(t *testing.T) {
	check := checkLexicon(config.Default())
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "directives")
}

func TestCheckHTTPReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Auth rejections still prove the endpoint is alive.
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	check := checkHTTPReachable("stt.batch", server.URL)
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "HTTP 401")
}

func TestCheckHTTPReachableConvertsWebsocketScheme(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	wsURL := "ws://" + server.Listener.Addr().String()
	check := checkHTTPReachable("stt.stream", wsURL)
	require.True(t, check.Pass)
}

func TestCheckHTTPReachableFailsWithoutServer(t *testing.T) {
	check := checkHTTPReachable("stt.batch", "http://127.0.0.1:1/nope")
	require.False(t, check.Pass)

	check = checkHTTPReachable("stt.batch", "")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "no URL configured")
}

func TestCheckGRPCHealthUnreachable(t *testing.T) {
	check := checkGRPCHealth(context.Background(), "127.0.0.1:1")
	require.False(t, check.Pass)
}
