package keyctl

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	path string
	key  string
}

func newBackend(t *testing.T, calls *[]recordedCall) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/set-api-key", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		*calls = append(*calls, recordedCall{r.URL.Path, body["api_key"]})
		if body["api_key"] == "sk-bad" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Invalid API key: nope"}`))
			return
		}
		verified := body["api_key"] != "sk-slow"
		out := map[string]any{"status": "success", "message": "API key set successfully", "verified": verified}
		if !verified {
			out["warning"] = "could not verify key"
		}
		_ = json.NewEncoder(w).Encode(out)
	})
	mux.HandleFunc("/api/avatar/set-key", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		*calls = append(*calls, recordedCall{r.URL.Path, body["api_key"]})
		_, _ = w.Write([]byte(`{"success":true,"message":"Heygen API key set successfully"}`))
	})
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","message":"Backend is running","api_key_configured":true,"database_connected":false}`))
	})
	mux.HandleFunc("/api/avatar/config", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"configured":false}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func stubPassword(t *testing.T, secret string, err error) {
	t.Helper()
	old := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(secret), err }
	t.Cleanup(func() { readPassword = old })
}

func TestOpenAI_KeyFromFlag(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	var calls []recordedCall
	srv := newBackend(t, &calls)

	out, err := run(t, "--server", srv.URL, "openai", "--key", "sk-good")
	require.NoError(t, err)
	assert.Contains(t, out, "API key set successfully")
	assert.NotContains(t, out, "warning")
	assert.Equal(t, []recordedCall{{"/api/set-api-key", "sk-good"}}, calls)
}

func TestOpenAI_UnverifiedPrintsWarning(t *testing.T) {
	var calls []recordedCall
	srv := newBackend(t, &calls)

	out, err := run(t, "-s", srv.URL, "openai", "-k", "sk-slow")
	require.NoError(t, err)
	assert.Contains(t, out, "warning: could not verify key")
}

func TestOpenAI_KeyFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	var calls []recordedCall
	srv := newBackend(t, &calls)

	_, err := run(t, "--server", srv.URL, "openai")
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, "sk-env", calls[0].key)
}

func TestOpenAI_Rejected(t *testing.T) {
	var calls []recordedCall
	srv := newBackend(t, &calls)

	_, err := run(t, "--server", srv.URL, "openai", "--key", "sk-bad")
	var se *ServerError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Status)
	assert.Equal(t, "Invalid API key: nope", se.Message)
}

func TestHeygen_KeyFromPrompt(t *testing.T) {
	t.Setenv("HEYGEN_API_KEY", "")
	stubPassword(t, " hg-key \n", nil)
	var calls []recordedCall
	srv := newBackend(t, &calls)

	out, err := run(t, "--server", srv.URL, "heygen")
	require.NoError(t, err)
	assert.Contains(t, out, "Enter heygen API key:")
	assert.Contains(t, out, "Heygen API key set successfully")
	assert.Equal(t, []recordedCall{{"/api/avatar/set-key", "hg-key"}}, calls)
}

func TestHeygen_PromptErrors(t *testing.T) {
	t.Setenv("HEYGEN_API_KEY", "")
	var calls []recordedCall
	srv := newBackend(t, &calls)

	stubPassword(t, "", errors.New("not a terminal"))
	_, err := run(t, "--server", srv.URL, "heygen")
	assert.ErrorContains(t, err, "reading key")

	stubPassword(t, "   ", nil)
	_, err = run(t, "--server", srv.URL, "heygen")
	assert.EqualError(t, err, "empty API key")
	assert.Empty(t, calls)
}

func TestStatus(t *testing.T) {
	var calls []recordedCall
	srv := newBackend(t, &calls)

	out, err := run(t, "--server", srv.URL+"/", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "backend:  ok (Backend is running)")
	assert.Contains(t, out, "database: unreachable")
	assert.Contains(t, out, "openai:   configured")
	assert.Contains(t, out, "heygen:   not configured")
}

func TestStatus_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := run(t, "--server", srv.URL, "status")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "keyctl version: unknown\n", out)
}
