package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tttsvm/pkg/config"
)

type fakeGenerator struct {
	lastText     string
	lastPath     string
	lastFileType string
	degraded     bool
	err          error
}

func (g *fakeGenerator) GenerateToFile(_ context.Context, text, outputPath, fileType string) (string, bool, error) {
	g.lastText = text
	g.lastPath = outputPath
	g.lastFileType = fileType
	if g.err != nil {
		return "", false, g.err
	}
	return outputPath, g.degraded, nil
}

func newTestServer(t *testing.T, gen Generator) *httptest.Server {
	t.Helper()
	cfg := config.FishConfig{ReferenceID: "abcdef1234567890", Model: "speech-1.5", Format: "opus", Latency: "normal"}
	h := NewSynthesisHandler(gen, cfg, t.TempDir())
	srv := httptest.NewServer(NewServer("unused", h).Handler)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, srv *httptest.Server, body string) (*http.Response, SynthesisResponse) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out SynthesisResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestHandleSynthesize_JSON(t *testing.T) {
	gen := &fakeGenerator{}
	srv := newTestServer(t, gen)

	resp, out := postJSON(t, srv, `{"text":"你好","file_path":"/tmp/out.wav"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, out.Success)
	assert.Equal(t, "/tmp/out.wav", out.FilePath)

	assert.Equal(t, "你好", gen.lastText)
	assert.Equal(t, "wav", gen.lastFileType, "file_type defaults to wav")
}

func TestHandleSynthesize_Form(t *testing.T) {
	gen := &fakeGenerator{}
	srv := newTestServer(t, gen)

	form := url.Values{"text": {"hello"}, "file_type": {"opus"}}
	resp, err := http.PostForm(srv.URL+"/", form)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hello", gen.lastText)
	assert.Equal(t, "opus", gen.lastFileType)
}

func TestHandleSynthesize_DefaultPathUsesTextDigest(t *testing.T) {
	gen := &fakeGenerator{}
	srv := newTestServer(t, gen)

	_, out := postJSON(t, srv, `{"text":"你好"}`)
	require.True(t, out.Success)
	assert.Equal(t, "7eca689f0d3389d9dea66ae112e5cfd7.wav", filepath.Base(gen.lastPath))
}

func TestHandleSynthesize_MissingText(t *testing.T) {
	gen := &fakeGenerator{}
	srv := newTestServer(t, gen)

	resp, out := postJSON(t, srv, `{"text":"   "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "text is required")
}

func TestHandleSynthesize_GeneratorError(t *testing.T) {
	gen := &fakeGenerator{err: assert.AnError}
	srv := newTestServer(t, gen)

	resp, out := postJSON(t, srv, `{"text":"hello"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.False(t, out.Success)
	assert.NotEmpty(t, out.Error)
}

func TestHandleSynthesize_DegradedMessage(t *testing.T) {
	gen := &fakeGenerator{degraded: true}
	srv := newTestServer(t, gen)

	_, out := postJSON(t, srv, `{"text":"hello"}`)
	assert.True(t, out.Success)
	assert.Contains(t, out.Message, "native format")
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, "fish-bridge", out["service"])
	assert.NotEmpty(t, out["timestamp"])
}

func TestHandleConfig_TruncatesReference(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{})

	resp, err := http.Get(srv.URL + "/config")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "abcdef12...", out["reference_id"])
	assert.Equal(t, "speech-1.5", out["model"])
}
