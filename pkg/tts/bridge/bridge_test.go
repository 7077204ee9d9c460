package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tttsvm/pkg/tts"
)

func TestSynthesize_Success(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Response{Success: true, FilePath: got.FilePath})
	}))
	defer srv.Close()

	b := New(srv.URL, "ZH")
	require.NoError(t, b.Synthesize(context.Background(), "你好", "out.wav"))

	assert.Equal(t, "你好", got.Text)
	assert.Equal(t, "ZH", got.Language)
	assert.Equal(t, "wav", got.FileType)
	assert.NotEmpty(t, got.FilePath)
}

func TestSynthesize_ErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(Response{Error: "vendor session failed"})
	}))
	defer srv.Close()

	b := New(srv.URL, "")
	err := b.Synthesize(context.Background(), "你好", "out.wav")
	assert.ErrorIs(t, err, tts.ErrRemoteSynthesis)
	assert.Contains(t, err.Error(), "vendor session failed")
}

func TestSynthesize_SuccessFalseWithoutStatus(t *testing.T) {
	// A 200 with success=false still counts as a remote failure.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Response{Success: false, Message: "no audio received"})
	}))
	defer srv.Close()

	b := New(srv.URL, "")
	err := b.Synthesize(context.Background(), "你好", "out.wav")
	assert.ErrorIs(t, err, tts.ErrRemoteSynthesis)
}

func TestSynthesize_ConnectionRefused(t *testing.T) {
	b := New("http://127.0.0.1:1/", "")
	err := b.Synthesize(context.Background(), "你好", "out.wav")
	assert.ErrorIs(t, err, tts.ErrRemoteSynthesis)
}
