// Package cache resolves spoken text to WAV artifacts on disk, synthesizing
// through a tts.Backend on miss.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"tttsvm/pkg/tts"
)

const (
	// deleteAttempts bounds cache eviction retries; on Windows a file being
	// played back can still be open and deletion fails transiently.
	deleteAttempts = 5
	deleteBackoff  = 100 * time.Millisecond
)

// Resolver maps text to a cached WAV file. Pre-recorded files in localDir,
// named after the verbatim text, take precedence over synthesized artifacts
// in tempDir, which are keyed by the MD5 of the text.
type Resolver struct {
	localDir string
	tempDir  string
	bypass   bool
	backend  tts.Backend

	mu       sync.Mutex
	inflight map[string]*sync.Mutex
}

// NewResolver creates a Resolver. When bypass is true every lookup evicts the
// cached artifact and synthesizes fresh audio.
func NewResolver(localDir, tempDir string, bypass bool, backend tts.Backend) *Resolver {
	return &Resolver{
		localDir: localDir,
		tempDir:  tempDir,
		bypass:   bypass,
		backend:  backend,
		inflight: make(map[string]*sync.Mutex),
	}
}

// Key returns the cache key for text: the hex MD5 of its UTF-8 bytes.
func Key(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Path returns the temp-cache artifact path for text.
func (r *Resolver) Path(text string) string {
	return filepath.Join(r.tempDir, Key(text)+".wav")
}

// LocalPath returns the pre-recorded override path for text.
func (r *Resolver) LocalPath(text string) string {
	return filepath.Join(r.localDir, text+".wav")
}

// Resolve returns a playable WAV path for text, synthesizing on miss. cached
// reports whether an existing artifact was reused.
//
// Concurrent calls for the same text serialize on a per-key lock so only one
// backend synthesis runs; callers for distinct texts do not block each other.
func (r *Resolver) Resolve(ctx context.Context, text string) (path string, cached bool, err error) {
	if text == "" {
		return "", false, fmt.Errorf("empty text")
	}

	// Pre-recorded overrides win and are never evicted by bypass.
	local := r.LocalPath(text)
	if usable(local) {
		slog.Debug("Cache: using pre-recorded audio", "path", local)
		return local, true, nil
	}

	key := Key(text)
	lock := r.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	path = filepath.Join(r.tempDir, key+".wav")
	if r.bypass {
		if err := removeWithRetry(path); err != nil {
			return "", false, fmt.Errorf("failed to evict cached audio: %w", err)
		}
	} else if usable(path) {
		slog.Debug("Cache: hit", "key", key)
		return path, true, nil
	}

	if err := os.MkdirAll(r.tempDir, 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := r.backend.Synthesize(ctx, text, path); err != nil {
		return "", false, err
	}
	if err := tts.VerifyArtifact(path); err != nil {
		return "", false, err
	}
	slog.Debug("Cache: synthesized", "key", key)
	return path, false, nil
}

// lockFor returns the per-key mutex, creating it on first use. Locks are
// kept for the life of the Resolver, so the map grows with the number of
// distinct texts seen, the same way the on-disk cache does.
func (r *Resolver) lockFor(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.inflight[key]
	if !ok {
		lock = &sync.Mutex{}
		r.inflight[key] = lock
	}
	return lock
}

// usable reports whether path holds a non-empty artifact.
func usable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}

func removeWithRetry(path string) error {
	var err error
	for i := 0; i < deleteAttempts; i++ {
		err = os.Remove(path)
		if err == nil || os.IsNotExist(err) {
			return nil
		}
		time.Sleep(deleteBackoff)
	}
	return err
}
