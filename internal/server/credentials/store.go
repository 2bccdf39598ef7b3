// Package credentials keeps the vendor API keys the server was configured
// with at runtime. Keys live in memory only and are lost on restart.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/aiinterview/internal/common"
	"github.com/dmitrijs2005/aiinterview/internal/server/ai/openai"
)

// ClientFactory builds a vendor client bound to key.
type ClientFactory func(key string) *openai.Client

// ProbeResult describes the validation round-trip made by SetKey.
// Verified is false when the vendor could not be reached in time; the key is
// kept either way.
type ProbeResult struct {
	Verified bool
	Reason   string
}

// Store holds the OpenAI key. Clients are built from the current key on
// every Client call, so a key change is visible to the next request.
type Store struct {
	mu           sync.RWMutex
	key          string
	newClient    ClientFactory
	probeTimeout time.Duration
}

func NewStore(initialKey string, newClient ClientFactory, probeTimeout time.Duration) *Store {
	return &Store{
		key:          strings.TrimSpace(initialKey),
		newClient:    newClient,
		probeTimeout: probeTimeout,
	}
}

// SetKey stores key and checks it with one cheap vendor call bounded by the
// probe timeout. A key the vendor rejects (4xx) yields an error matching
// common.ErrInvalidCredential, but stays stored. Timeouts, transport errors
// and vendor 5xx responses leave the result unverified without failing.
func (s *Store) SetKey(ctx context.Context, key string) (ProbeResult, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return ProbeResult{}, common.NewValidationError("Missing API key")
	}

	s.mu.Lock()
	s.key = key
	s.mu.Unlock()

	if s.probeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.probeTimeout)
		defer cancel()
	}

	err := s.newClient(key).Probe(ctx)
	if err == nil {
		return ProbeResult{Verified: true}, nil
	}

	var ve *common.VendorError
	if errors.As(err, &ve) && ve.Status >= http.StatusBadRequest && ve.Status < http.StatusInternalServerError {
		return ProbeResult{Reason: ve.Message}, fmt.Errorf("%w: %w", common.ErrInvalidCredential, ve)
	}
	return ProbeResult{Reason: err.Error()}, nil
}

// IsConfigured reports whether a non-empty key is stored.
func (s *Store) IsConfigured() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key != ""
}

// Client returns a new vendor client for the current key, or false when no
// key is set.
func (s *Store) Client() (*openai.Client, bool) {
	s.mu.RLock()
	key := s.key
	s.mu.RUnlock()

	if key == "" {
		return nil, false
	}
	return s.newClient(key), true
}
