package compaction

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
)

// ErrTokenNotFound is returned by Apply for a token that was never
// issued or was already redeemed.
var ErrTokenNotFound = errors.New("compaction: confirmation token not found")

const tokenBytes = 16

// PendingStore maps confirmation tokens to the batches they authorize.
// It is owned by one Coordinator instance and guarded by a mutex so
// that two concurrent applies cannot both redeem the same token.
//
// Entries never expire; a token lives until it is redeemed or the
// process exits.
type PendingStore struct {
	mu      sync.Mutex
	batches map[string]ChangeBatch
}

func NewPendingStore() *PendingStore {
	return &PendingStore{
		batches: make(map[string]ChangeBatch),
	}
}

// Put stores a batch and returns the freshly minted token for it.
func (s *PendingStore) Put(batch ChangeBatch) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[token] = batch
	return token, nil
}

// Take removes and returns the batch for a token in one critical
// section. The second caller for the same token always misses.
func (s *PendingStore) Take(token string) (ChangeBatch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch, ok := s.batches[token]
	if ok {
		delete(s.batches, token)
	}
	return batch, ok
}

// Len reports the number of outstanding tokens.
func (s *PendingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

// newToken returns 16 bytes of secure randomness in URL-safe base64
// without padding, matching the format of previously issued tokens.
func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("compaction: mint token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
