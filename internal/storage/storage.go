// Package storage persists the prize list as a single blob under a fixed key.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"prizewheel/internal/models"
)

// DefaultKey is the name the prize blob is stored under.
const DefaultKey = "vhu_spin_prizes"

var (
	// ErrNotFound is returned when nothing has been stored under the key yet.
	ErrNotFound = errors.New("storage: blob not found")
	// ErrMalformed wraps any failure to decode a stored blob.
	ErrMalformed = errors.New("storage: malformed prize blob")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BlobStore reads and overwrites one opaque blob.
type BlobStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// PrizeRepository encodes the prize list on top of a BlobStore. The encoded
// form is a JSON array whose order is the wheel's segment order.
type PrizeRepository struct {
	blobs BlobStore
}

func NewPrizeRepository(blobs BlobStore) *PrizeRepository {
	return &PrizeRepository{blobs: blobs}
}

// Load returns ErrNotFound when the store is empty and a decode error when the
// blob is not a prize array.
func (r *PrizeRepository) Load(ctx context.Context) ([]models.Prize, error) {
	data, err := r.blobs.Load(ctx)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

func (r *PrizeRepository) Save(ctx context.Context, prizes []models.Prize) error {
	data, err := Encode(prizes)
	if err != nil {
		return err
	}
	return r.blobs.Save(ctx, data)
}

func Encode(prizes []models.Prize) ([]byte, error) {
	if prizes == nil {
		prizes = []models.Prize{}
	}
	data, err := json.Marshal(prizes)
	if err != nil {
		return nil, fmt.Errorf("encode prizes: %w", err)
	}
	return data, nil
}

func Decode(data []byte) ([]models.Prize, error) {
	var prizes []models.Prize
	if err := json.Unmarshal(data, &prizes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if prizes == nil {
		return nil, fmt.Errorf("%w: not an array", ErrMalformed)
	}
	return prizes, nil
}

// MemoryStore keeps the blob in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.data == nil {
		return nil, ErrNotFound
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemoryStore) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	return nil
}
