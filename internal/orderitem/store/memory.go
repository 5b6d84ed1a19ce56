package store

import (
	"context"
	"sync"

	"github.com/Beebbbyy/order-metrics-api/internal/orderitem/entity"
	"github.com/Beebbbyy/order-metrics-api/internal/pkg/pkgerror"
)

// InMemoryStore keeps every entry for the life of the process. There is no
// eviction, so memory grows with the number of distinct identifiers.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*entryRecord
}

type entryRecord struct {
	mu      sync.RWMutex
	upload  *entity.Upload
	metrics *entity.Metrics
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		entries: make(map[string]*entryRecord),
	}
}

// CreateUpload records download details. They can be written only once per identifier.
func (s *InMemoryStore) CreateUpload(ctx context.Context, upload entity.Upload) error {
	rec := s.getOrCreate(upload.ID)

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if rec.upload != nil {
		return pkgerror.NewBusiness("upload already exists", pkgerror.CodeConflict)
	}

	rec.upload = &upload

	return nil
}

func (s *InMemoryStore) FindUpload(ctx context.Context, fileID string) (entity.Upload, error) {
	rec, err := s.get(fileID)
	if err != nil {
		return entity.Upload{}, err
	}

	rec.mu.RLock()
	defer rec.mu.RUnlock()

	if rec.upload == nil {
		return entity.Upload{}, pkgerror.ErrNotFound
	}

	return *rec.upload, nil
}

// SaveMetrics replaces the latest metrics for fileID, creating the entry when needed.
func (s *InMemoryStore) SaveMetrics(ctx context.Context, fileID string, metrics entity.Metrics) error {
	rec := s.getOrCreate(fileID)

	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.metrics = &metrics

	return nil
}

func (s *InMemoryStore) Get(ctx context.Context, fileID string) (entity.Entry, error) {
	rec, err := s.get(fileID)
	if err != nil {
		return entity.Entry{}, err
	}

	rec.mu.RLock()
	defer rec.mu.RUnlock()

	entry := entity.Entry{ID: fileID}
	if rec.upload != nil {
		upload := *rec.upload
		entry.Upload = &upload
	}
	if rec.metrics != nil {
		metrics := *rec.metrics
		entry.Metrics = &metrics
	}

	return entry, nil
}

// Len returns the number of identifiers held.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

func (s *InMemoryStore) get(fileID string) (*entryRecord, error) {
	s.mu.RLock()
	rec, ok := s.entries[fileID]
	s.mu.RUnlock()
	if !ok {
		return nil, pkgerror.ErrNotFound
	}

	return rec, nil
}

func (s *InMemoryStore) getOrCreate(fileID string) *entryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.entries[fileID]
	if !ok {
		rec = &entryRecord{}
		s.entries[fileID] = rec
	}

	return rec
}
