// internal/app/system/auth/records.go
package auth

import (
	"context"
	"sync"
	"time"
)

// RecordStore keeps session records on the server. The cookie carries
// only the record id, so the record may grow past browser cookie limits.
// The Mongo sessionrecords store implements it.
type RecordStore interface {
	Put(ctx context.Context, id string, data []byte, expiresAt time.Time) error
	Get(ctx context.Context, id string) (data []byte, found bool, err error)
	Delete(ctx context.Context, id string) error
}

// MemoryRecords is an in-process RecordStore. Records are lost on restart
// and are not shared between instances.
type MemoryRecords struct {
	mu      sync.Mutex
	records map[string]memoryRecord
	now     func() time.Time
}

type memoryRecord struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryRecords returns an empty in-process record store.
func NewMemoryRecords() *MemoryRecords {
	return &MemoryRecords{
		records: make(map[string]memoryRecord),
		now:     time.Now,
	}
}

// Put stores a copy of data under id.
func (m *MemoryRecords) Put(_ context.Context, id string, data []byte, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[id] = memoryRecord{data: append([]byte(nil), data...), expiresAt: expiresAt}
	return nil
}

// Get returns the data under id. Expired records are dropped on read.
func (m *MemoryRecords) Get(_ context.Context, id string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(rec.expiresAt) {
		delete(m.records, id)
		return nil, false, nil
	}
	return append([]byte(nil), rec.data...), true, nil
}

// Delete removes id.
func (m *MemoryRecords) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}
