package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/bookresolver/internal/models"
)

// DefaultMaxScans bounds the in-memory history
const DefaultMaxScans = 1000

// ScanStore keeps recent scans in memory and tracks the in-flight resolve of
// each client so a newer request can supersede an older one.
type ScanStore struct {
	scans    map[string]*models.ScanSession
	maxScans int
	mu       sync.RWMutex

	inflight   map[string]*inflight
	inflightMu sync.Mutex
}

type inflight struct {
	cancel context.CancelCauseFunc
}

// New returns an empty store holding at most maxScans scans (DefaultMaxScans when <= 0)
func New(maxScans int) *ScanStore {
	if maxScans <= 0 {
		maxScans = DefaultMaxScans
	}
	return &ScanStore{
		scans:    make(map[string]*models.ScanSession),
		maxScans: maxScans,
		inflight: make(map[string]*inflight),
	}
}

// Save stores scan, assigning an ID and timestamp when missing. The oldest
// scan is evicted once the store is full.
func (s *ScanStore) Save(scan *models.ScanSession) *models.ScanSession {
	if scan.ID == "" {
		scan.ID = uuid.NewString()
	}
	if scan.CreatedAt.IsZero() {
		scan.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.scans[scan.ID] = scan

	for len(s.scans) > s.maxScans {
		var oldest *models.ScanSession
		for _, v := range s.scans {
			if oldest == nil || v.CreatedAt.Before(oldest.CreatedAt) {
				oldest = v
			}
		}
		delete(s.scans, oldest.ID)
	}
	return scan
}

func (s *ScanStore) Get(id string) (*models.ScanSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scan, exists := s.scans[id]
	return scan, exists
}

// List returns every scan, newest first
func (s *ScanStore) List() []*models.ScanSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.ScanSession, 0, len(s.scans))
	for _, v := range s.scans {
		result = append(result, v)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func (s *ScanStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scans, id)
}

// Begin registers a new in-flight request for clientID and cancels the
// previous one, whose context then reports ErrSuperseded as its cause. The
// returned done func must be called when the request finishes. An empty
// clientID never supersedes anything.
func (s *ScanStore) Begin(ctx context.Context, clientID string) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(ctx)
	if clientID == "" {
		return ctx, func() { cancel(nil) }
	}

	entry := &inflight{cancel: cancel}

	s.inflightMu.Lock()
	if prev, ok := s.inflight[clientID]; ok {
		prev.cancel(ErrSuperseded)
	}
	s.inflight[clientID] = entry
	s.inflightMu.Unlock()

	return ctx, func() {
		s.inflightMu.Lock()
		if s.inflight[clientID] == entry {
			delete(s.inflight, clientID)
		}
		s.inflightMu.Unlock()
		cancel(nil)
	}
}
