package store

import (
	"sync"
	"time"

	"github.com/scalli-crm/cliente-scalli-sub000/internal/models"
	"github.com/scalli-crm/cliente-scalli-sub000/internal/report"
)

// Snapshot es el resultado inmutable de un fetch+parse exitoso para un
// origen. Los lectores nunca lo mutan; un refresh lo reemplaza entero.
type Snapshot struct {
	SourceID  string
	RunID     string
	FetchedAt time.Time
	Headers   []string
	Records   []models.RawRecord
	Stats     report.ParseStats
}

type SnapshotStore struct {
	mu    sync.RWMutex
	snaps map[string]Snapshot
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{snaps: make(map[string]Snapshot)}
}

// Install reemplaza el snapshot del origen de forma atómica: último en
// escribir gana. Un fetch fallido nunca llega acá, así que el último
// snapshot bueno sobrevive a errores de refresh.
func (s *SnapshotStore) Install(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[snap.SourceID] = snap
}

func (s *SnapshotStore) Get(sourceID string) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[sourceID]
	return snap, ok
}

// Records devuelve las filas del origen; origen sin snapshot => vacío.
func (s *SnapshotStore) Records(sourceID string) []models.RawRecord {
	snap, ok := s.Get(sourceID)
	if !ok {
		return []models.RawRecord{}
	}
	return snap.Records
}
