package roster

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
)

// State is everything the poller persists between cycles: snapshots,
// detector caches and the announcement list.
type State struct {
	Snapshots     map[string]Snapshot `json:"snapshots"`
	Tiers         TierState           `json:"tiers"`
	Goals         GoalState           `json:"goals"`
	Matches       MatchState          `json:"matches"`
	Announcements []Announcement      `json:"announcements"`
	FetchedAt     int64               `json:"fetchedAt"`
	HasErrors     bool                `json:"hasErrors"`
}

func NewState() State {
	return State{
		Snapshots: make(map[string]Snapshot),
		Tiers:     make(TierState),
		Goals:     make(GoalState),
		Matches:   make(MatchState),
	}
}

func (s *State) normalize() {
	if s.Snapshots == nil {
		s.Snapshots = make(map[string]Snapshot)
	}
	if s.Tiers == nil {
		s.Tiers = make(TierState)
	}
	if s.Goals == nil {
		s.Goals = make(GoalState)
	}
	if s.Matches == nil {
		s.Matches = make(MatchState)
	}
}

// Store is the local persistence port for poller state. Implementations must
// return a usable empty state when nothing has been saved yet.
type Store interface {
	Load() (State, error)
	Save(State) error
}

// FileStore keeps the state as a single JSON blob on disk, written via a
// temp file and rename.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state dir: %w", err)
	}
	return &FileStore{path: filepath.Join(dir, "roster_state.json")}, nil
}

func (f *FileStore) Load() (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return NewState(), nil
	}
	if err != nil {
		return NewState(), err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		// A corrupt state file only costs one announcement history; start over.
		return NewState(), nil
	}
	state.normalize()
	return state, nil
}

func (f *FileStore) Save(state State) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// MemoryStore is the in-memory Store used by tests.
type MemoryStore struct {
	mu    sync.Mutex
	state State
	set   bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return NewState(), nil
	}
	return m.state, nil
}

func (m *MemoryStore) Save(state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.set = true
	return nil
}
