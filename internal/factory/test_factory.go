package factory

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/gideon/internal/config"
	"github.com/mcoot/gideon/internal/dependencies/mocks"
	"github.com/mcoot/gideon/internal/services/lookup"
	"github.com/mcoot/gideon/internal/storage/memory"
	"github.com/mcoot/gideon/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockLookup *StubLookup
	Memory     *memory.Storage
}

// NewTestApp creates an App over the fixture registry with mocked
// dependencies. The API token is testutil.APIToken, hashed at minimum cost.
func NewTestApp(ctx context.Context) (*TestApp, error) {
	store := memory.New()
	if err := store.SaveDocument(ctx, testutil.FixtureDocument()); err != nil {
		return nil, err
	}
	mockClock := mocks.NewSteppingClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), time.Second)
	stub := NewStubLookup()

	cfg := config.Default()
	cfg.Storage = config.StorageConfig{Type: config.StorageMemory}
	hash, err := testutil.TokenHash()
	if err != nil {
		return nil, err
	}
	cfg.Auth.APITokenHash = hash

	app, err := newWithDependencies(ctx, store, mockClock, stub, cfg, testutil.NopLogger())
	if err != nil {
		return nil, err
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockLookup: stub,
		Memory:     store,
	}, nil
}

// StubLookup answers profile lookups from registered accounts. Anything
// unknown gets Miss, which defaults to lookup.ErrNotFound.
type StubLookup struct {
	mu     sync.Mutex
	byName map[string]lookup.Profile
	byUUID map[string]lookup.Profile
	Miss   error
	calls  int
}

// NewStubLookup creates an empty StubLookup
func NewStubLookup() *StubLookup {
	return &StubLookup{
		byName: make(map[string]lookup.Profile),
		byUUID: make(map[string]lookup.Profile),
		Miss:   lookup.ErrNotFound,
	}
}

// Add registers an account under both its name and uuid
func (s *StubLookup) Add(uuid, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := lookup.Profile{UUID: uuid, Name: name}
	s.byName[name] = p
	s.byUUID[uuid] = p
}

// SetMiss changes the error returned for unknown accounts
func (s *StubLookup) SetMiss(err error) {
	s.mu.Lock()
	s.Miss = err
	s.mu.Unlock()
}

// Calls returns how many lookups were made
func (s *StubLookup) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *StubLookup) ByName(ctx context.Context, name string) (lookup.Profile, error) {
	return s.find(s.byName, name)
}

func (s *StubLookup) ByUUID(ctx context.Context, uuid string) (lookup.Profile, error) {
	return s.find(s.byUUID, uuid)
}

func (s *StubLookup) find(m map[string]lookup.Profile, key string) (lookup.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if p, ok := m[key]; ok {
		return p, nil
	}
	return lookup.Profile{}, s.Miss
}
