package server

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/jobfit-analyzer/internal/config"
	"github.com/jonathan/jobfit-analyzer/internal/db"
	"github.com/jonathan/jobfit-analyzer/internal/pipeline"
	"github.com/jonathan/jobfit-analyzer/internal/scoring"
	"github.com/jonathan/jobfit-analyzer/internal/store"
	"github.com/jonathan/jobfit-analyzer/internal/types"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memoryUsers is an in-memory UserStore.
type memoryUsers struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*db.User
	failNext error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: map[uuid.UUID]*db.User{}}
}

func (m *memoryUsers) CheckEmailExists(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryUsers) CreateUser(_ context.Context, name, email string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	u := &db.User{ID: uuid.New(), Name: name, Email: strings.ToLower(email), CreatedAt: now, UpdatedAt: now}
	m.users[u.ID] = u
	return u.ID, nil
}

func (m *memoryUsers) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	u, ok := m.users[id]
	if !ok {
		return errors.New("user not found")
	}
	u.PasswordHash = hash
	u.PasswordSet = true
	return nil
}

func (m *memoryUsers) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memoryUsers) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memoryUsers) DeleteUser(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

// memoryHistory is an in-memory ScanHistory.
type memoryHistory struct {
	mu    sync.Mutex
	scans []types.ScanRecord
}

func (m *memoryHistory) AppendScan(_ context.Context, scan *types.ScanRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans = append(m.scans, *scan)
	return nil
}

func (m *memoryHistory) ListScans(_ context.Context, userID uuid.UUID, limit int) ([]types.ScanRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []types.ScanRecord{}
	for _, s := range m.scans {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type failingScorer struct{}

func (failingScorer) Score(context.Context, types.ScoringRequest, ...types.Attachment) (*types.ScoringResult, error) {
	return nil, &scoring.Error{Message: "model returned no content"}
}

type testEnv struct {
	server   *Server
	analyzer *pipeline.Analyzer
	users    *memoryUsers
	history  *memoryHistory
}

func newTestEnv(t *testing.T, withAccounts bool) *testEnv {
	t.Helper()
	env := &testEnv{
		analyzer: &pipeline.Analyzer{
			Store:  store.NewFileStore(filepath.Join(t.TempDir(), "store.json")),
			Scorer: scoring.StaticScorer{},
		},
	}

	opts := Options{Analyzer: env.analyzer}
	if withAccounts {
		env.users = newMemoryUsers()
		env.history = &memoryHistory{}
		opts.Users = env.users
		opts.History = env.history
		opts.JWT = &config.JWTConfig{
			Secret:     "test-secret-key-for-jwt-signing-minimum-32-bytes",
			Expiration: time.Hour,
			Issuer:     config.JWTIssuer,
		}
		opts.Password = &config.PasswordConfig{BcryptCost: bcrypt.MinCost}
	}

	srv, err := New(opts)
	require.NoError(t, err)
	env.server = srv
	return env
}
