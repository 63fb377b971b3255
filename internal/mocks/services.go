package mocks

import (
	"context"
	"net/http"
	"sync"

	"github.com/training-management-api/internal/airline"
	"github.com/training-management-api/internal/auth"
	"github.com/training-management-api/internal/cache"
	"github.com/training-management-api/internal/models"
	"github.com/training-management-api/internal/notify"
	"github.com/training-management-api/internal/service"
)

// Verify interface compliance
var (
	_ service.Notifier      = (*MockNotifier)(nil)
	_ service.AirlineClient = (*MockAirlineClient)(nil)
	_ service.HealthChecker = (*MockHealthChecker)(nil)
	_ cache.ProfileCache    = (*MockProfileCache)(nil)
)

var (
	errUnknownKey    = &airline.StatusError{StatusCode: http.StatusUnauthorized, Body: "invalid API key"}
	errPilotNotFound = airline.ErrNotFound
)

// MockNotifier records messages instead of posting them to a webhook
type MockNotifier struct {
	mu           sync.Mutex
	IsConfigured bool
	Err          error
	Sent         []notify.Message
}

func NewMockNotifier(configured bool) *MockNotifier {
	return &MockNotifier{
		IsConfigured: configured,
		Sent:         make([]notify.Message, 0),
	}
}

func (m *MockNotifier) Configured() bool {
	return m.IsConfigured
}

func (m *MockNotifier) Send(ctx context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

// Count returns the number of delivered messages
func (m *MockNotifier) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// MockAirlineClient answers profile lookups from maps keyed by credential
// and pilot id
type MockAirlineClient struct {
	mu          sync.Mutex
	ProfileFunc func(ctx context.Context, apiKey string) (*models.Profile, error)
	Profiles    map[string]*models.Profile
	Pilots      map[string]*models.Profile
	Err         error
	Calls       int
}

func NewMockAirlineClient() *MockAirlineClient {
	return &MockAirlineClient{
		Profiles: make(map[string]*models.Profile),
		Pilots:   make(map[string]*models.Profile),
	}
}

func (m *MockAirlineClient) Profile(ctx context.Context, apiKey string) (*models.Profile, error) {
	m.mu.Lock()
	m.Calls++
	fn := m.ProfileFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, apiKey)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.Profiles[apiKey]
	if !ok {
		return nil, errUnknownKey
	}
	out := *p
	return &out, nil
}

func (m *MockAirlineClient) Pilot(ctx context.Context, apiKey, pilotID string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.Pilots[pilotID]
	if !ok {
		return nil, errPilotNotFound
	}
	out := *p
	return &out, nil
}

// MockHealthChecker reports Err from HealthCheck
type MockHealthChecker struct {
	Err error
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	return m.Err
}

// MockProfileCache keeps verified identities in a map keyed by credential hash
type MockProfileCache struct {
	mu      sync.Mutex
	Entries map[string]*models.VerifiedUser
}

func NewMockProfileCache() *MockProfileCache {
	return &MockProfileCache{Entries: make(map[string]*models.VerifiedUser)}
}

func (m *MockProfileCache) Get(ctx context.Context, credential string) (*models.VerifiedUser, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Entries[auth.HashCredential(credential)]
	if !ok {
		return nil, false
	}
	out := *u
	return &out, true
}

func (m *MockProfileCache) Set(ctx context.Context, credential string, user *models.VerifiedUser) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *user
	m.Entries[auth.HashCredential(credential)] = &stored
}

func (m *MockProfileCache) InvalidateHash(ctx context.Context, credentialHash string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Entries, credentialHash)
}
