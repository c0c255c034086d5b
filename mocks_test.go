package authflow_test

import (
	"context"
	"time"

	authflow "github.com/ashby-lab/go-authflow"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func repoNotFound() error {
	return repository.NewRecordNotFound()
}

// MockCredentialStore implements authflow.CredentialStore
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) FindActive(ctx context.Context, provider, providerKey string, principalType authflow.PrincipalType) (*authflow.AuthenticationRecord, error) {
	args := m.Called(ctx, provider, providerKey, principalType)
	if rec := args.Get(0); rec != nil {
		return rec.(*authflow.AuthenticationRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCredentialStore) TouchLastAuthenticated(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockPrincipalDirectory implements authflow.PrincipalDirectory
type MockPrincipalDirectory struct {
	mock.Mock
}

func (m *MockPrincipalDirectory) FindActiveByID(ctx context.Context, id uuid.UUID) (authflow.Principal, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(authflow.Principal), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockSessionStore implements authflow.SessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Create(ctx context.Context, session *authflow.Session) (*authflow.Session, error) {
	args := m.Called(ctx, session)
	if s := args.Get(0); s != nil {
		return s.(*authflow.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionStore) Revoke(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockSessionStore) FindLiveByAccessToken(ctx context.Context, accessToken string, at time.Time) (*authflow.Session, error) {
	args := m.Called(ctx, accessToken, at)
	if s := args.Get(0); s != nil {
		return s.(*authflow.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionStore) FindLiveByRefreshToken(ctx context.Context, refreshToken string) (*authflow.Session, error) {
	args := m.Called(ctx, refreshToken)
	if s := args.Get(0); s != nil {
		return s.(*authflow.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

// fakeSessionStore is an in-memory SessionStore for flows where the mock
// call-count choreography gets in the way.
type fakeSessionStore struct {
	created []*authflow.Session
	revoked []uuid.UUID
}

func (f *fakeSessionStore) Create(_ context.Context, session *authflow.Session) (*authflow.Session, error) {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	f.created = append(f.created, session)
	return session, nil
}

func (f *fakeSessionStore) Revoke(_ context.Context, id uuid.UUID, at time.Time) error {
	for _, s := range f.created {
		if s.ID == id && s.RevokedAt == nil {
			revokedAt := at
			s.RevokedAt = &revokedAt
			f.revoked = append(f.revoked, id)
			return nil
		}
	}
	return authflow.ErrSessionNotLive
}

func (f *fakeSessionStore) FindLiveByAccessToken(_ context.Context, accessToken string, at time.Time) (*authflow.Session, error) {
	for _, s := range f.created {
		if s.AccessToken == accessToken && s.IsLive(at) {
			return s, nil
		}
	}
	return nil, repoNotFound()
}

func (f *fakeSessionStore) FindLiveByRefreshToken(_ context.Context, refreshToken string) (*authflow.Session, error) {
	for _, s := range f.created {
		if s.RefreshToken == refreshToken && s.RevokedAt == nil {
			return s, nil
		}
	}
	return nil, repoNotFound()
}

// capturingAuditSink collects audit entries for assertions.
type capturingAuditSink struct {
	entries []authflow.AuditLogEntry
	err     error
}

func (c *capturingAuditSink) Record(_ context.Context, entry authflow.AuditLogEntry) error {
	if c.err != nil {
		return c.err
	}
	c.entries = append(c.entries, entry)
	return nil
}

// capturingIncidentReporter collects incidents for assertions.
type capturingIncidentReporter struct {
	incidents []authflow.SecurityIncident
	err       error
}

func (c *capturingIncidentReporter) Report(_ context.Context, incident authflow.SecurityIncident) error {
	if c.err != nil {
		return c.err
	}
	c.incidents = append(c.incidents, incident)
	return nil
}

// TestPrincipal is a simple implementation of the Principal interface
type TestPrincipal struct {
	id          string
	email       string
	displayName string
	ptype       authflow.PrincipalType
}

func (t TestPrincipal) ID() string                   { return t.id }
func (t TestPrincipal) Email() string                { return t.email }
func (t TestPrincipal) DisplayName() string          { return t.displayName }
func (t TestPrincipal) Type() authflow.PrincipalType { return t.ptype }

func newTestConfig() authflow.SimpleConfig {
	return authflow.SimpleConfig{
		SigningKey: "test-signing-key",
		Issuer:     "test-issuer",
		Audience:   []string{"test:audience"},
	}
}
