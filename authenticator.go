package authflow

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// isRecordNotFound accepts both the repository layer's not-found error and a
// generic not-found category, so custom PrincipalDirectory implementations
// are not forced onto go-repository-bun.
func isRecordNotFound(err error) bool {
	return repository.IsRecordNotFound(err) || goerrors.IsNotFound(err)
}

// Auther executes login attempts end to end with deterministic branch
// ordering: credential lookup, then principal lookup, then password
// verification, then the ordered success-path writes. One Auther serves every
// principal type; register a PrincipalDirectory per type.
type Auther struct {
	credentials   CredentialStore
	sessions      SessionStore
	directories   map[PrincipalType]PrincipalDirectory
	tokenService  TokenIssuer
	passwords     PasswordAuthenticator
	auditSink     AuditSink
	incidents     IncidentReporter
	incidentScope string
	clock         Clock
	logger        Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(credentials CredentialStore, sessions SessionStore, opts Config) *Auther {
	tokenService := NewTokenServiceFromConfig(opts, defLogger{})

	return &Auther{
		credentials:   credentials,
		sessions:      sessions,
		directories:   map[PrincipalType]PrincipalDirectory{},
		tokenService:  tokenService,
		passwords:     bcryptAuthenticator{},
		auditSink:     noopAuditSink{},
		incidents:     noopIncidentReporter{},
		incidentScope: IncidentScopeSystem,
		clock:         time.Now,
		logger:        defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	if ts, ok := s.tokenService.(*TokenServiceImpl); ok {
		ts.logger = logger
	}
	return s
}

// WithDirectory registers the principal lookup for one principal type.
func (s *Auther) WithDirectory(principalType PrincipalType, directory PrincipalDirectory) *Auther {
	s.directories[principalType] = directory
	return s
}

// WithAuditSink configures the sink receiving success-path audit entries.
func (s *Auther) WithAuditSink(sink AuditSink) *Auther {
	s.auditSink = normalizeAuditSink(sink)
	return s
}

// WithIncidentReporter configures the reporter receiving failure incidents.
func (s *Auther) WithIncidentReporter(reporter IncidentReporter) *Auther {
	s.incidents = normalizeIncidentReporter(reporter)
	return s
}

// WithIncidentScope overrides the organization scope stamped on incidents.
func (s *Auther) WithIncidentScope(scope string) *Auther {
	if scope != "" {
		s.incidentScope = scope
	}
	return s
}

// WithTokenIssuer sets a custom token issuer.
func (s *Auther) WithTokenIssuer(issuer TokenIssuer) *Auther {
	if issuer != nil {
		s.tokenService = issuer
	}
	return s
}

// WithPasswordAuthenticator overrides the password verification scheme.
func (s *Auther) WithPasswordAuthenticator(pa PasswordAuthenticator) *Auther {
	if pa != nil {
		s.passwords = pa
	}
	return s
}

// WithClock overrides the time source for the orchestrator and its issuer.
func (s *Auther) WithClock(clock Clock) *Auther {
	if clock == nil {
		return s
	}
	s.clock = clock
	if ts, ok := s.tokenService.(*TokenServiceImpl); ok {
		ts.WithClock(clock)
	}
	return s
}

// TokenService returns the TokenIssuer instance used by this Authenticator
func (s *Auther) TokenService() TokenIssuer {
	return s.tokenService
}

// Login runs one authentication attempt. The check order is fixed: credential
// record first, then principal liveness, then password. Each failure branch
// opens a SecurityIncident carrying the real cause while the caller only sees
// ErrInvalidCredentials or ErrAccountInactive.
func (s *Auther) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := req.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid login request")
	}

	record, err := s.credentials.FindActive(ctx, req.Provider, req.ProviderKey, req.PrincipalType)
	if err != nil {
		if isRecordNotFound(err) {
			s.reportIncident(ctx, nil, "login attempt with invalid credentials", incidentDetails(req, "credential record not found"))
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Login credential lookup error", "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve credential record")
	}

	directory, ok := s.directories[req.PrincipalType]
	if !ok {
		s.logger.Error("Login has no directory for principal type", "principal_type", req.PrincipalType)
		return nil, goerrors.Wrap(ErrUnknownPrincipalType, goerrors.CategoryOperation, "no principal directory registered").
			WithMetadata(map[string]any{"principal_type": req.PrincipalType})
	}

	principal, err := directory.FindActiveByID(ctx, record.PrincipalID)
	if err != nil {
		if isRecordNotFound(err) {
			s.reportIncident(ctx, &record.PrincipalID, "login attempt for inactive or deleted principal", incidentDetails(req, "principal missing or soft-deleted"))
			return nil, ErrAccountInactive
		}
		s.logger.Error("Login principal lookup error", "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve principal")
	}

	if record.IsLocal() {
		if req.Password == "" || record.PasswordHash == "" {
			s.reportIncident(ctx, &record.PrincipalID, "login attempt without usable password credential", incidentDetails(req, "password or stored hash missing"))
			return nil, ErrInvalidCredentials
		}

		if err := s.passwords.ComparePasswordAndHash(req.Password, record.PasswordHash); err != nil {
			s.reportIncident(ctx, &record.PrincipalID, "login attempt with mismatched password", incidentDetails(req, "password verification failed"))
			return nil, ErrInvalidCredentials
		}
	}

	now := s.clock()

	tokens, err := s.tokenService.Issue(principal.ID(), req.PrincipalType)
	if err != nil {
		s.logger.Error("Login token issuance error", "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue tokens")
	}

	session, err := s.recordSession(ctx, record.PrincipalID, req, tokens, now)
	if err != nil {
		s.logger.Error("Login session insert error", "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to record session")
	}

	s.recordAudit(ctx, AuditLogEntry{
		PrincipalID: &record.PrincipalID,
		ActionType:  ActionLoginSuccess,
		EventContext: map[string]any{
			"provider":       req.Provider,
			"provider_key":   req.ProviderKey,
			"principal_type": req.PrincipalType,
			"email":          req.Email,
		},
		RelatedEntityType: "session",
		RelatedEntityID:   session.ID.String(),
	})

	// Advisory metadata only, last-writer-wins across concurrent logins.
	if err := s.credentials.TouchLastAuthenticated(ctx, record.ID, now); err != nil {
		s.logger.Error("Login failed to advance last_authenticated_at", "error", err)
	}

	return &LoginResult{
		Principal: principal,
		Tokens:    tokens,
		Session:   session,
	}, nil
}

// Refresh exchanges a valid refresh token for a fresh bundle, rotating the
// backing session: the old one is revoked and a new row inserted.
func (s *Auther) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := s.tokenService.ValidateRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.FindLiveByRefreshToken(ctx, refreshToken)
	if err != nil {
		if isRecordNotFound(err) {
			pid := principalIDFromClaims(claims)
			s.reportIncident(ctx, pid, "refresh attempt against revoked session", map[string]any{
				"principal_type": claims.PrincipalType(),
			})
			return nil, ErrSessionNotLive
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve session")
	}

	directory, ok := s.directories[session.PrincipalType]
	if !ok {
		return nil, goerrors.Wrap(ErrUnknownPrincipalType, goerrors.CategoryOperation, "no principal directory registered").
			WithMetadata(map[string]any{"principal_type": session.PrincipalType})
	}

	principal, err := directory.FindActiveByID(ctx, session.PrincipalID)
	if err != nil {
		if isRecordNotFound(err) {
			s.reportIncident(ctx, &session.PrincipalID, "refresh attempt for inactive or deleted principal", map[string]any{
				"principal_type": session.PrincipalType,
			})
			return nil, ErrAccountInactive
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve principal")
	}

	now := s.clock()

	tokens, err := s.tokenService.Issue(principal.ID(), session.PrincipalType)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue tokens")
	}

	if err := s.sessions.Revoke(ctx, session.ID, now); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to revoke session")
	}

	next := &Session{
		PrincipalID:   session.PrincipalID,
		PrincipalType: session.PrincipalType,
		AccessToken:   tokens.Access,
		RefreshToken:  tokens.Refresh,
		IssuedAt:      now,
		ExpiresAt:     tokens.ExpiredAt,
		UserAgent:     session.UserAgent,
		IPAddress:     session.IPAddress,
	}

	next, err = s.sessions.Create(ctx, next)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to record session")
	}

	s.recordAudit(ctx, AuditLogEntry{
		PrincipalID: &session.PrincipalID,
		ActionType:  ActionTokenRefresh,
		EventContext: map[string]any{
			"principal_type":   session.PrincipalType,
			"previous_session": session.ID.String(),
		},
		RelatedEntityType: "session",
		RelatedEntityID:   next.ID.String(),
	})

	return &LoginResult{
		Principal: principal,
		Tokens:    tokens,
		Session:   next,
	}, nil
}

// Logout revokes the session behind a live access token.
func (s *Auther) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.tokenService.Validate(accessToken)
	if err != nil {
		return err
	}

	now := s.clock()

	session, err := s.sessions.FindLiveByAccessToken(ctx, accessToken, now)
	if err != nil {
		if isRecordNotFound(err) {
			return ErrSessionNotLive
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve session")
	}

	if err := s.sessions.Revoke(ctx, session.ID, now); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to revoke session")
	}

	s.recordAudit(ctx, AuditLogEntry{
		PrincipalID: &session.PrincipalID,
		ActionType:  ActionLogout,
		EventContext: map[string]any{
			"principal_type": claims.PrincipalType(),
		},
		RelatedEntityType: "session",
		RelatedEntityID:   session.ID.String(),
	})

	return nil
}

func (s *Auther) recordSession(ctx context.Context, principalID uuid.UUID, req LoginRequest, tokens *TokenBundle, issuedAt time.Time) (*Session, error) {
	session := &Session{
		PrincipalID:   principalID,
		PrincipalType: req.PrincipalType,
		AccessToken:   tokens.Access,
		RefreshToken:  tokens.Refresh,
		IssuedAt:      issuedAt,
		ExpiresAt:     tokens.ExpiredAt,
		UserAgent:     req.UserAgent,
		IPAddress:     req.IPAddress,
	}

	return s.sessions.Create(ctx, session)
}

func (s *Auther) recordAudit(ctx context.Context, entry AuditLogEntry) {
	sink := normalizeAuditSink(s.auditSink)

	if entry.EventContext == nil {
		entry.EventContext = map[string]any{}
	}

	if err := sink.Record(ctx, entry); err != nil {
		s.logger.Warn("audit sink record error: %v", err)
	}
}

func (s *Auther) reportIncident(ctx context.Context, principalID *uuid.UUID, summary string, details map[string]any) {
	reporter := normalizeIncidentReporter(s.incidents)

	if details == nil {
		details = map[string]any{}
	}

	incident := SecurityIncident{
		OpenedByPrincipalID: principalID,
		OrganizationScope:   s.incidentScope,
		IncidentType:        IncidentTypeFailedLogin,
		Summary:             summary,
		Details:             details,
		Status:              IncidentStatusOpen,
		Severity:            IncidentSeverityMedium,
	}

	if err := reporter.Report(ctx, incident); err != nil {
		s.logger.Warn("incident reporter error: %v", err)
	}
}

func incidentDetails(req LoginRequest, cause string) map[string]any {
	return map[string]any{
		"provider":       req.Provider,
		"provider_key":   req.ProviderKey,
		"principal_type": req.PrincipalType,
		"email":          req.Email,
		"cause":          cause,
	}
}

func principalIDFromClaims(claims AuthClaims) *uuid.UUID {
	if claims == nil {
		return nil
	}
	id, err := uuid.Parse(claims.PrincipalID())
	if err != nil {
		return nil
	}
	return &id
}
