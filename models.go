package authflow

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PrincipalType tags which domain entity a credential or session belongs to.
type PrincipalType = string

const (
	// PrincipalTypeAdmin is a system administrator
	PrincipalTypeAdmin PrincipalType = "admin"
	// PrincipalTypeMember is a regular member account
	PrincipalTypeMember PrincipalType = "member"
)

// ProviderLocal is the password-backed provider; every other provider value
// is treated as federated and skips password verification.
const ProviderLocal = "local"

// AuthenticationRecord links one principal to one login provider's credential
// material. (provider, provider_key, principal_type) is unique among
// non-deleted rows; rows are soft-deleted on deactivation and never hard
// deleted for retention.
type AuthenticationRecord struct {
	bun.BaseModel       `bun:"table:authentication_records,alias:authr"`
	ID                  uuid.UUID     `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	PrincipalID         uuid.UUID     `bun:"principal_id,notnull,type:uuid" json:"principal_id,omitempty"`
	PrincipalType       PrincipalType `bun:"principal_type,notnull" json:"principal_type,omitempty"`
	Provider            string        `bun:"provider,notnull" json:"provider,omitempty"`
	ProviderKey         string        `bun:"provider_key,notnull" json:"provider_key,omitempty"`
	PasswordHash        string        `bun:"password_hash" json:"-"`
	LastAuthenticatedAt *time.Time    `bun:"last_authenticated_at,nullzero" json:"last_authenticated_at,omitempty"`
	CreatedAt           *time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt           *time.Time    `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt           *time.Time    `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// IsLocal reports whether the record carries password credential material.
func (r *AuthenticationRecord) IsLocal() bool {
	return r != nil && r.Provider == ProviderLocal
}

// Session is one issued token pair with its validity window. Every login
// inserts a new row; a principal may hold any number of concurrent sessions.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:sess"`
	ID            uuid.UUID     `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	PrincipalID   uuid.UUID     `bun:"principal_id,notnull,type:uuid" json:"principal_id,omitempty"`
	PrincipalType PrincipalType `bun:"principal_type,notnull" json:"principal_type,omitempty"`
	AccessToken   string        `bun:"access_token,notnull" json:"-"`
	RefreshToken  string        `bun:"refresh_token,notnull" json:"-"`
	IssuedAt      time.Time     `bun:"issued_at,notnull" json:"issued_at,omitempty"`
	ExpiresAt     time.Time     `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	RevokedAt     *time.Time    `bun:"revoked_at,nullzero" json:"revoked_at,omitempty"`
	UserAgent     string        `bun:"user_agent" json:"user_agent,omitempty"`
	IPAddress     string        `bun:"ip_address" json:"ip_address,omitempty"`
	CreatedAt     *time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time    `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// IsLive reports whether the session is usable at the given instant:
// not revoked and not past its access expiry.
func (s *Session) IsLive(at time.Time) bool {
	if s == nil || s.RevokedAt != nil {
		return false
	}
	return at.Before(s.ExpiresAt)
}

// Audit action types recorded on the success paths.
const (
	ActionLoginSuccess = "auth.login.success"
	ActionTokenRefresh = "auth.token.refresh"
	ActionLogout       = "auth.logout"
)

// AuditLogEntry is the append-only record of a successful security-relevant
// action. Rows are never mutated or deleted.
type AuditLogEntry struct {
	bun.BaseModel     `bun:"table:audit_log_entries,alias:audit"`
	ID                uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	PrincipalID       *uuid.UUID     `bun:"principal_id,nullzero,type:uuid" json:"principal_id,omitempty"`
	ActionType        string         `bun:"action_type,notnull" json:"action_type,omitempty"`
	EventContext      map[string]any `bun:"event_context,type:jsonb" json:"event_context,omitempty"`
	RelatedEntityType string         `bun:"related_entity_type" json:"related_entity_type,omitempty"`
	RelatedEntityID   string         `bun:"related_entity_id" json:"related_entity_id,omitempty"`
	CreatedAt         *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Incident classification.
const (
	IncidentTypeFailedLogin = "FAILED_LOGIN"

	IncidentStatusOpen = "OPEN"

	IncidentSeverityLow    = "LOW"
	IncidentSeverityMedium = "MEDIUM"
	IncidentSeverityHigh   = "HIGH"
)

// IncidentScopeSystem is the sentinel organization scope used when an
// incident cannot be attributed to a concrete tenant.
const IncidentScopeSystem = "system"

// SecurityIncident is the operator-visible record of a failed or suspicious
// authentication attempt. Created on every failure branch; status is mutated
// only by a separate incident-management workflow.
type SecurityIncident struct {
	bun.BaseModel       `bun:"table:security_incidents,alias:sinc"`
	ID                  uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	OpenedByPrincipalID *uuid.UUID     `bun:"opened_by_principal_id,nullzero,type:uuid" json:"opened_by_principal_id,omitempty"`
	OrganizationScope   string         `bun:"organization_scope,notnull" json:"organization_scope,omitempty"`
	IncidentType        string         `bun:"incident_type,notnull" json:"incident_type,omitempty"`
	Summary             string         `bun:"summary,notnull" json:"summary,omitempty"`
	Details             map[string]any `bun:"details,type:jsonb" json:"details,omitempty"`
	Status              string         `bun:"status,notnull" json:"status,omitempty"`
	Severity            string         `bun:"severity,notnull" json:"severity,omitempty"`
	OpenedAt            *time.Time     `bun:"opened_at,nullzero,default:current_timestamp" json:"opened_at,omitempty"`
	UpdatedAt           *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}
