package authflow

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	Credentials() Credentials
	Sessions() Sessions
	AuditLog() AuditEntries
	Incidents() Incidents

	Validate() error
	MustValidate()
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
}

type mngr struct {
	db           *bun.DB
	credentials  Credentials
	sessions     Sessions
	auditEntries AuditEntries
	incidents    Incidents
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:           db,
		credentials:  NewCredentialsRepository(db),
		sessions:     NewSessionsRepository(db),
		auditEntries: NewAuditEntriesRepository(db),
		incidents:    NewIncidentsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.credentials == nil {
		return errors.New("repository credentials should be initialized")
	}

	if m.sessions == nil {
		return errors.New("repository sessions should be initialized")
	}

	if m.auditEntries == nil {
		return errors.New("repository auditEntries should be initialized")
	}

	if m.incidents == nil {
		return errors.New("repository incidents should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Credentials() Credentials {
	return m.credentials
}

func (m mngr) Sessions() Sessions {
	return m.sessions
}

func (m mngr) AuditLog() AuditEntries {
	return m.auditEntries
}

func (m mngr) Incidents() Incidents {
	return m.incidents
}
