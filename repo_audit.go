package authflow

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AuditEntries is the append-only AuditLogEntry repository. It deliberately
// exposes no update or delete operation.
type AuditEntries interface {
	Append(ctx context.Context, entry *AuditLogEntry) (*AuditLogEntry, error)
	AppendTx(ctx context.Context, tx bun.IDB, entry *AuditLogEntry) (*AuditLogEntry, error)
	Record(ctx context.Context, entry AuditLogEntry) error
}

type auditEntries struct {
	repo repository.Repository[*AuditLogEntry]
	db   *bun.DB
}

var (
	_ AuditEntries = (*auditEntries)(nil)
	_ AuditSink    = (*auditEntries)(nil)
)

func NewAuditEntriesRepository(db *bun.DB) AuditEntries {
	repo := repository.NewRepository[*AuditLogEntry](db, repository.ModelHandlers[*AuditLogEntry]{
		NewRecord: func() *AuditLogEntry { return &AuditLogEntry{} },
		GetID: func(e *AuditLogEntry) uuid.UUID {
			if e == nil {
				return uuid.Nil
			}
			return e.ID
		},
		SetID: func(e *AuditLogEntry, id uuid.UUID) {
			if e != nil {
				e.ID = id
			}
		},
	})

	return &auditEntries{
		repo: repo,
		db:   db,
	}
}

func (a *auditEntries) Append(ctx context.Context, entry *AuditLogEntry) (*AuditLogEntry, error) {
	return a.AppendTx(ctx, a.db, entry)
}

func (a *auditEntries) AppendTx(ctx context.Context, tx bun.IDB, entry *AuditLogEntry) (*AuditLogEntry, error) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return a.repo.CreateTx(ctx, tx, entry)
}

// Record implements AuditSink so the repository can be wired straight into
// Auther.WithAuditSink.
func (a *auditEntries) Record(ctx context.Context, entry AuditLogEntry) error {
	_, err := a.Append(ctx, &entry)
	return err
}
