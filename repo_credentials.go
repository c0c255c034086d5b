package authflow

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Credentials is the AuthenticationRecord repository. Rows are soft-deleted
// on deactivation and never hard-deleted; FindActive only ever sees
// non-deleted records.
type Credentials interface {
	repository.Repository[*AuthenticationRecord]

	FindActive(ctx context.Context, provider, providerKey string, principalType PrincipalType) (*AuthenticationRecord, error)
	FindActiveTx(ctx context.Context, tx bun.IDB, provider, providerKey string, principalType PrincipalType) (*AuthenticationRecord, error)
	TouchLastAuthenticated(ctx context.Context, id uuid.UUID, at time.Time) error
	TouchLastAuthenticatedTx(ctx context.Context, tx bun.IDB, id uuid.UUID, at time.Time) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type credentials struct {
	repository.Repository[*AuthenticationRecord]
	db *bun.DB
}

var (
	_ Credentials     = (*credentials)(nil)
	_ CredentialStore = (*credentials)(nil)
)

func NewCredentialsRepository(db *bun.DB) Credentials {
	repo := repository.NewRepository[*AuthenticationRecord](db, repository.ModelHandlers[*AuthenticationRecord]{
		NewRecord: func() *AuthenticationRecord { return &AuthenticationRecord{} },
		GetID: func(r *AuthenticationRecord) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *AuthenticationRecord, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
		GetIdentifier: func() string {
			return "provider_key"
		},
	})

	return &credentials{
		Repository: repo,
		db:         db,
	}
}

func (c *credentials) FindActive(ctx context.Context, provider, providerKey string, principalType PrincipalType) (*AuthenticationRecord, error) {
	return c.FindActiveTx(ctx, c.db, provider, providerKey, principalType)
}

func (c *credentials) FindActiveTx(ctx context.Context, tx bun.IDB, provider, providerKey string, principalType PrincipalType) (*AuthenticationRecord, error) {
	record := &AuthenticationRecord{}

	// Soft-deleted rows are excluded by Bun via the deleted_at soft_delete tag.
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.provider = ?", provider).
		Where("?TableAlias.provider_key = ?", providerKey).
		Where("?TableAlias.principal_type = ?", principalType).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"provider":       provider,
					"provider_key":   providerKey,
					"principal_type": principalType,
				})
		}
		return nil, err
	}

	return record, nil
}

func (c *credentials) TouchLastAuthenticated(ctx context.Context, id uuid.UUID, at time.Time) error {
	return c.TouchLastAuthenticatedTx(ctx, c.db, id, at)
}

func (c *credentials) TouchLastAuthenticatedTx(ctx context.Context, tx bun.IDB, id uuid.UUID, at time.Time) error {
	_, err := tx.NewRaw(`
		UPDATE "authentication_records" AS "authr"
		SET
			"last_authenticated_at" = ?,
			"updated_at" = ?
		WHERE
			("authr".id = ?)
			AND "authr"."deleted_at" IS NULL;
	`, at, at, id).Exec(ctx)

	return err
}

// Deactivate soft-deletes the record; compliance retention forbids hard
// deletion of credential material.
func (c *credentials) Deactivate(ctx context.Context, id uuid.UUID) error {
	_, err := c.db.NewDelete().
		Model((*AuthenticationRecord)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	return err
}
