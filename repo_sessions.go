package authflow

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Sessions is the Session repository. Create always inserts a new row; there
// is deliberately no upsert, every login is its own revocable session. The
// interface does not embed the generic repository surface: Create here takes
// no insert criteria, and one method name cannot carry both signatures.
type Sessions interface {
	Create(ctx context.Context, session *Session) (*Session, error)
	CreateTx(ctx context.Context, tx bun.IDB, session *Session) (*Session, error)
	Revoke(ctx context.Context, id uuid.UUID, at time.Time) error
	RevokeTx(ctx context.Context, tx bun.IDB, id uuid.UUID, at time.Time) error
	FindLiveByAccessToken(ctx context.Context, accessToken string, at time.Time) (*Session, error)
	FindLiveByRefreshToken(ctx context.Context, refreshToken string) (*Session, error)
	EnsureLive(ctx context.Context, accessToken string, at time.Time) error
}

type sessions struct {
	repository.Repository[*Session]
	db *bun.DB
}

var (
	_ Sessions     = (*sessions)(nil)
	_ SessionStore = (*sessions)(nil)
)

func NewSessionsRepository(db *bun.DB) Sessions {
	repo := repository.NewRepository[*Session](db, repository.ModelHandlers[*Session]{
		NewRecord: func() *Session { return &Session{} },
		GetID: func(s *Session) uuid.UUID {
			if s == nil {
				return uuid.Nil
			}
			return s.ID
		},
		SetID: func(s *Session, id uuid.UUID) {
			if s != nil {
				s.ID = id
			}
		},
	})

	return &sessions{
		Repository: repo,
		db:         db,
	}
}

func (r *sessions) Create(ctx context.Context, session *Session) (*Session, error) {
	return r.CreateTx(ctx, r.db, session)
}

func (r *sessions) CreateTx(ctx context.Context, tx bun.IDB, session *Session) (*Session, error) {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	return r.Repository.CreateTx(ctx, tx, session)
}

func (r *sessions) Revoke(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.RevokeTx(ctx, r.db, id, at)
}

func (r *sessions) RevokeTx(ctx context.Context, tx bun.IDB, id uuid.UUID, at time.Time) error {
	res, err := tx.NewRaw(`
		UPDATE "sessions" AS "sess"
		SET
			"revoked_at" = ?,
			"updated_at" = ?
		WHERE
			("sess".id = ?)
			AND "sess"."revoked_at" IS NULL;
	`, at, at, id).Exec(ctx)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	// Zero rows means the id is unknown or the session was already revoked.
	if rows == 0 {
		return ErrSessionNotLive
	}

	return nil
}

func (r *sessions) FindLiveByAccessToken(ctx context.Context, accessToken string, at time.Time) (*Session, error) {
	record := &Session{}

	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.access_token = ?", accessToken).
		Where("?TableAlias.revoked_at IS NULL").
		Where("?TableAlias.expires_at > ?", at).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

// FindLiveByRefreshToken checks revocation only; refresh expiry is enforced
// by the token's own exp claim.
func (r *sessions) FindLiveByRefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	record := &Session{}

	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.refresh_token = ?", refreshToken).
		Where("?TableAlias.revoked_at IS NULL").
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

// EnsureLive is the narrow liveness check used by HTTP middleware.
func (r *sessions) EnsureLive(ctx context.Context, accessToken string, at time.Time) error {
	session, err := r.FindLiveByAccessToken(ctx, accessToken, at)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrSessionNotLive
		}
		return err
	}

	if !session.IsLive(at) {
		return ErrSessionNotLive
	}

	return nil
}
