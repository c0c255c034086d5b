package authflow

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Incidents is the SecurityIncident repository. Login only ever appends; the
// status mutation belongs to a separate incident-management workflow.
type Incidents interface {
	Open(ctx context.Context, incident *SecurityIncident) (*SecurityIncident, error)
	OpenTx(ctx context.Context, tx bun.IDB, incident *SecurityIncident) (*SecurityIncident, error)
	Report(ctx context.Context, incident SecurityIncident) error
}

type incidents struct {
	repo repository.Repository[*SecurityIncident]
	db   *bun.DB
}

var (
	_ Incidents        = (*incidents)(nil)
	_ IncidentReporter = (*incidents)(nil)
)

func NewIncidentsRepository(db *bun.DB) Incidents {
	repo := repository.NewRepository[*SecurityIncident](db, repository.ModelHandlers[*SecurityIncident]{
		NewRecord: func() *SecurityIncident { return &SecurityIncident{} },
		GetID: func(i *SecurityIncident) uuid.UUID {
			if i == nil {
				return uuid.Nil
			}
			return i.ID
		},
		SetID: func(i *SecurityIncident, id uuid.UUID) {
			if i != nil {
				i.ID = id
			}
		},
	})

	return &incidents{
		repo: repo,
		db:   db,
	}
}

func (r *incidents) Open(ctx context.Context, incident *SecurityIncident) (*SecurityIncident, error) {
	return r.OpenTx(ctx, r.db, incident)
}

func (r *incidents) OpenTx(ctx context.Context, tx bun.IDB, incident *SecurityIncident) (*SecurityIncident, error) {
	if incident.ID == uuid.Nil {
		incident.ID = uuid.New()
	}
	if incident.Status == "" {
		incident.Status = IncidentStatusOpen
	}
	if incident.Severity == "" {
		incident.Severity = IncidentSeverityMedium
	}
	if incident.OrganizationScope == "" {
		incident.OrganizationScope = IncidentScopeSystem
	}
	return r.repo.CreateTx(ctx, tx, incident)
}

// Report implements IncidentReporter so the repository can be wired straight
// into Auther.WithIncidentReporter.
func (r *incidents) Report(ctx context.Context, incident SecurityIncident) error {
	_, err := r.Open(ctx, &incident)
	return err
}
