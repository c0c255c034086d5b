package authflow

import (
	"context"
)

// AuditSink appends audit entries for successful security-relevant actions.
// Sinks run best-effort: a Record error is logged by the caller and never
// overrides the authentication result.
type AuditSink interface {
	Record(ctx context.Context, entry AuditLogEntry) error
}

// AuditSinkFunc adapts a function to the AuditSink interface.
type AuditSinkFunc func(ctx context.Context, entry AuditLogEntry) error

// Record implements AuditSink.
func (f AuditSinkFunc) Record(ctx context.Context, entry AuditLogEntry) error {
	if f == nil {
		return nil
	}
	return f(ctx, entry)
}

type noopAuditSink struct{}

func (noopAuditSink) Record(context.Context, AuditLogEntry) error {
	return nil
}

func normalizeAuditSink(s AuditSink) AuditSink {
	if s == nil {
		return noopAuditSink{}
	}
	return s
}

// IncidentReporter opens a security incident for every failure branch of a
// login attempt. Same best-effort contract as AuditSink.
type IncidentReporter interface {
	Report(ctx context.Context, incident SecurityIncident) error
}

// IncidentReporterFunc adapts a function to the IncidentReporter interface.
type IncidentReporterFunc func(ctx context.Context, incident SecurityIncident) error

// Report implements IncidentReporter.
func (f IncidentReporterFunc) Report(ctx context.Context, incident SecurityIncident) error {
	if f == nil {
		return nil
	}
	return f(ctx, incident)
}

type noopIncidentReporter struct{}

func (noopIncidentReporter) Report(context.Context, SecurityIncident) error {
	return nil
}

func normalizeIncidentReporter(r IncidentReporter) IncidentReporter {
	if r == nil {
		return noopIncidentReporter{}
	}
	return r
}
