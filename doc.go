// Package authflow provides role-scoped authentication primitives: credential
// verification, JWT access/refresh issuance, per-login session records, and an
// append-only audit/incident trail, plus the Bun repositories backing them.
//
// Login orchestration:
//   - Auther runs one login attempt end to end. It resolves the stored
//     AuthenticationRecord by (provider, provider_key, principal_type), resolves
//     the live principal through a per-type PrincipalDirectory, verifies the
//     password for local providers, then issues tokens, records a Session, and
//     appends an AuditLogEntry. Every failure branch opens a SecurityIncident
//     with the real cause while the caller only ever sees the generic
//     "Invalid credentials" / "Account is not active" errors.
//
// Audit and incident sinks:
//   - AuditSink and IncidentReporter are light-weight append emitters. They run
//     best-effort (errors are logged) so a degraded observability store can
//     never turn a decided login into a caller-visible failure. Bun-backed
//     implementations live in the repo_* files.
//
// Sessions:
//   - Every successful login inserts a distinct Session row; concurrent logins
//     by the same principal coexist. Sessions are revoked on logout or replaced
//     on refresh, and middleware/sessionguard rejects revoked or expired ones.
package authflow
