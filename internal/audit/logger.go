package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Sorchess/picaton-rbac/internal/audit/domain"
	auditrepo "github.com/Sorchess/picaton-rbac/internal/audit/repository"
)

// Recorder writes a single audit event with explicit action/resource. Used by
// the permission checker (denials) and the role service (mutations).
// LogEvent is best-effort: failures are logged and do not affect the caller.
type Recorder interface {
	LogEvent(ctx context.Context, companyID, userID, action, resource, metadata string)
}

// Logger implements Recorder using the audit repository.
type Logger struct {
	repo auditrepo.Repository
}

// NewLogger returns a Recorder that persists to repo.
func NewLogger(repo auditrepo.Repository) *Logger {
	return &Logger{repo: repo}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not
// returned.
func (l *Logger) LogEvent(ctx context.Context, companyID, userID, action, resource, metadata string) {
	if l == nil || l.repo == nil {
		return
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to log event %s/%s: %v", action, resource, err)
	}
}

// MultiRecorder fans one event out to several recorders, e.g. the database
// logger plus a telemetry emitter. Nil entries are skipped.
type MultiRecorder []Recorder

func (m MultiRecorder) LogEvent(ctx context.Context, companyID, userID, action, resource, metadata string) {
	for _, r := range m {
		if r != nil {
			r.LogEvent(ctx, companyID, userID, action, resource, metadata)
		}
	}
}
