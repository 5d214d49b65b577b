package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/Sorchess/picaton-rbac/internal/audit"
)

// NewAuditEmitter returns an audit.Recorder that forwards audit events as OTel
// log records via the given LoggerProvider, so role mutations and permission
// denials show up in the collector alongside traces. If provider is nil, a
// no-op recorder is returned.
func NewAuditEmitter(provider *sdklog.LoggerProvider) audit.Recorder {
	if provider == nil {
		return noopRecorder{}
	}
	return &auditEmitter{logger: provider.Logger("picaton.audit")}
}

type noopRecorder struct{}

func (noopRecorder) LogEvent(context.Context, string, string, string, string, string) {}

type auditEmitter struct {
	logger otellog.Logger
}

// LogEvent emits one log record per audit event. Best-effort by contract.
func (e *auditEmitter) LogEvent(ctx context.Context, companyID, userID, action, resource, metadata string) {
	rec := otellog.Record{}
	rec.SetTimestamp(time.Now().UTC())
	rec.SetBody(otellog.StringValue(action))
	if companyID != "" {
		rec.AddAttributes(otellog.String("company_id", companyID))
	}
	if userID != "" {
		rec.AddAttributes(otellog.String("user_id", userID))
	}
	if resource != "" {
		rec.AddAttributes(otellog.String("resource", resource))
	}
	if metadata != "" {
		rec.AddAttributes(otellog.String("metadata", metadata))
	}
	e.logger.Emit(ctx, rec)
}
