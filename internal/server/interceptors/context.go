package interceptors

import "context"

type contextKey struct{ name string }

var (
	userIDKey    = contextKey{"user_id"}
	companyIDKey = contextKey{"company_id"}
)

// WithActor returns a context with user_id and company_id set. Handlers and
// services can read these via GetUserID and GetCompanyID.
func WithActor(ctx context.Context, userID, companyID string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, companyIDKey, companyID)
	return ctx
}

// GetUserID returns the user_id from context and true if set; otherwise "", false.
func GetUserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok
}

// GetCompanyID returns the company_id from context and true if set; otherwise "", false.
func GetCompanyID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(companyIDKey).(string)
	return v, ok
}
