package interceptors

import (
	"context"
	"log"
	"net"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"

	"github.com/Sorchess/picaton-rbac/internal/audit/domain"
	auditrepo "github.com/Sorchess/picaton-rbac/internal/audit/repository"
)

// AuditUnary returns a unary server interceptor that records an audit log entry after each RPC.
// skipMethods is the set of full method names to not audit (e.g. the health check).
// Create is best-effort: failures are logged and do not fail the RPC. Only writes when
// company_id is set (authenticated context).
func AuditUnary(auditRepo auditrepo.Repository, skipMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if skipMethods[info.FullMethod] {
			return resp, err
		}
		companyID, _ := GetCompanyID(ctx)
		if companyID == "" {
			return resp, err
		}
		userID, _ := GetUserID(ctx)
		action, resource := parseFullMethod(info.FullMethod)
		entry := &domain.AuditLog{
			ID:        uuid.New().String(),
			CompanyID: companyID,
			UserID:    userID,
			Action:    action,
			Resource:  resource,
			Metadata:  "ip=" + ClientIP(ctx),
			CreatedAt: time.Now().UTC(),
		}
		if createErr := auditRepo.Create(ctx, entry); createErr != nil {
			log.Printf("audit: failed to create audit log: %v", createErr)
		}
		return resp, err
	}
}

// parseFullMethod splits a gRPC full method name ("/pkg.RoleService/CreateRole")
// into a snake_case action ("create_role") and a resource ("roles").
func parseFullMethod(fullMethod string) (action, resource string) {
	fullMethod = strings.TrimPrefix(fullMethod, "/")
	service, method, ok := strings.Cut(fullMethod, "/")
	if !ok {
		return snakeCase(fullMethod), "unknown"
	}
	if i := strings.LastIndex(service, "."); i >= 0 {
		service = service[i+1:]
	}
	service = strings.TrimSuffix(service, "Service")
	resource = strings.ToLower(service) + "s"
	return snakeCase(method), resource
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ClientIP returns the client IP from gRPC metadata (x-forwarded-for, x-real-ip) or peer, or "unknown".
func ClientIP(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get("x-forwarded-for"); len(vals) > 0 {
			if s := strings.TrimSpace(vals[0]); s != "" {
				if i := strings.Index(s, ","); i > 0 {
					s = strings.TrimSpace(s[:i])
				}
				return s
			}
		}
		if vals := md.Get("x-real-ip"); len(vals) > 0 {
			if s := strings.TrimSpace(vals[0]); s != "" {
				return s
			}
		}
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		if host, _, err := net.SplitHostPort(p.Addr.String()); err == nil {
			return host
		}
		return p.Addr.String()
	}
	return "unknown"
}
