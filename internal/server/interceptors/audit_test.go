package interceptors

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc"

	auditdomain "github.com/Sorchess/picaton-rbac/internal/audit/domain"
)

// mockAuditRepo implements auditrepo.Repository for interceptor tests.
type mockAuditRepo struct {
	entries []*auditdomain.AuditLog
	err     error
}

func (m *mockAuditRepo) Create(ctx context.Context, a *auditdomain.AuditLog) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, a)
	return nil
}

func (m *mockAuditRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int32) ([]*auditdomain.AuditLog, error) {
	return nil, nil
}

func okHandler(ctx context.Context, req interface{}) (interface{}, error) {
	return "success", nil
}

func TestAuditUnary_RecordsEntry(t *testing.T) {
	repo := &mockAuditRepo{}
	interceptor := AuditUnary(repo, nil)

	ctx := WithActor(context.Background(), "user-1", "company-1")
	resp, err := interceptor(ctx, "request", &grpc.UnaryServerInfo{
		FullMethod: "/picaton.RoleService/CreateRole",
	}, okHandler)
	if err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if resp != "success" {
		t.Errorf("response = %v", resp)
	}
	if len(repo.entries) != 1 {
		t.Fatalf("got %d audit entries, want 1", len(repo.entries))
	}
	entry := repo.entries[0]
	if entry.CompanyID != "company-1" || entry.UserID != "user-1" {
		t.Errorf("entry scope = %s/%s", entry.CompanyID, entry.UserID)
	}
	if entry.Action != "create_role" {
		t.Errorf("action = %q, want create_role", entry.Action)
	}
	if entry.Resource != "roles" {
		t.Errorf("resource = %q, want roles", entry.Resource)
	}
}

func TestAuditUnary_SkipMethod(t *testing.T) {
	repo := &mockAuditRepo{}
	interceptor := AuditUnary(repo, map[string]bool{
		"/test.Service/HealthCheck": true,
	})

	ctx := WithActor(context.Background(), "user-1", "company-1")
	if _, err := interceptor(ctx, "request", &grpc.UnaryServerInfo{
		FullMethod: "/test.Service/HealthCheck",
	}, okHandler); err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if len(repo.entries) != 0 {
		t.Errorf("got %d audit entries, want 0", len(repo.entries))
	}
}

func TestAuditUnary_Unauthenticated(t *testing.T) {
	repo := &mockAuditRepo{}
	interceptor := AuditUnary(repo, nil)

	if _, err := interceptor(context.Background(), "request", &grpc.UnaryServerInfo{
		FullMethod: "/test.Service/Method",
	}, okHandler); err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if len(repo.entries) != 0 {
		t.Errorf("got %d audit entries without company scope, want 0", len(repo.entries))
	}
}

func TestAuditUnary_RepoFailureDoesNotFailRPC(t *testing.T) {
	repo := &mockAuditRepo{err: errors.New("db down")}
	interceptor := AuditUnary(repo, nil)

	ctx := WithActor(context.Background(), "user-1", "company-1")
	resp, err := interceptor(ctx, "request", &grpc.UnaryServerInfo{
		FullMethod: "/test.Service/Method",
	}, okHandler)
	if err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if resp != "success" {
		t.Errorf("response = %v", resp)
	}
}

func TestAuditUnary_HandlerErrorStillAudited(t *testing.T) {
	repo := &mockAuditRepo{}
	interceptor := AuditUnary(repo, nil)

	wantErr := errors.New("boom")
	failing := func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, wantErr
	}
	ctx := WithActor(context.Background(), "user-1", "company-1")
	_, err := interceptor(ctx, "request", &grpc.UnaryServerInfo{
		FullMethod: "/test.Service/Method",
	}, failing)
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
	if len(repo.entries) != 1 {
		t.Errorf("got %d audit entries, want 1", len(repo.entries))
	}
}

func TestParseFullMethod(t *testing.T) {
	testCases := []struct {
		full     string
		action   string
		resource string
	}{
		{"/picaton.v1.RoleService/CreateRole", "create_role", "roles"},
		{"/picaton.v1.MemberService/AssignRole", "assign_role", "members"},
		{"no-slash", "no-slash", "unknown"},
	}
	for _, tc := range testCases {
		action, resource := parseFullMethod(tc.full)
		if action != tc.action || resource != tc.resource {
			t.Errorf("parseFullMethod(%q) = (%q, %q), want (%q, %q)", tc.full, action, resource, tc.action, tc.resource)
		}
	}
}
