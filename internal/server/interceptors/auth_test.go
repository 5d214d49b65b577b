package interceptors

import (
	"context"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/Sorchess/picaton-rbac/internal/security"
)

func newAuthInterceptor(t *testing.T, publicMethods map[string]bool) (grpc.UnaryServerInterceptor, *security.TokenProvider) {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	return AuthUnary(tokens, publicMethods), tokens
}

func TestAuthUnary_PublicMethod(t *testing.T) {
	interceptor, _ := newAuthInterceptor(t, map[string]bool{
		"/test.Service/PublicMethod": true,
	})

	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return "success", nil
	}
	resp, err := interceptor(context.Background(), "request", &grpc.UnaryServerInfo{
		FullMethod: "/test.Service/PublicMethod",
	}, handler)
	if err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if resp != "success" {
		t.Errorf("response = %v, want %q", resp, "success")
	}
}

func TestAuthUnary_ProtectedMethod_NoToken(t *testing.T) {
	interceptor, _ := newAuthInterceptor(t, nil)

	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return "success", nil
	}
	_, err := interceptor(context.Background(), "request", &grpc.UnaryServerInfo{
		FullMethod: "/test.Service/ProtectedMethod",
	}, handler)
	if err == nil {
		t.Fatal("expected error for missing token")
	}
	st, ok := status.FromError(err)
	if !ok {
		t.Fatalf("error is not a gRPC status: %v", err)
	}
	if st.Code() != codes.Unauthenticated {
		t.Errorf("status code = %v, want %v", st.Code(), codes.Unauthenticated)
	}
}

func TestAuthUnary_ProtectedMethod_ValidToken(t *testing.T) {
	interceptor, tokens := newAuthInterceptor(t, nil)

	access, _, _, err := tokens.IssueAccess("user-1", "company-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(
		"authorization", "Bearer "+access,
	))

	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		userID, ok := GetUserID(ctx)
		if !ok || userID != "user-1" {
			t.Errorf("GetUserID = (%q, %v), want (user-1, true)", userID, ok)
		}
		companyID, ok := GetCompanyID(ctx)
		if !ok || companyID != "company-1" {
			t.Errorf("GetCompanyID = (%q, %v), want (company-1, true)", companyID, ok)
		}
		return "success", nil
	}
	if _, err := interceptor(ctx, "request", &grpc.UnaryServerInfo{
		FullMethod: "/test.Service/ProtectedMethod",
	}, handler); err != nil {
		t.Fatalf("interceptor: %v", err)
	}
}

func TestAuthUnary_ProtectedMethod_InvalidToken(t *testing.T) {
	interceptor, _ := newAuthInterceptor(t, nil)

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(
		"authorization", "Bearer not-a-token",
	))
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return "success", nil
	}
	_, err := interceptor(ctx, "request", &grpc.UnaryServerInfo{
		FullMethod: "/test.Service/ProtectedMethod",
	}, handler)
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated {
		t.Fatalf("err = %v, want Unauthenticated", err)
	}
}

func TestAuthUnary_PublicMethod_InvalidTokenStillServed(t *testing.T) {
	interceptor, _ := newAuthInterceptor(t, map[string]bool{
		"/test.Service/PublicMethod": true,
	})

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(
		"authorization", "Bearer not-a-token",
	))
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return "success", nil
	}
	resp, err := interceptor(ctx, "request", &grpc.UnaryServerInfo{
		FullMethod: "/test.Service/PublicMethod",
	}, handler)
	if err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if resp != "success" {
		t.Errorf("response = %v, want %q", resp, "success")
	}
}

func TestExtractBearer(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		want  string
	}{
		{"standard", "Bearer abc123", "abc123"},
		{"lowercase", "bearer abc123", "abc123"},
		{"padded", "  Bearer abc123  ", "abc123"},
		{"no prefix", "abc123", ""},
		{"empty", "", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			if tc.value != "" {
				ctx = metadata.NewIncomingContext(ctx, metadata.Pairs("authorization", tc.value))
			}
			if got := extractBearer(ctx); got != tc.want {
				t.Errorf("extractBearer = %q, want %q", got, tc.want)
			}
		})
	}
}
