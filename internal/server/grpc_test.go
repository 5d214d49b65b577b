package server

import (
	"testing"

	"github.com/Sorchess/picaton-rbac/internal/security"
)

func TestNew(t *testing.T) {
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	s := New(Deps{Tokens: tokens})
	if s == nil {
		t.Fatal("New returned nil")
	}
	if s.Registrar() == nil {
		t.Error("Registrar returned nil")
	}
	s.GracefulStop()
}
