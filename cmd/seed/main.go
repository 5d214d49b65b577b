// seed inserts development sample data for local testing: a dev company with
// its system roles, a default custom role, and three members. Idempotent:
// skips inserts if the dev company already has its system roles.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/Sorchess/picaton-rbac/internal/audit"
	auditrepo "github.com/Sorchess/picaton-rbac/internal/audit/repository"
	"github.com/Sorchess/picaton-rbac/internal/config"
	"github.com/Sorchess/picaton-rbac/internal/db"
	memberdomain "github.com/Sorchess/picaton-rbac/internal/member/domain"
	memberrepo "github.com/Sorchess/picaton-rbac/internal/member/repository"
	"github.com/Sorchess/picaton-rbac/internal/permission"
	"github.com/Sorchess/picaton-rbac/internal/platform/rbac"
	rolerepo "github.com/Sorchess/picaton-rbac/internal/role/repository"
	roleservice "github.com/Sorchess/picaton-rbac/internal/role/service"
)

const (
	devCompanyID   = "dev-company-001"
	devOwnerUserID = "dev-user-001"
	devAdminUserID = "dev-user-002"
	devPlainUserID = "dev-user-003"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	roles := rolerepo.NewPostgresRepository(conn)
	members := memberrepo.NewPostgresRepository(conn)
	audits := auditrepo.NewPostgresRepository(conn)

	checker := rbac.NewChecker(members, roles, audit.NewLogger(audits))
	engine := roleservice.NewService(roles, members, checker, audit.NewLogger(audits), cfg.MaxCustomRoles)

	ctx := context.Background()

	existing, err := roles.GetOwnerRole(ctx, devCompanyID)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (dev company has system roles). Skipping.")
		os.Exit(0)
	}

	ownerRole, adminRole, err := engine.InitializeCompanyRoles(ctx, devCompanyID)
	if err != nil {
		log.Fatalf("initialize company roles: %v", err)
	}

	now := time.Now().UTC()
	seedMembers := []*memberdomain.Member{
		{ID: uuid.New().String(), CompanyID: devCompanyID, UserID: devOwnerUserID, RoleID: ownerRole.ID, Position: "CEO", JoinedAt: now, UpdatedAt: now},
		{ID: uuid.New().String(), CompanyID: devCompanyID, UserID: devAdminUserID, RoleID: adminRole.ID, Position: "COO", JoinedAt: now, UpdatedAt: now},
		{ID: uuid.New().String(), CompanyID: devCompanyID, UserID: devPlainUserID, JoinedAt: now, UpdatedAt: now},
	}
	for _, m := range seedMembers {
		if err := members.Create(ctx, m); err != nil {
			log.Fatalf("create member %s: %v", m.UserID, err)
		}
	}

	contributor, err := engine.CreateRole(ctx, devCompanyID, devOwnerUserID, roleservice.CreateRoleInput{
		Name:        "Contributor",
		Color:       "#33d17a",
		Permissions: permission.MemberDefaults().Slice(),
		Default:     true,
	})
	if err != nil {
		log.Fatalf("create contributor role: %v", err)
	}

	if _, err := engine.AssignRole(ctx, devCompanyID, devOwnerUserID, devPlainUserID, contributor.ID); err != nil {
		log.Fatalf("assign contributor role: %v", err)
	}

	log.Println("Seed completed successfully.")
	log.Printf("Company %s: Owner=%s Admin=%s Contributor=%s", devCompanyID, ownerRole.ID, adminRole.ID, contributor.ID)
}
