// Command seedusers creates the initial admin and staff desk accounts.
// Usage: go run ./cmd/seedusers [password]
// The optional password argument is shared by all seeded accounts; the
// default is "changeme123". Existing accounts are left untouched.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"deedflow/internal/config"
	"deedflow/internal/domain"
	"deedflow/internal/repository/postgres"
)

var seedAccounts = []struct {
	email    string
	fullName string
	role     domain.UserRole
}{
	{"admin@deedflow.local", "Administrator", domain.RoleAdmin},
	{"staff1@deedflow.local", "Form Review Desk", domain.RoleStaff1},
	{"staff2@deedflow.local", "Trustee Verification Desk", domain.RoleStaff2},
	{"staff3@deedflow.local", "Land Verification Desk", domain.RoleStaff3},
	{"staff4@deedflow.local", "Cross Verification Desk", domain.RoleStaff4},
	{"staff5@deedflow.local", "Final Authority Desk", domain.RoleStaff5},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	password := "changeme123"
	if len(os.Args) > 1 {
		password = os.Args[1]
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	repo := postgres.NewUserRepo(db)
	ctx := context.Background()

	for _, acct := range seedAccounts {
		if _, err := repo.GetByEmail(ctx, acct.email); err == nil {
			log.Printf("skipping %s: already exists", acct.email)
			continue
		}

		user := &domain.User{
			ID:           uuid.New(),
			Email:        acct.email,
			PasswordHash: string(hash),
			FullName:     acct.fullName,
			Role:         acct.role,
			IsActive:     true,
		}
		if err := repo.Create(ctx, user); err != nil {
			return fmt.Errorf("seeding %s: %w", acct.email, err)
		}
		log.Printf("created %s (%s)", acct.email, acct.role)
	}

	log.Println("seed complete")
	return nil
}
