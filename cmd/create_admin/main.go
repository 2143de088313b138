package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Skotchmaster/vayez/internal/config"
	"github.com/Skotchmaster/vayez/internal/repo"
	"github.com/Skotchmaster/vayez/internal/service"
	pkgdb "github.com/Skotchmaster/vayez/pkg/db"
	"github.com/Skotchmaster/vayez/pkg/logging"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("usage: go run ./cmd/create_admin <email> <password> [first name] [last name]")
		os.Exit(2)
	}
	email, password := os.Args[1], os.Args[2]
	firstName, lastName := "Admin", "Admin"
	if len(os.Args) > 3 {
		firstName = os.Args[3]
	}
	if len(os.Args) > 4 {
		lastName = os.Args[4]
	}

	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ctx = logging.IntoContext(ctx, logging.New(cfg.LogLevel))

	db, err := pkgdb.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer pkgdb.Close(db)

	r := &repo.GormRepo{DB: db}
	if err := r.Migrate(ctx); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}
	if err := r.EnsureRoles(ctx, cfg.Roles); err != nil {
		log.Fatalf("failed to seed roles: %v", err)
	}

	svc := &service.AuthService{Repo: r, BcryptCost: cfg.BcryptCost}
	account, err := svc.BootstrapAdmin(ctx, email, firstName, lastName, password)
	if err != nil {
		if errors.Is(err, service.ErrConflict) {
			fmt.Printf("account %s already exists\n", email)
			return
		}
		log.Fatalf("failed to create admin: %s", err)
	}

	fmt.Printf("created admin %s id=%s\n", account.Email, account.ID)
}
