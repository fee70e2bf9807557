// Command admintoken signs a moderator JWT for an admin account.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/retroconnect/idverify/internal/account"
	"github.com/retroconnect/idverify/internal/admin"
	"github.com/retroconnect/idverify/internal/config"
	"github.com/retroconnect/idverify/internal/database"
	"github.com/retroconnect/idverify/internal/domain"
	"github.com/retroconnect/idverify/internal/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	email := flag.String("email", "", "admin account e-mail")
	role := flag.String("role", admin.RoleModerator, "token role: moderator or admin")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	// The password comes from the environment so it stays out of shell history.
	password := os.Getenv("ADMINTOKEN_PASSWORD")
	if *email == "" || password == "" {
		return fmt.Errorf("-email and ADMINTOKEN_PASSWORD are required")
	}
	if *role != admin.RoleModerator && *role != admin.RoleAdmin {
		return fmt.Errorf("invalid role: %s (use: %s, %s)", *role, admin.RoleModerator, admin.RoleAdmin)
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := cfg.NewLogger(os.Stderr)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, database.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	accounts := account.NewService(repository.NewUserRepository(pool), logger)
	user, err := accounts.Authenticate(ctx, *email, password)
	if err != nil {
		return err
	}
	if user.Role != domain.UserRoleAdmin {
		return domain.ErrForbidden.WithMessage("only admin accounts can issue moderator tokens")
	}

	token, err := admin.NewJWTService(cfg.AdminJWTSecret, cfg.AdminJWTIssuer, *ttl).
		GenerateToken(user.ID, user.Email, *role)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}

	logger.Info("moderator token issued", "user_id", user.ID, "role", *role, "ttl", ttl.String())
	fmt.Println(token)
	return nil
}
