package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/noah-isme/mentor-site-api/internal/models"
	"github.com/noah-isme/mentor-site-api/internal/repository"
	"github.com/noah-isme/mentor-site-api/internal/service"
	"github.com/noah-isme/mentor-site-api/pkg/config"
	"github.com/noah-isme/mentor-site-api/pkg/database"
	"github.com/noah-isme/mentor-site-api/pkg/logger"
)

func main() {
	var (
		email    string
		password string
		fullName string
		role     string
		reset    bool
		timeout  time.Duration
	)

	flag.StringVar(&email, "email", "", "Admin email address")
	flag.StringVar(&password, "password", os.Getenv("ADMIN_PASSWORD"), "Admin password (defaults to $ADMIN_PASSWORD)")
	flag.StringVar(&fullName, "name", "Site Admin", "Display name")
	flag.StringVar(&role, "role", "ADMIN", "ADMIN or EDITOR")
	flag.BoolVar(&reset, "reset", false, "Reset the password of an existing account instead of creating one")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Overall timeout")
	flag.Parse()

	if email == "" || password == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer closeStore()

	auth := service.NewAuthService(repository.NewAdminUserRepository(store), repository.NewAuditRepository(store), nil, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
	})

	if reset {
		if err := auth.ResetPassword(ctx, email, password); err != nil {
			log.Fatalf("reset password: %v", err)
		}
		fmt.Printf("password reset for %s\n", email)
		return
	}

	user, err := auth.CreateAdmin(ctx, service.CreateAdminInput{
		Email:    email,
		Password: password,
		FullName: fullName,
		Role:     models.UserRole(strings.ToUpper(role)),
	})
	if err != nil {
		log.Fatalf("create admin: %v", err)
	}
	fmt.Printf("created %s %s (%s)\n", user.Role, user.Email, user.ID)
}

func openStore(ctx context.Context, cfg *config.Config) (repository.DocumentStore, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMongo:
		db, err := database.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewMongoDocumentStore(db), func() { _ = db.Client().Disconnect(context.Background()) }, nil
	case config.StoreDriverPostgres, "":
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := database.EnsureDocumentSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repository.NewPostgresDocumentStore(db), func() { _ = db.Close() }, nil
	default:
		return nil, nil, errors.New("create_admin needs a persistent store, got STORE_DRIVER=" + cfg.Store.Driver)
	}
}
