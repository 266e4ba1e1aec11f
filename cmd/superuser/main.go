// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

// Command superuser promotes an already registered account to superuser and
// reactivates it.
//
// # Usage
//
//	superuser <email>
//
// Only DATABASE_URL is read (environment or .env). The member must sign up
// through the website first.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/wayneaws/studenthub/internal/platform/apperr"
	pgstore "github.com/wayneaws/studenthub/internal/platform/postgres"
	"github.com/wayneaws/studenthub/internal/users/admin"
)

type settings struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
}

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stderr, nil)).With(slog.String("app", "studenthub-superuser"))

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: superuser <email>")
		os.Exit(2)
	}

	if err := run(log, os.Args[1]); err != nil {
		var appErr *apperr.AppError
		if errors.As(err, &appErr) && appErr.Code == apperr.CodeNotFound {
			fmt.Fprintf(os.Stderr, "no account registered with %s; sign up first\n", os.Args[1])
			os.Exit(1)
		}
		log.Error("promotion_failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(log *slog.Logger, email string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("superuser_read_env_failed: %w", err)
	}

	var cfg settings
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("superuser_parse_env_failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	service := admin.NewService(admin.NewRepository(pool), nil, nil, time.Now)
	promotion, err := service.PromoteSuperuser(ctx, email)
	if err != nil {
		return err
	}

	account := promotion.Account
	if promotion.Unchanged {
		fmt.Printf("%s is already an active superuser\n", account.Email)
		return nil
	}

	fmt.Printf("promoted %s (@%s, %s) from %s to superuser\n",
		account.Email, account.Username, account.FullName, promotion.PreviousRole)
	return nil
}
