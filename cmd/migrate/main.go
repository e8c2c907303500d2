// Command migrate manages the database schema and seeds administrator
// accounts, which cannot be created through the public API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/observability"
	"github.com/spec-kit/grievance-service/internal/persistence"
	"github.com/spec-kit/grievance-service/internal/repository"
	"github.com/spec-kit/grievance-service/internal/service"
)

type options struct {
	command     string
	target      int64
	createAdmin bool
	name        string
	email       string
	password    string
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()
	if !pg.Enabled() {
		return persistence.ErrNoDSN
	}

	migrator, err := persistence.NewMigrator(pg.Pool, logger)
	if err != nil {
		return err
	}

	switch opts.command {
	case "up":
		err = migrator.Up(ctx)
	case "status":
		err = migrator.Status(ctx)
	case "down":
		err = migrator.Down(ctx, opts.target)
	}
	if err != nil {
		return err
	}

	if !opts.createAdmin {
		return nil
	}
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo: repository.NewUserRepository(pg.Pool),
		Logger:   logger,
	})
	admin, err := authService.CreateAdmin(ctx, opts.name, opts.email, opts.password)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	logger.Info("administrator created", zap.String("user_id", admin.ID), zap.String("email", admin.Email))
	return nil
}

func parseFlags(args []string) (options, error) {
	var opts options
	flagSet := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	flagSet.StringVarP(&opts.command, "command", "c", "up", "migration command: up, status, down or none")
	flagSet.Int64Var(&opts.target, "target", 0, "version to roll back to with --command down (0 rolls back one)")
	flagSet.BoolVar(&opts.createAdmin, "create-admin", false, "create an administrator account after migrating")
	flagSet.StringVar(&opts.name, "name", "", "administrator display name")
	flagSet.StringVar(&opts.email, "email", "", "administrator email")
	flagSet.StringVar(&opts.password, "password", os.Getenv("ADMIN_PASSWORD"), "administrator password (default $ADMIN_PASSWORD)")

	if err := flagSet.Parse(args); err != nil {
		return opts, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return opts, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	switch opts.command {
	case "up", "status", "down", "none":
	default:
		return opts, fmt.Errorf("unknown --command %q", opts.command)
	}
	if opts.createAdmin && (opts.name == "" || opts.email == "" || opts.password == "") {
		return opts, errors.New("--create-admin requires --name, --email and --password")
	}
	return opts, nil
}
