// Command migrate manages the lireddit PostgreSQL schema.
//
//	migrate up            apply pending SQL migrations
//	migrate auto          run GORM AutoMigrate for users and posts
//	migrate status        print the schema plan and pending migrations
//	migrate down VERSION  revert one SQL migration
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"lireddit/internal/config"
	"lireddit/internal/database"
	"lireddit/internal/middleware"

	"gorm.io/gorm"
)

type command struct {
	summary string
	run     func(ctx context.Context, db *gorm.DB, cfg *config.Config, args []string) error
}

var commands = map[string]command{
	"up":     {"apply pending SQL migrations", migrateUp},
	"auto":   {"run GORM AutoMigrate (refused in production unless DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true)", migrateAuto},
	"status": {"show DB_SCHEMA_MODE (hybrid|sql|auto) and pending migrations", migrateStatus},
	"down":   {"revert one SQL migration: down VERSION", migrateDown},
}

var order = []string{"up", "auto", "status", "down"}

func main() {
	flag.Usage = printUsage
	flag.Parse()

	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		printUsage()
		os.Exit(2)
	}

	if err := execute(cmd, flag.Args()[1:]); err != nil {
		log.Fatalf("migrate %s: %v", flag.Arg(0), err)
	}
}

func printUsage() {
	fmt.Fprintln(flag.CommandLine.Output(), "usage: migrate <command> [args]")
	for _, name := range order {
		fmt.Fprintf(flag.CommandLine.Output(), "  %-7s %s\n", name, commands[name].summary)
	}
}

func execute(cmd command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	middleware.ConfigureLogger(cfg.Env)

	ctx := context.Background()
	db, err := database.ConnectWithOptions(ctx, cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return err
	}
	return cmd.run(ctx, db, cfg, args)
}

func migrateUp(ctx context.Context, db *gorm.DB, _ *config.Config, _ []string) error {
	ran, err := database.NewMigrator(db, database.Migrations()).Up(ctx)
	if err != nil {
		return err
	}
	log.Printf("applied %d migration(s)", ran)
	return nil
}

func migrateAuto(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	cfg.DBSchemaMode = database.SchemaModeAuto
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return err
	}
	log.Println("users and posts tables auto-migrated")
	return nil
}

func migrateStatus(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	status, err := database.GetSchemaStatus(ctx, db, cfg)
	if err != nil {
		return err
	}
	log.Printf("env=%s mode=%s sql=%t auto=%t", status.Environment, status.Mode, status.SQL, status.AutoMigrate)
	if !status.SQL {
		return nil
	}
	log.Printf("applied versions: %v", status.Applied)
	if len(status.Pending) == 0 {
		log.Println("no pending migrations")
	}
	for _, m := range status.Pending {
		log.Printf("pending %s", m)
	}
	return nil
}

func migrateDown(ctx context.Context, db *gorm.DB, _ *config.Config, args []string) error {
	if len(args) != 1 {
		return errors.New("expected exactly one VERSION argument")
	}
	version, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("VERSION %q is not a number", args[0])
	}
	if err := database.RollbackMigration(ctx, db, version); err != nil {
		return err
	}
	log.Printf("reverted migration %06d", version)
	return nil
}
