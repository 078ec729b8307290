package db

import (
	"fmt"
	"io"
	"io/fs"
	"strconv"
)

// RunMigrateCommand handles the 'migrate' subcommand.
func RunMigrateCommand(args []string, dbPath string, out io.Writer) error {
	if len(args) < 1 {
		PrintMigrateHelp(out)
		return fmt.Errorf("missing migrate action")
	}
	action := args[0]
	if action == "help" {
		PrintMigrateHelp(out)
		return nil
	}

	migrationsFS, err := getMigrationsFS()
	if err != nil {
		return err
	}

	// OpenDB leaves the schema alone; the actions below manage it.
	database, err := OpenDB(dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	switch action {
	case "up":
		if err := database.MigrateUp(migrationsFS); err != nil {
			return err
		}
		fmt.Fprintln(out, "✓ All migrations applied successfully")
		return printMigrateStatus(out, database, migrationsFS)

	case "down":
		if err := database.MigrateDown(migrationsFS); err != nil {
			return err
		}
		fmt.Fprintln(out, "✓ Migration rolled back successfully")
		return printMigrateStatus(out, database, migrationsFS)

	case "status":
		return printMigrateStatus(out, database, migrationsFS)

	case "version":
		if len(args) < 2 {
			return fmt.Errorf("usage: asha-report migrate version <version_number>")
		}
		v, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version number %q: %w", args[1], err)
		}
		if err := database.MigrateTo(migrationsFS, uint(v)); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Migrated to version %d successfully\n", v)
		return nil

	case "force":
		if len(args) < 2 {
			return fmt.Errorf("usage: asha-report migrate force <version_number>")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version number %q: %w", args[1], err)
		}
		if err := database.MigrateForce(migrationsFS, v); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Migration version forced to %d\n", v)
		return nil

	default:
		PrintMigrateHelp(out)
		return fmt.Errorf("unknown migrate action: %s", action)
	}
}

func printMigrateStatus(out io.Writer, database *DB, migrationsFS fs.FS) error {
	status, err := database.GetMigrationStatus(migrationsFS)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "=== Migration Status ===")
	fmt.Fprintf(out, "Current version: %d\n", status.Current)
	fmt.Fprintf(out, "Latest available: %d\n", status.Latest)
	fmt.Fprintf(out, "Dirty: %v\n", status.Dirty)

	switch {
	case status.Dirty:
		fmt.Fprintln(out, "\n⚠️  WARNING: Database is in a dirty state!")
		fmt.Fprintln(out, "A migration failed mid-execution. Inspect the database, then run:")
		fmt.Fprintln(out, "  asha-report migrate force <version>")
	case status.Pending():
		fmt.Fprintf(out, "⚠️  Database is %d version(s) behind. Run 'asha-report migrate up' to update.\n", status.Latest-status.Current)
	default:
		fmt.Fprintln(out, "✓ Database is up to date!")
	}
	return nil
}

// PrintMigrateHelp writes usage for the migrate subcommand.
func PrintMigrateHelp(out io.Writer) {
	fmt.Fprint(out, `Usage: asha-report migrate <action> [args]

Actions:
  up                 Apply all pending migrations
  down               Roll back the most recent migration
  status             Show current and latest migration versions
  version <n>        Migrate up or down to version n
  force <n>          Record version n without running migrations (recovery only)
  help               Show this message
`)
}
