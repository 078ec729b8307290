package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/banshee-data/asha.report/internal/version"
)

// errUsage marks errors that should be followed by the usage text.
var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			printUsage(os.Stderr)
		}
		log.Fatalf("asha-report: %v", err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: missing command", errUsage)
	}

	command, rest := args[0], args[1:]
	switch command {
	case "serve":
		return handleServe(rest, stderr)
	case "migrate":
		return handleMigrate(rest, stdout, stderr)
	case "plot":
		return handlePlot(rest, stdout, stderr)
	case "version":
		fmt.Fprintf(stdout, "asha-report version %s (git %s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return nil
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `asha-report - indicator aggregation and scoring for ASHA worker records

Usage: asha-report <command> [options]

Commands:
  serve      Run the HTTP API
  migrate    Manage the database schema (up, down, status, version N, force N)
  plot       Render a coverage chart PNG for one kind, period and region
  version    Show version information
  help       Show this help message

Run 'asha-report <command> -h' for the options of a command.
`)
}

// newFlagSet returns a FlagSet that reports errors instead of exiting, so
// run can be exercised from tests.
func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}
