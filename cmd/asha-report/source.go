package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/banshee-data/asha.report/internal/api"
	"github.com/banshee-data/asha.report/internal/config"
	"github.com/banshee-data/asha.report/internal/db"
	"github.com/banshee-data/asha.report/internal/httputil"
	"github.com/banshee-data/asha.report/internal/remote"
)

// commonFlags are shared by the commands that read indicator data.
type commonFlags struct {
	dbPath     *string
	configPath *string
	source     *string
	remoteURL  *string
	remoteKey  *string
}

func registerCommonFlags(fs *flag.FlagSet) *commonFlags {
	return &commonFlags{
		dbPath:     fs.String("db", "asha.db", "Path to the SQLite database file"),
		configPath: fs.String("config", "", "Indicator config JSON (default: built-in thresholds)"),
		source:     fs.String("source", "sqlite", "Where records are read from: sqlite or remote"),
		remoteURL:  fs.String("remote-url", "", "PostgREST base URL for -source remote"),
		remoteKey:  fs.String("remote-key", "", "PostgREST API key for -source remote"),
	}
}

// validate checks flag combinations before anything is opened.
func (f *commonFlags) validate() error {
	switch *f.source {
	case "sqlite":
		return nil
	case "remote":
		if strings.TrimSpace(*f.remoteURL) == "" {
			return fmt.Errorf("-remote-url is required with -source remote")
		}
		return nil
	default:
		return fmt.Errorf("unknown -source %q (valid: sqlite, remote)", *f.source)
	}
}

func (f *commonFlags) loadConfig() (*config.IndicatorConfig, error) {
	if *f.configPath == "" {
		return config.EmptyIndicatorConfig(), nil
	}
	return config.LoadIndicatorConfig(*f.configPath)
}

// dataSource returns the source selected by -source.
func (f *commonFlags) dataSource(cfg *config.IndicatorConfig, store *db.DB) api.Source {
	if *f.source != "remote" {
		return store
	}
	hc := httputil.NewStandardClient(cfg.GetRemoteTimeout())
	return remote.NewClient(*f.remoteURL, *f.remoteKey, hc)
}
