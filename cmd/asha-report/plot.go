package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/banshee-data/asha.report/internal/db"
	"github.com/banshee-data/asha.report/internal/fsutil"
	"github.com/banshee-data/asha.report/internal/indicators"
	"github.com/banshee-data/asha.report/internal/plot"
	"github.com/banshee-data/asha.report/internal/timeutil"
)

func handlePlot(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("plot", stderr)
	common := registerCommonFlags(fs)
	kindFlag := fs.String("kind", "", "Record kind: maternal, child or referral (required)")
	periodFlag := fs.String("period", "", "Reporting month YYYY-MM (default: current month)")
	region := fs.String("region", "", "Region to plot (default from config, else all)")
	outDir := fs.String("out", ".", "Output directory, inside the working or temp directory")
	spread := fs.Bool("spread", false, "Also plot the per-worker spread of each indicator")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := common.validate(); err != nil {
		return err
	}

	kind, err := indicators.ParseKind(*kindFlag)
	if err != nil {
		return err
	}
	cfg, err := common.loadConfig()
	if err != nil {
		return err
	}
	period := indicators.PeriodOf(timeutil.InLocation(timeutil.RealClock{}, cfg.GetLocation()).Now())
	if *periodFlag != "" {
		if period, err = indicators.ParsePeriod(*periodFlag); err != nil {
			return err
		}
	}
	if *region == "" {
		*region = cfg.GetDefaultRegion()
	}
	fsys := fsutil.OSFileSystem{}

	var store *db.DB
	if *common.source == "sqlite" {
		if store, err = db.NewDB(*common.dbPath); err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer store.Close()
	}
	source := common.dataSource(cfg, store)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.GetRemoteTimeout()+5*time.Second)
	defer cancel()

	scope := indicators.Scope{Region: *region}
	records, err := source.FetchRecords(ctx, kind, scope, period)
	if err != nil {
		return fmt.Errorf("failed to fetch records: %w", err)
	}
	var targets *indicators.TargetSet
	if *region != "" {
		if targets, err = source.FetchTargets(ctx, *region, kind, period); err != nil {
			return fmt.Errorf("failed to fetch targets: %w", err)
		}
	}

	defs := cfg.Definitions(kind)
	inds := indicators.Build(defs, indicators.Aggregate(kind, records), targets)

	label := *region
	if label == "" {
		label = "all regions"
	}
	title := fmt.Sprintf("%s indicators, %s, %s", kind, label, period)

	p, err := plot.Coverage(title, inds)
	if err != nil {
		return err
	}
	path := plot.DefaultFilename(*outDir, *region, kind, period)
	if err := plot.SavePNG(fsys, p, path); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s (%d records)\n", path, len(records))

	if *spread {
		cards := indicators.Scorecards(kind, defs, records, targets)
		sp, err := plot.Spread(title+" by worker", defs, cards)
		if err != nil {
			return err
		}
		spreadPath := strings.TrimSuffix(path, ".png") + "-spread.png"
		if err := plot.SavePNG(fsys, sp, spreadPath); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote %s (%d workers)\n", spreadPath, len(cards))
	}
	return nil
}
