// Package version holds build metadata set with -ldflags -X, for example
//
//	go build -ldflags "-X github.com/banshee-data/asha.report/internal/version.Version=1.2.0" ./cmd/asha-report
package version

var (
	Version   = "dev"
	GitSHA    = "unknown"
	BuildTime = "unknown"
)
