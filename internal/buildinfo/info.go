// Package buildinfo holds version metadata injected at build time via
// -ldflags "-X github.com/davidmtz-dev/bancos-reader/internal/buildinfo.Version=...".
package buildinfo

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
