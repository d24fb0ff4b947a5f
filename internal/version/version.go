// Package version exposes the build version of the application.
package version

// Version is overridden at build time with
// -ldflags "-X github.com/ndewijer/portfolio-radar/internal/version.Version=x.y.z".
var Version = "dev"
