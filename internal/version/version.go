// Package version exposes the build version, overridable with
// -ldflags "-X github.com/ndewijer/mf-folio-backend/internal/version.Version=v1.2.3".
package version

// Version is the application version.
var Version = "dev"
