package models

import "strings"

// NotAvailable stands in for build metadata that was not injected.
const NotAvailable = "N/A"

// HealthStatus is the body of the health endpoint.
type HealthStatus struct {
	Status string `json:"status"`
}

// AppBuildInfo is the build metadata injected into binaries with -ldflags.
type AppBuildInfo struct {
	Version string
	Date    string
	Commit  string
}

// NewAppBuildInfo returns build info with every blank value replaced by
// [NotAvailable].
func NewAppBuildInfo(version, date, commit string) AppBuildInfo {
	return AppBuildInfo{
		Version: orNotAvailable(version),
		Date:    orNotAvailable(date),
		Commit:  orNotAvailable(commit),
	}
}

// String renders the build info the way both binaries print it on start.
func (a AppBuildInfo) String() string {
	return "Build version: " + a.Version + "\n" +
		"Build date: " + a.Date + "\n" +
		"Build commit: " + a.Commit + "\n"
}

func orNotAvailable(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return NotAvailable
	}
	return v
}
