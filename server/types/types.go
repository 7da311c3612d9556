// Package types provides shared types for the server package and its subpackages.
package types

import (
	"os"
	"time"

	"github.com/nomis52/turnact/buildinfo"
)

// ServerProperties holds metadata about the running server instance.
type ServerProperties struct {
	Build     buildinfo.Properties `json:"build"`
	StartedAt time.Time            `json:"started_at"`
	Hostname  string               `json:"hostname"`
}

// NewServerProperties captures the build, the current time and the host
// name. An unresolvable host name is left empty.
func NewServerProperties() ServerProperties {
	hostname, _ := os.Hostname()
	return ServerProperties{
		Build:     buildinfo.Get(),
		StartedAt: time.Now(),
		Hostname:  hostname,
	}
}

// Uptime is the time elapsed since StartedAt.
func (p ServerProperties) Uptime(now time.Time) time.Duration {
	return now.Sub(p.StartedAt).Truncate(time.Second)
}
