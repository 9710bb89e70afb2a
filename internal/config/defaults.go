// Package config provides configuration loading and defaults for pydash.
package config

// DefaultProjectsDir is the default scan root for project discovery.
const DefaultProjectsDir = "~/projects"

// DefaultDataFile is the default location of the JSON data file.
const DefaultDataFile = "~/.pydash/data.json"

// DefaultConfigDir is the default location for pydash configuration.
const DefaultConfigDir = "~/.config/pydash"

// DefaultDBName is the filename for the scan-history SQLite database.
const DefaultDBName = "history.db"

// DefaultServerHost binds the web UI to the loopback interface only.
const DefaultServerHost = "127.0.0.1"

// DefaultServerPort is the web UI port.
const DefaultServerPort = 8080

// DefaultWatchInterval is the rescan interval for watch mode, in seconds.
const DefaultWatchInterval = 120

// Default scan limits; see the scanner package for their meaning.
const (
	DefaultScanMaxEntries     = 50
	DefaultScanWalkBudgetSec  = 15
	DefaultScanEntryBudgetSec = 3
)
