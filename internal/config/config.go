package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the top-level pydash configuration.
type Config struct {
	ProjectsDir string `mapstructure:"projects_dir"`
	DataFile    string `mapstructure:"data_file"`
	Server      Server `mapstructure:"server"`
	Scan        Scan   `mapstructure:"scan"`
	Watch       Watch  `mapstructure:"watch"`
	GitHub      GitHub `mapstructure:"github"`
}

// Server holds the web UI listen address.
type Server struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Scan holds the scanner's admission and time budgets.
type Scan struct {
	MaxEntries     int `mapstructure:"max_entries"`
	WalkBudgetSec  int `mapstructure:"walk_budget_seconds"`
	EntryBudgetSec int `mapstructure:"entry_budget_seconds"`
}

// Watch holds the watch-mode settings.
type Watch struct {
	IntervalSec int `mapstructure:"interval_seconds"`
}

// GitHub holds the identity used for git config and remote creation.
// Token and username are normally supplied through the environment
// (GITHUB_TOKEN, GITHUB_USERNAME), loaded from a .env file when present.
type GitHub struct {
	Username string `mapstructure:"username"`
	Token    string `mapstructure:"token"`
	GitName  string `mapstructure:"git_name"`
	GitEmail string `mapstructure:"git_email"`
}

// WalkBudget returns the whole-walk budget as a duration.
func (s Scan) WalkBudget() time.Duration { return time.Duration(s.WalkBudgetSec) * time.Second }

// EntryBudget returns the per-entry budget as a duration.
func (s Scan) EntryBudget() time.Duration { return time.Duration(s.EntryBudgetSec) * time.Second }

// Interval returns the watch interval as a duration.
func (w Watch) Interval() time.Duration { return time.Duration(w.IntervalSec) * time.Second }

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied. A .env file in the working
// directory is loaded first so GitHub credentials can live outside the config.
func Load(cfgFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// Set defaults.
	v.SetDefault("projects_dir", DefaultProjectsDir)
	v.SetDefault("data_file", DefaultDataFile)
	v.SetDefault("server.host", DefaultServerHost)
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("scan.max_entries", DefaultScanMaxEntries)
	v.SetDefault("scan.walk_budget_seconds", DefaultScanWalkBudgetSec)
	v.SetDefault("scan.entry_budget_seconds", DefaultScanEntryBudgetSec)
	v.SetDefault("watch.interval_seconds", DefaultWatchInterval)
	v.SetDefault("github.username", os.Getenv("GITHUB_USERNAME"))
	v.SetDefault("github.token", os.Getenv("GITHUB_TOKEN"))
	v.SetDefault("github.git_name", os.Getenv("GIT_NAME"))
	v.SetDefault("github.git_email", os.Getenv("GIT_EMAIL"))

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		configDir := expandPath(DefaultConfigDir)
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Expand paths.
	cfg.ProjectsDir = expandPath(cfg.ProjectsDir)
	cfg.DataFile = expandPath(cfg.DataFile)

	return &cfg, nil
}

// DBPath returns the full path to the scan-history database.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
