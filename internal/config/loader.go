package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// flagKeys maps command flags to their config keys
var flagKeys = map[string]string{
	"compilers":   "compilers_dir",
	"cache-dir":   "cache_dir",
	"no-cache":    "no_cache",
	"profile-log": "profile_log",
	"std":         "standard",
	"toolchain":   "toolchain",
	"layout":      "layout",
	"verbose":     "verbose",
}

// Loader handles configuration loading from various sources
type Loader struct {
	userConfigDir func() (string, error)
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		userConfigDir: os.UserConfigDir,
	}
}

// LoadForCommand layers defaults, the global file, the nearest local file
// and the command's flags, in increasing priority.
func (l *Loader) LoadForCommand(cmd *cobra.Command, args []string) (*Config, error) {
	l.setupViperDefaults()
	l.loadGlobalConfig()
	l.loadLocalConfig(args)
	l.bindCommandFlags(cmd)

	return Load()
}

// setupViperDefaults sets up default values for viper
func (l *Loader) setupViperDefaults() {
	viper.SetDefault("toolchain", DefaultToolchain)
	viper.SetDefault("layout", DefaultLayout)
	viper.SetDefault("no_cache", DefaultNoCache)
	viper.SetDefault("incremental", DefaultIncremental)
	viper.SetDefault("verbose", DefaultVerbose)
}

// loadGlobalConfig loads the per-user config file
func (l *Loader) loadGlobalConfig() {
	base, err := l.userConfigDir()
	if err != nil || base == "" {
		return
	}

	globalDir := filepath.Join(base, AppName)

	for _, ext := range ConfigExtensions {
		globalPath := filepath.Join(globalDir, "config."+ext)

		if _, err := os.Stat(globalPath); err == nil {
			viper.SetConfigFile(globalPath)

			if err := viper.MergeInConfig(); err == nil {
				break
			}
		}
	}
}

// loadLocalConfig loads local configuration starting at the target path
func (l *Loader) loadLocalConfig(args []string) {
	if len(args) == 0 {
		return
	}

	abs, err := filepath.Abs(args[0])
	if err != nil {
		return // silently ignore, config.Load() will handle validation
	}

	dir := abs
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		dir = filepath.Dir(abs)
	}

	localPath := FindLocalConfig(dir)
	if localPath != "" {
		viper.SetConfigFile(localPath)
		_ = viper.MergeInConfig()
	}
}

// bindCommandFlags binds command flags to viper
func (l *Loader) bindCommandFlags(cmd *cobra.Command) {
	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}
}
