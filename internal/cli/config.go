package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// configFileExt names the settings file inside the config directory.
const configFileExt = "config.yaml"

const (
	cfgKeyProjectDir = "project_dir"
	cfgKeyLogLevel   = "log_level"
	cfgKeyIndexPath  = "index_path"

	defaultLogLevel = "warn"
)

// setting documents one config.yaml key. An empty value leaves the key
// commented out in the generated file.
type setting struct {
	key   string
	value string
	help  string
}

var settings = []setting{
	{cfgKeyProjectDir, "", "project root used when --project is absent"},
	{cfgKeyLogLevel, defaultLogLevel, "one of debug, info, warn, error"},
	{cfgKeyIndexPath, "", "sqlite file backing `tabledb query`; blank keeps the index in memory"},
}

// renderConfig produces the commented config.yaml written on first run.
func renderConfig() []byte {
	var b strings.Builder
	b.WriteString("# tabledb settings. Command-line flags take precedence.\n")
	for _, s := range settings {
		fmt.Fprintf(&b, "\n# %s\n", s.help)
		if s.value == "" {
			fmt.Fprintf(&b, "# %s:\n", s.key)
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", s.key, s.value)
	}
	return []byte(b.String())
}

// loadConfig returns the settings of configDir, seeding the directory and
// config.yaml when they do not exist yet.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := writeDefaultConfig(configDir); err != nil {
		return nil, fmt.Errorf("seeding %s: %w", configDir, err)
	}

	v := viper.New()
	for _, s := range settings {
		v.SetDefault(s.key, s.value)
	}
	v.SetConfigFile(filepath.Join(configDir, configFileExt))
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", configFileExt, err)
	}
	return v, nil
}

// writeDefaultConfig never overwrites an existing config.yaml.
func writeDefaultConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(configDir, configFileExt), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := f.Write(renderConfig()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
