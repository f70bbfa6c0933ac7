// Package config resolves the booth settings. Later sources win:
// built in defaults, the YAML file, GOBOOTH_* environment variables and
// finally command line flags the user actually set.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/drummonds/gobooth/internal/capture"
	"github.com/drummonds/gobooth/internal/filter"
	"github.com/drummonds/gobooth/internal/mode"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "GOBOOTH_"

type Config struct {
	// Device is the V4L2 camera, ignored when SourceDir is set.
	Device string `yaml:"device"`
	// SourceDir replays still images instead of using a camera.
	SourceDir string `yaml:"source_dir"`
	OutputDir string `yaml:"output_dir"`
	Mode      string `yaml:"mode"`
	Filter    string `yaml:"filter"`
	// Title of the strip, empty for the day of year default.
	Title    string `yaml:"title"`
	Mirror   bool   `yaml:"mirror"`
	LogLevel string `yaml:"log_level"`
}

func Default() Config {
	return Config{
		Device:    capture.DefaultDevice,
		OutputDir: ".",
		Mode:      mode.TwoPhoto.String(),
		Filter:    filter.None.String(),
		LogLevel:  "info",
	}
}

// LoadFile overlays the YAML file at path onto c. A missing file is only an
// error when required.
func (c *Config) LoadFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays GOBOOTH_* variables onto c.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	for key, dst := range map[string]*string{
		"DEVICE":     &c.Device,
		"SOURCE_DIR": &c.SourceDir,
		"OUTPUT_DIR": &c.OutputDir,
		"MODE":       &c.Mode,
		"FILTER":     &c.Filter,
		"TITLE":      &c.Title,
		"LOG_LEVEL":  &c.LogLevel,
	} {
		if v := getenv(EnvPrefix + key); v != "" {
			*dst = v
		}
	}
	if v := getenv(EnvPrefix + "MIRROR"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sMIRROR: %w", EnvPrefix, err)
		}
		c.Mirror = on
	}
	return nil
}

func (c Config) PhotoMode() mode.Mode { return mode.Parse(c.Mode) }

func (c Config) FilterKind() filter.Kind { return filter.Parse(c.Filter) }

// Validate checks the settings that have no fallback.
func (c Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.SourceDir == "" && c.Device == "" {
		return errors.New("need a camera device or a source directory")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return errors.New("output_dir is empty")
	}
	return nil
}

// ApplyLogging sets the logrus level from the config.
func (c Config) ApplyLogging() error {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	return nil
}

// Flags are the command line overrides.
type Flags struct {
	fs     *pflag.FlagSet
	path   string
	values Config
}

// AddFlags registers the config flags on fs.
func AddFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	d := Default()
	fs.StringVarP(&f.path, "config", "c", "gobooth.yaml", "YAML config file")
	fs.StringVar(&f.values.Device, "device", d.Device, "V4L2 camera device")
	fs.StringVar(&f.values.SourceDir, "source-dir", "", "replay still images from this directory instead of a camera")
	fs.StringVarP(&f.values.OutputDir, "output-dir", "o", d.OutputDir, "directory collages are saved to")
	fs.StringVarP(&f.values.Mode, "mode", "m", d.Mode, "photo mode, 2 or 4")
	fs.StringVarP(&f.values.Filter, "filter", "f", d.Filter, "filter: none, warm, cool, vintage or bw")
	fs.StringVarP(&f.values.Title, "title", "t", "", "strip title (default day of year)")
	fs.BoolVar(&f.values.Mirror, "mirror", false, "mirror captured photos")
	fs.StringVar(&f.values.LogLevel, "log-level", d.LogLevel, "log level")
	return f
}

// Resolve merges defaults, the config file, the environment and the flags
// that were set.
func (f *Flags) Resolve(getenv func(string) string) (Config, error) {
	c := Default()
	path, required := f.path, f.fs.Changed("config")
	if v := getenv(EnvPrefix + "CONFIG"); v != "" && !required {
		path, required = v, true
	}
	if err := c.LoadFile(path, required); err != nil {
		return c, err
	}
	if err := c.ApplyEnv(getenv); err != nil {
		return c, err
	}
	for name, apply := range map[string]func(){
		"device":     func() { c.Device = f.values.Device },
		"source-dir": func() { c.SourceDir = f.values.SourceDir },
		"output-dir": func() { c.OutputDir = f.values.OutputDir },
		"mode":       func() { c.Mode = f.values.Mode },
		"filter":     func() { c.Filter = f.values.Filter },
		"title":      func() { c.Title = f.values.Title },
		"mirror":     func() { c.Mirror = f.values.Mirror },
		"log-level":  func() { c.LogLevel = f.values.LogLevel },
	} {
		if f.fs.Changed(name) {
			apply()
		}
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	logrus.WithFields(logrus.Fields{
		"function": "Resolve",
		"config":   path,
		"device":   c.Device,
		"source":   c.SourceDir,
		"mode":     c.Mode,
	}).Debug("Configuration resolved")
	return c, nil
}

// Opener picks the capture source: the still directory when one is set,
// otherwise the camera device.
func (c Config) Opener() capture.Opener {
	if c.SourceDir != "" {
		return capture.DirOpener(c.SourceDir, capture.FrameInterval)
	}
	return capture.V4L2Opener(c.Device)
}

// Camera builds the capture source described by the config.
func (c Config) Camera() *capture.Camera {
	return capture.NewCamera(c.Opener(), capture.Preferred, capture.Fallback)
}
