package main

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/olivierh59500/starfield/field"
)

const (
	backendWindow   = "window"
	backendTerminal = "terminal"
)

type Config struct {
	accent             string
	backend            string
	background         string
	configFile         string
	connectionDistance float64
	densityDivisor     float64
	fullscreen         bool
	height             int
	lineWidth          float64
	logFile            string
	opacity            float64
	seed               int64
	speed              float64
	tps                int
	twinkle            bool
	verbose            bool
	version            bool
	width              int

	// Parsed from accent and background by validate
	accentColor     color.RGBA
	backgroundColor color.RGBA
}

func (c *Config) validate() error {
	if c.backend != backendWindow && c.backend != backendTerminal {
		return fmt.Errorf("invalid backend (must be %q or %q): %q", backendWindow, backendTerminal, c.backend)
	}
	if c.width < 1 || c.height < 1 {
		return fmt.Errorf("invalid window size: %dx%d", c.width, c.height)
	}
	if c.tps < 1 || c.tps > 240 {
		return fmt.Errorf("invalid tps (must be between 1-240 inclusive): %d", c.tps)
	}
	if c.opacity < 0 || c.opacity > 1 {
		return fmt.Errorf("invalid opacity (must be between 0-1 inclusive): %v", c.opacity)
	}
	accent, err := parseHex(c.accent)
	if err != nil {
		return fmt.Errorf("invalid --accent: %w", err)
	}
	background, err := parseHex(c.background)
	if err != nil {
		return fmt.Errorf("invalid --background: %w", err)
	}
	c.accentColor, c.backgroundColor = accent, background
	if err := c.fieldOptions().Validate(); err != nil {
		return err
	}
	return nil
}

// fieldOptions maps the flags onto field options. Call validate first.
func (c *Config) fieldOptions() field.Options {
	opts := field.DefaultOptions()
	opts.DensityDivisor = c.densityDivisor
	opts.Speed = c.speed
	opts.ConnectionDistance = c.connectionDistance
	opts.LineWidth = c.lineWidth
	opts.Seed = c.seed
	opts.Twinkle = c.twinkle
	opts.Accent = c.accentColor
	opts.Logf = func(format string, args ...any) { logf(c, format, args...) }
	return opts
}

func parseHex(s string) (color.RGBA, error) {
	if s == "" {
		return color.RGBA{}, errors.New("empty colour")
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("STARFIELD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "starfield",
		Short:         "An animated particle background with proximity lines, in a window or a terminal.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfigFile(v, cmd.Flags(), cfg.configFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	defaults := field.DefaultOptions()

	fs.StringVar(&cfg.accent, "accent", "#FBC403", "particle and line colour (env: STARFIELD_ACCENT)")
	fs.StringVarP(&cfg.backend, "backend", "b", backendWindow, "where to draw: window or terminal (env: STARFIELD_BACKEND)")
	fs.StringVar(&cfg.background, "background", "#141414", "background colour (env: STARFIELD_BACKGROUND)")
	fs.StringVarP(&cfg.configFile, "config", "c", "", "path to a config file; any format viper reads (env: STARFIELD_CONFIG)")
	fs.Float64Var(&cfg.connectionDistance, "connection-distance", defaults.ConnectionDistance, "max distance in logical px for a connecting line (env: STARFIELD_CONNECTION_DISTANCE)")
	fs.Float64Var(&cfg.densityDivisor, "density-divisor", defaults.DensityDivisor, "logical px² per particle (env: STARFIELD_DENSITY_DIVISOR)")
	fs.BoolVar(&cfg.fullscreen, "fullscreen", false, "start fullscreen, window backend only (env: STARFIELD_FULLSCREEN)")
	fs.IntVar(&cfg.height, "height", 800, "initial window height (env: STARFIELD_HEIGHT)")
	fs.Float64Var(&cfg.lineWidth, "line-width", defaults.LineWidth, "connection line width in logical px (env: STARFIELD_LINE_WIDTH)")
	fs.StringVar(&cfg.logFile, "log-file", "", "write verbose output to this file instead of stderr (env: STARFIELD_LOG_FILE)")
	fs.Float64Var(&cfg.opacity, "opacity", 0.9, "opacity of the field over the background (env: STARFIELD_OPACITY)")
	fs.Int64Var(&cfg.seed, "seed", 0, "random seed, 0 for time based (env: STARFIELD_SEED)")
	fs.Float64Var(&cfg.speed, "speed", defaults.Speed, "max particle speed in logical px per frame (env: STARFIELD_SPEED)")
	fs.IntVar(&cfg.tps, "tps", 60, "frames per second (env: STARFIELD_TPS)")
	fs.BoolVar(&cfg.twinkle, "twinkle", false, "modulate particle brightness with perlin noise (env: STARFIELD_TWINKLE)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: STARFIELD_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: STARFIELD_VERSION)")
	fs.IntVar(&cfg.width, "width", 1280, "initial window width (env: STARFIELD_WIDTH)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("starfield v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

// loadConfigFile fills every flag not set on the command line or in the
// environment from the file at path.
func loadConfigFile(v *viper.Viper, fs *pflag.FlagSet, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed || !v.InConfig(f.Name) {
			return
		}
		if err := fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name))); err != nil {
			errs = append(errs, fmt.Errorf("config %s: %w", f.Name, err))
		}
	})
	return errors.Join(errs...)
}
