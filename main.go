package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/olivierh59500/starfield/display"
	"github.com/olivierh59500/starfield/field"
	"github.com/olivierh59500/starfield/terminal"
)

const (
	releaseVersion = "1.0.0"
)

func main() {
	log.SetFlags(0)
	cfg := &Config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cobra.CheckErr(newCmd(cfg).ExecuteContext(ctx))
}

func run(ctx context.Context, cfg *Config) error {
	if cfg.logFile != "" {
		file, err := os.OpenFile(cfg.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		defer file.Close()
		log.SetOutput(file)
	}

	f, err := field.New(cfg.fieldOptions())
	if err != nil {
		return err
	}

	logf(cfg, "START: starfield v%s (%s backend)", releaseVersion, cfg.backend)

	switch cfg.backend {
	case backendTerminal:
		return runTerminal(ctx, cfg, f)
	default:
		return runWindow(ctx, cfg, f)
	}
}

func runWindow(ctx context.Context, cfg *Config, f *field.Field) error {
	opts := display.DefaultOptions()
	opts.Width = cfg.width
	opts.Height = cfg.height
	opts.Fullscreen = cfg.fullscreen
	opts.TPS = cfg.tps
	opts.Opacity = cfg.opacity
	opts.Background = cfg.backgroundColor
	opts.Logf = func(format string, args ...any) { logf(cfg, format, args...) }

	host := display.New(opts)
	if err := f.Mount(host); err != nil {
		return err
	}
	defer f.Unmount()

	return host.Run(ctx)
}

func runTerminal(ctx context.Context, cfg *Config, f *field.Field) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	host := terminal.New(screen, terminal.Options{
		TPS:        cfg.tps,
		Accent:     cfg.accentColor,
		Background: cfg.backgroundColor,
		Opacity:    cfg.opacity,
		Logf:       func(format string, args ...any) { logf(cfg, format, args...) },
	})
	if err := f.Mount(host); err != nil {
		return err
	}
	defer f.Unmount()

	return host.Run(ctx)
}
