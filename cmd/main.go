package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"zenbreath/internal/audio"
	"zenbreath/internal/ui/preferences"
)

const (
	appName = "ZenBreath"
	appID   = "com.zenbreath.app"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "zenbreath",
		Short:         "Guided breathing sessions with retention holds",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := parseLevel(logLevel)
			if err != nil {
				return err
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return runDesktop()
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")

	root.AddCommand(newRunCommand(), newConfigCommand())
	return root
}

func parseLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return 0, fmt.Errorf("parse log level %q: %w", value, err)
	}
	return level, nil
}

// newFetcher looks for recordings in the asset directory first, then on the
// asset server when one is configured.
func newFetcher(settings preferences.Settings) audio.Fetcher {
	root := settings.AssetDir
	if root == "" {
		root = "."
	}
	fetchers := audio.Fetchers{audio.DirFetcher{Root: root}}
	if settings.AssetURL != "" {
		fetchers = append(fetchers, audio.HTTPFetcher{BaseURL: settings.AssetURL})
	}
	return audio.NewCachedFetcher(fetchers)
}

func opacityToAlpha(opacity float64) uint8 {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	return uint8(opacity * 255)
}
