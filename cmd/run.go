package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"zenbreath/internal/audio"
	"zenbreath/internal/core/clock"
	"zenbreath/internal/core/model"
	"zenbreath/internal/core/session"
	"zenbreath/internal/insight"
	"zenbreath/internal/platform"
	"zenbreath/internal/storage"
	"zenbreath/internal/ui/preferences"
)

type runOptions struct {
	rounds    int
	breaths   int
	retention []int
	theme     string
	mode      string
	muted     bool
	silent    bool
}

func newRunCommand() *cobra.Command {
	options := runOptions{}

	command := &cobra.Command{
		Use:   "run",
		Short: "Run a session in the terminal",
		Long: "Run a session in the terminal.\n\n" +
			"Keys: p pause/resume, s skip phase, m mute, q end session.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := storage.LoadSettings(appName)
			if err != nil {
				slog.Warn("load settings, using defaults", "error", err)
			}
			settings, err = options.apply(cmd, settings)
			if err != nil {
				return err
			}
			return runTerminal(cmd.Context(), cmd.OutOrStdout(), settings, options.silent)
		},
	}

	flags := command.Flags()
	flags.IntVar(&options.rounds, "rounds", 0, "number of rounds (1-10)")
	flags.IntVar(&options.breaths, "breaths", 0, "breaths per round (5-60)")
	flags.IntSliceVar(&options.retention, "retention", nil, "retention target per round in seconds")
	flags.StringVar(&options.theme, "theme", "", "background sound: sea, forest, city or autoway")
	flags.StringVar(&options.mode, "retention-mode", "", "self_paced or target")
	flags.BoolVar(&options.muted, "muted", false, "start muted")
	flags.BoolVar(&options.silent, "no-audio", false, "do not open the audio device")
	return command
}

// apply overrides the stored settings with the flags the user set.
func (options runOptions) apply(cmd *cobra.Command, settings preferences.Settings) (preferences.Settings, error) {
	flags := cmd.Flags()
	if flags.Changed("rounds") {
		settings.Rounds = options.rounds
		settings.RetentionTimes = model.ResizeRetention(settings.RetentionTimes, options.rounds)
	}
	if flags.Changed("breaths") {
		settings.BreathsPerRound = options.breaths
	}
	if flags.Changed("retention") {
		if len(options.retention) != settings.Rounds {
			return settings, fmt.Errorf("%w: %d retention times for %d rounds", model.ErrInvalidConfig, len(options.retention), settings.Rounds)
		}
		settings.RetentionTimes = options.retention
	}
	if flags.Changed("theme") {
		theme, err := model.ParseTheme(options.theme)
		if err != nil {
			return settings, err
		}
		settings.AudioTheme = theme
	}
	if flags.Changed("retention-mode") {
		mode, err := model.ParseRetentionMode(options.mode)
		if err != nil {
			return settings, err
		}
		settings.RetentionMode = mode
	}
	if flags.Changed("muted") {
		settings.Muted = options.muted
	}

	if err := settings.SessionConfig().Validate(); err != nil {
		return settings, err
	}
	return settings, nil
}

func runTerminal(ctx context.Context, out io.Writer, settings preferences.Settings, silent bool) error {
	config := settings.SessionConfig()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	loop := clock.NewLoop()
	loop.Start()
	defer loop.Stop()

	options := session.Config{
		Clock:   loop,
		Timings: model.DefaultTimings(),
		Logger:  slog.Default(),
		Muted:   settings.Muted,
	}
	if !silent {
		device, err := audio.OpenDevice(audio.DefaultSampleRate)
		if err != nil {
			slog.Warn("audio output unavailable, running silently", "error", err)
		} else {
			options.Audio = audio.NewEmitter(device, audio.Config{
				Fetcher: newFetcher(settings),
				Logger:  slog.Default(),
				OnStatus: func(status audio.Status) {
					slog.Debug("audio status", "status", status)
				},
			})
		}
	}

	controller := session.New(config, options)
	events := controller.Subscribe(64)

	if lock, err := platform.AcquireWakeLock(appName, "Breathing session in progress"); err == nil {
		defer func() {
			_ = lock.Release()
		}()
	}

	display := &terminalDisplay{out: out, config: config, muted: settings.Muted}
	if restore, err := enterRawMode(); err != nil {
		slog.Debug("terminal keys unavailable", "error", err)
	} else {
		display.raw = true
		defer restore()
		go readKeys(os.Stdin, controller, display)
	}

	go func() {
		select {
		case <-ctx.Done():
			controller.Cancel()
		case <-controller.Done():
		}
	}()

	controller.Start()
	for event := range events {
		display.handle(event)
	}

	result, err := controller.Wait(context.Background())
	if errors.Is(err, session.ErrCanceled) {
		display.println("Session ended.")
		return nil
	}
	if err != nil {
		return err
	}

	picker := insight.NewPicker(uint64(time.Now().UnixNano()))
	display.println(insight.Headline(result.Rounds, result.ElapsedMinutes))
	display.println(picker.Reflection())
	return nil
}

func enterRawMode() (func(), error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New("stdin is not a terminal")
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("enter raw mode: %w", err)
	}
	return func() {
		_ = term.Restore(fd, state)
	}, nil
}

// readKeys maps single key presses onto session commands until input ends.
func readKeys(input io.Reader, controller *session.Controller, display *terminalDisplay) {
	buffer := make([]byte, 1)
	for {
		if _, err := input.Read(buffer); err != nil {
			return
		}
		switch buffer[0] {
		case 'p', 'P', ' ':
			controller.TogglePause()
		case 's', 'S':
			controller.Skip()
		case 'm', 'M':
			controller.SetMuted(!display.isMuted())
		case 'q', 'Q', 3:
			controller.Cancel()
			return
		}
	}
}
