package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"zenbreath/internal/storage"
	"zenbreath/internal/ui/preferences"
)

func newConfigCommand() *cobra.Command {
	var reset bool

	command := &cobra.Command{
		Use:   "config",
		Short: "Print the settings file location and its values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := storage.SettingsPath(appName)
			if err != nil {
				return err
			}

			settings := preferences.DefaultSettings()
			if reset {
				if err := storage.SaveSettingsFile(path, settings); err != nil {
					return err
				}
			} else if settings, err = storage.LoadSettingsFile(path); err != nil {
				return err
			}

			serialized, err := storage.MarshalSettings(settings)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n", path)
			_, err = out.Write(serialized)
			return err
		},
	}
	command.Flags().BoolVar(&reset, "reset", false, "overwrite the settings file with defaults")
	return command
}
