package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ytget/ytfetch/internal/config"
)

func (a *App) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "config reads and writes persistent settings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get [key]",
			Short: "get prints the effective value of a setting",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				value, err := a.settings.Get(args[0])
				if err != nil {
					return withSuggestion(err, args[0], config.Keys())
				}
				fmt.Fprintln(a.Out, value)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set [key] [value]",
			Short: "set stores a setting in the config file",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.settings.Set(args[0], args[1]); err != nil {
					if errors.Is(err, config.ErrUnknownKey) {
						return withSuggestion(err, args[0], config.Keys())
					}
					return err
				}

				path := a.configPath()
				if err := a.settings.Save(path); err != nil {
					return err
				}
				a.log.WithField("file", path).Debug("settings saved")
				fmt.Fprintf(a.Out, "%s updated in %s\n", args[0], path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "path prints the config file in use",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(a.Out, a.configPath())
				return nil
			},
		},
	)
	return cmd
}

// configPath returns the file settings are saved to
func (a *App) configPath() string {
	if a.configFile != "" {
		return a.configFile
	}
	if used := a.settings.ConfigFileUsed(); used != "" {
		return used
	}
	return config.DefaultConfigFile()
}
