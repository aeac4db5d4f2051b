package cmd

import (
	"context"
	"fmt"
	"io"

	"blogger-lister/internal/config"
	"blogger-lister/internal/keystore"

	"github.com/spf13/cobra"
)

var themeCmd = &cobra.Command{
	Use:       "theme [device|light|dark]",
	Short:     "Show or set the theme used by the web UI and saved files",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{keystore.ThemeDevice, keystore.ThemeLight, keystore.ThemeDark},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTheme(cmd.Context(), GetConfig(), args, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(themeCmd)
}

func runTheme(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	return withCredentials(cfg, func(c *keystore.Credentials) error {
		if len(args) == 1 {
			if err := c.SetTheme(ctx, args[0]); err != nil {
				return err
			}
		}
		theme, err := c.Theme(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, theme)
		return nil
	})
}
