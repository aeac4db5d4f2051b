package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"blogger-lister/internal/config"
	"blogger-lister/internal/keystore"

	"github.com/spf13/cobra"
)

// keyCmd groups API key management subcommands.
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the remembered Google API key",
}

var keySetCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Remember an API key (prompts without echo when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runKeySet(cmd.Context(), GetConfig(), args, cmd.OutOrStdout())
	},
}

var keyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the remembered API key, masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runKeyShow(cmd.Context(), GetConfig(), cmd.OutOrStdout())
	},
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the remembered API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runKeyClear(cmd.Context(), GetConfig(), cmd.OutOrStdout())
	},
}

func init() {
	keyCmd.AddCommand(keySetCmd, keyShowCmd, keyClearCmd)
	rootCmd.AddCommand(keyCmd)
}

func withCredentials(cfg config.Config, fn func(*keystore.Credentials) error) error {
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(keystore.NewCredentials(store))
}

func runKeySet(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	var key string
	if len(args) == 1 {
		key = strings.TrimSpace(args[0])
	} else {
		k, err := promptKey(out)
		if err != nil {
			return err
		}
		key = k
	}
	return withCredentials(cfg, func(c *keystore.Credentials) error {
		if err := c.Remember(ctx, key); err != nil {
			return err
		}
		fmt.Fprintf(out, "API Key saved to local storage (%s).\n", keystore.Mask(key))
		return nil
	})
}

func runKeyShow(ctx context.Context, cfg config.Config, out io.Writer) error {
	return withCredentials(cfg, func(c *keystore.Credentials) error {
		key, ok, err := c.Remembered(ctx)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "No API Key stored.")
			return nil
		}
		fmt.Fprintln(out, keystore.Mask(key))
		return nil
	})
}

func runKeyClear(ctx context.Context, cfg config.Config, out io.Writer) error {
	return withCredentials(cfg, func(c *keystore.Credentials) error {
		if err := c.Forget(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "API Key cleared from local storage.")
		return nil
	})
}
