package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"blogger-lister/internal/config"
	"blogger-lister/internal/export"
	"blogger-lister/internal/keystore"
	"blogger-lister/internal/lister"
	"blogger-lister/internal/listing"

	"github.com/spf13/cobra"
)

type listOptions struct {
	key       string
	promptKey bool
	remember  bool
	saveHTML  bool
	outputDir string
	theme     string
}

var (
	listOpts listOptions
	now      = time.Now
)

var listCmd = &cobra.Command{
	Use:   "list <blog-url-or-id>",
	Short: "List every post of a blog, grouped by month",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd.Context(), GetConfig(), listOpts, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	listCmd.Flags().StringVar(&listOpts.key, "key", "", "Google API key (overrides the stored key)")
	listCmd.Flags().BoolVar(&listOpts.promptKey, "prompt-key", false, "prompt for the API key without echo")
	listCmd.Flags().BoolVar(&listOpts.remember, "remember", false, "store the API key after a successful initialisation")
	listCmd.Flags().BoolVar(&listOpts.saveHTML, "save-html", false, "also save the list as a standalone HTML file")
	listCmd.Flags().StringVar(&listOpts.outputDir, "output-dir", "", "directory for --save-html (default export.output_dir)")
	listCmd.Flags().StringVar(&listOpts.theme, "theme", "", "theme of the saved file: device, light or dark (default: stored theme)")
	rootCmd.AddCommand(listCmd)
}

func runList(ctx context.Context, cfg config.Config, opts listOptions, ref string, out, errOut io.Writer) error {
	normalized, prefixed := lister.NormalizeBlogRef(ref)
	if normalized == "" {
		return errors.New("blog URL or ID is required")
	}
	if opts.theme != "" && opts.theme != keystore.ThemeDevice && opts.theme != keystore.ThemeLight && opts.theme != keystore.ThemeDark {
		return keystore.ErrInvalidTheme
	}
	loc, err := cfg.Display.Location()
	if err != nil {
		return fmt.Errorf("invalid display.timezone: %w", err)
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	creds := keystore.NewCredentials(store)

	key, source, err := resolveKey(ctx, cfg, creds, opts, errOut)
	if err != nil {
		return err
	}
	slog.Debug("list: using api key", "source", source, "key", keystore.Mask(key))

	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	if err := svc.Initialize(ctx, key); err != nil {
		return err
	}
	if opts.remember {
		if err := creds.Remember(ctx, key); err != nil {
			return err
		}
		fmt.Fprintln(errOut, "API Key saved to local storage.")
	}

	if prefixed {
		fmt.Fprintln(errOut, "Automatically prefixed URL with https://")
	}
	blogID, err := svc.ResolveRef(ctx, normalized, key)
	if err != nil {
		return err
	}
	if blogID != normalized {
		fmt.Fprintf(errOut, "Found Blog ID: %s\n", blogID)
	}
	posts, err := svc.ListAll(ctx, blogID, key)
	if err != nil {
		return err
	}

	col := listing.Build(posts, loc)
	if err := listing.WriteText(out, col); err != nil {
		return err
	}
	if !opts.saveHTML {
		return nil
	}
	if col.Empty() {
		fmt.Fprintln(errOut, "No posts to save.")
		return nil
	}

	theme := opts.theme
	if theme == "" {
		if theme, err = creds.Theme(ctx); err != nil {
			slog.Warn("list: load theme failed", "error", err)
		}
	}
	dir := opts.outputDir
	if dir == "" {
		dir = cfg.Export.OutputDir
	}
	path, err := export.WriteFile(dir, export.Document{
		BlogRef:     normalized,
		GeneratedAt: now().In(loc),
		Theme:       theme,
		Collection:  col,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(errOut, "List saved as %q\n", path)
	return nil
}

// resolveKey picks the API key: --key, then --prompt-key, then the
// remembered key, then blogger.api_key.
func resolveKey(ctx context.Context, cfg config.Config, creds *keystore.Credentials, opts listOptions, w io.Writer) (key, source string, err error) {
	if opts.key != "" {
		return opts.key, "flag", nil
	}
	if opts.promptKey {
		key, err := promptKey(w)
		return key, "prompt", err
	}
	key, ok, err := creds.Remembered(ctx)
	if err != nil {
		return "", "", fmt.Errorf("load remembered key: %w", err)
	}
	if ok {
		return key, "remembered", nil
	}
	if cfg.Blogger.APIKey != "" {
		return cfg.Blogger.APIKey, "config", nil
	}
	return "", "", fmt.Errorf("%w (use --key, --prompt-key, \"key set\" or blogger.api_key)", lister.ErrMissingKey)
}
