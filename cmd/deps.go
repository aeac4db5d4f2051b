package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"blogger-lister/internal/blogger"
	"blogger-lister/internal/config"
	"blogger-lister/internal/keystore"
	"blogger-lister/internal/lister"
	"blogger-lister/internal/redisclient"

	"golang.org/x/term"
)

// openStore builds the configured key store. The returned func releases it.
func openStore(cfg config.Config) (keystore.Store, func(), error) {
	switch cfg.Store.Backend {
	case "file":
		return keystore.NewFileStore(cfg.Store.Path), func() {}, nil
	case "redis":
		rdb := redisclient.New(cfg.Redis)
		return keystore.NewRedisStore(rdb, cfg.Store.KeyPrefix), func() { rdb.Close() }, nil
	case "memory":
		return keystore.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store.backend %q (want file, redis or memory)", cfg.Store.Backend)
	}
}

func newService(cfg config.Config) (*lister.Service, error) {
	timeout, err := cfg.Blogger.TimeoutDuration()
	if err != nil {
		return nil, fmt.Errorf("invalid blogger.timeout: %w", err)
	}
	client := blogger.NewClient(cfg.Blogger.BaseURL, cfg.Blogger.DiscoveryURL, timeout)
	return lister.NewService(client,
		lister.WithPageSize(cfg.Blogger.PageSize),
		lister.WithMaxPages(cfg.Blogger.MaxPages),
	), nil
}

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// promptKey reads an API key from the terminal without echo.
func promptKey(w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, "Google API Key: "); err != nil {
		return "", err
	}
	b, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read api key: %w", err)
	}
	key := strings.TrimSpace(string(b))
	if key == "" {
		return "", keystore.ErrEmptyKey
	}
	return key, nil
}
