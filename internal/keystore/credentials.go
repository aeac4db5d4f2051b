package keystore

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrEmptyKey     = errors.New("API key is empty")
	ErrInvalidTheme = errors.New("theme must be one of device, light, dark")
)

// Theme choices. ThemeDevice follows the OS preference and is never stored.
const (
	ThemeDevice = "device"
	ThemeLight  = "light"
	ThemeDark   = "dark"
)

const rememberTrue = "true"

// Credentials manages the remembered API key and the theme choice on top of
// a Store. The remember flag is never set without a non-empty key.
type Credentials struct {
	store Store
}

func NewCredentials(s Store) *Credentials {
	return &Credentials{store: s}
}

// Remembered returns the stored key when the remember flag is set.
func (c *Credentials) Remembered(ctx context.Context) (string, bool, error) {
	flag, ok, err := c.store.Get(ctx, NameRemember)
	if err != nil || !ok || flag != rememberTrue {
		return "", false, err
	}
	key, ok, err := c.store.Get(ctx, NameAPIKey)
	if err != nil || !ok || key == "" {
		return "", false, err
	}
	return key, true, nil
}

// Remember persists key and sets the remember flag.
func (c *Credentials) Remember(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := c.store.Set(ctx, NameAPIKey, key); err != nil {
		return fmt.Errorf("save api key: %w", err)
	}
	if err := c.store.Set(ctx, NameRemember, rememberTrue); err != nil {
		return fmt.Errorf("save remember flag: %w", err)
	}
	return nil
}

// Forget removes the stored key and the remember flag.
func (c *Credentials) Forget(ctx context.Context) error {
	if err := c.store.Delete(ctx, NameAPIKey, NameRemember); err != nil {
		return fmt.Errorf("clear api key: %w", err)
	}
	return nil
}

// Theme returns the stored theme, ThemeDevice when none is stored.
func (c *Credentials) Theme(ctx context.Context) (string, error) {
	t, ok, err := c.store.Get(ctx, NameTheme)
	if err != nil {
		return ThemeDevice, err
	}
	if !ok || !validTheme(t) {
		return ThemeDevice, nil
	}
	return t, nil
}

// SetTheme stores light or dark; device removes the stored value.
func (c *Credentials) SetTheme(ctx context.Context, theme string) error {
	switch theme {
	case ThemeDevice:
		return c.store.Delete(ctx, NameTheme)
	case ThemeLight, ThemeDark:
		return c.store.Set(ctx, NameTheme, theme)
	default:
		return ErrInvalidTheme
	}
}

func validTheme(t string) bool {
	return t == ThemeDevice || t == ThemeLight || t == ThemeDark
}
