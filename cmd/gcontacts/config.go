package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	gcontacts "github.com/ilake/google-contacts-api"
)

// contactsScope grants read/write access to the m8 feeds.
const contactsScope = "https://www.google.com/m8/feeds"

// Config holds the OAuth app credentials and the tokens obtained for the
// account. Stored as TOML under ~/.gcontacts/config.toml.
type Config struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	AccessToken  string `toml:"access_token"`
	RefreshToken string `toml:"refresh_token"`
}

var errNotConfigured = errors.New("no configuration found, run 'gcontacts configure' first")

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".gcontacts", "config.toml"), nil
}

func loadConfig() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errNotConfigured
	}
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func saveConfig(cfg *Config) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	raw, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0600)
}

// newClient builds an API client with a self-refreshing token source from
// the stored credentials.
func newClient(ctx context.Context) (*gcontacts.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.ClientID == "" || cfg.RefreshToken == "" {
		return nil, errNotConfigured
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{contactsScope},
	}
	token := &oauth2.Token{
		AccessToken:  cfg.AccessToken,
		RefreshToken: cfg.RefreshToken,
	}
	ts := oauthCfg.TokenSource(ctx, token)
	return gcontacts.NewClient(gcontacts.NewTokenSourceProvider(ts)), nil
}
