package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gcontacts",
	Short: "Browse and edit Google Contacts from the terminal",
	Long: `gcontacts talks to the Google Contacts GData API.

Configure it once with OAuth app credentials and a refresh token, then
list, inspect and edit the account's contacts and groups.

Examples:
  gcontacts configure
  gcontacts contacts list
  gcontacts contacts show <id>
  gcontacts groups create "Book club"`,
	SilenceUsage: true,
}

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Store OAuth app credentials and tokens",
	Long: `Store the OAuth client id/secret and the account's tokens.

Tokens must be obtained out of band (e.g. via the OAuth playground) with
the https://www.google.com/m8/feeds scope. The access token is refreshed
automatically from the refresh token on use.`,
	RunE: runConfigure,
}

func runConfigure(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		cfg = &Config{}
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	prompt := func(label, current string) (string, error) {
		if current != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s [%s]: ", label, current)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ", label)
		}
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return current, nil
		}
		return line, nil
	}

	if cfg.ClientID, err = prompt("Client ID", cfg.ClientID); err != nil {
		return err
	}
	if cfg.ClientSecret, err = prompt("Client secret", cfg.ClientSecret); err != nil {
		return err
	}
	if cfg.AccessToken, err = prompt("Access token", cfg.AccessToken); err != nil {
		return err
	}
	if cfg.RefreshToken, err = prompt("Refresh token", cfg.RefreshToken); err != nil {
		return err
	}

	if err := saveConfig(cfg); err != nil {
		return err
	}
	path, _ := configPath()
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
	return nil
}

func init() {
	rootCmd.AddCommand(configureCmd)
}
