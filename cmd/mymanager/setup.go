// ABOUTME: init and passwd subcommands: write a starter config and hash the admin password
// ABOUTME: passwd reads from the terminal without echo, or from stdin when piped

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/auth"
)

const starterConfig = `# mymanager configuration
# Generated by mymanager init

server:
  http_addr: "%[1]s"
  # base_url: "https://admin.example.com"

storage:
  driver: "%[2]s"
  path: "%[3]s"
  # dsn: "${MYMANAGER_DSN}"   # postgres only
  # quota_bytes: 5242880

data:
  mode: "local"              # local | remote
  items_per_page: 10
  # source: "jsonplaceholder"
  # sources: ["jsonplaceholder", "reqres"]   # merged on load

remote:
  timeout: "15s"
  cache_ttl: "5m"
  # base_urls:
  #   mymanager: "https://other-instance.example.com/api"
  # token: "${MYMANAGER_REMOTE_TOKEN}"

auth:
  username: "admin"
  # generate with: mymanager passwd
  password_hash: "%[4]s"
  session_secret: "${MYMANAGER_SESSION_SECRET}"
  session_ttl: "24h"
  api_token_ttl: "1h"

i18n:
  default_language: "%[5]s"   # fr | en | ar

logging:
  level: "info"
  format: "text"

tailscale:
  enabled: false
  # hostname: "mymanager"
  # https: true
`

func (c *cli) initCmd() *cobra.Command {
	var (
		output   string
		force    bool
		httpAddr string
		driver   string
		dbPath   string
		lang     string
	)

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a starter configuration file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: ""},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(output); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", output)
			}

			hash, err := auth.HashPassword("admin")
			if err != nil {
				return err
			}
			content := fmt.Sprintf(starterConfig, httpAddr, driver, dbPath, hash, lang)
			if err := os.WriteFile(output, []byte(content), 0o600); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			color.New(color.FgGreen).Fprintf(c.out, "✓ Wrote %s\n", output)
			fmt.Fprintln(c.out, "  Default login is admin/admin. Change it with: mymanager passwd")
			fmt.Fprintln(c.out, "  Set MYMANAGER_SESSION_SECRET (32+ bytes) before serving.")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&output, "output", "o", "mymanager.yaml", "config file to write")
	flags.BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	flags.StringVar(&httpAddr, "http-addr", "127.0.0.1:8080", "HTTP listen address")
	flags.StringVar(&driver, "driver", "sqlite", "storage driver (sqlite, sqlite3, postgres, memory)")
	flags.StringVar(&dbPath, "db", "data/mymanager.db", "SQLite database path")
	flags.StringVar(&lang, "lang", "fr", "default language (fr, en, ar)")
	return cmd
}

func (c *cli) passwdCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "passwd",
		Short:       "Hash a password for auth.password_hash",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: ""},
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := c.readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, hash)
			return nil
		},
	}
}

// readPassword prompts twice on a terminal and reads one line otherwise.
func (c *cli) readPassword(in io.Reader) (string, error) {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("reading password: %w", err)
		}
		password := strings.TrimRight(line, "\r\n")
		if password == "" {
			return "", errors.New("empty password")
		}
		return password, nil
	}

	fmt.Fprint(c.errOut, "New password: ")
	first, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(c.errOut)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	fmt.Fprint(c.errOut, "Repeat password: ")
	second, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(c.errOut)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	if len(first) == 0 {
		return "", errors.New("empty password")
	}
	return string(first), nil
}
