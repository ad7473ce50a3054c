package main

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/entrhq/aread/pkg/config"
)

type optionsInput struct {
	url      string
	username string
	password string
	reset    bool
}

func newOptionsCmd(flags *globalFlags) *cobra.Command {
	in := &optionsInput{}

	cmd := &cobra.Command{
		Use:   "options",
		Short: "Set the service URL and credentials",
		Long: `options stores the service URL and a token derived from your username and
password. Only the token is kept. Leave the credentials out to keep the
current token. --reset forgets everything and restores the defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if in.reset {
				if err := a.cfg.Reset(); err != nil {
					return err
				}
				pterm.Success.Println("Configuration reset to defaults")
				return nil
			}

			currentURL, _ := a.cfg.Service.Get()
			creds, err := collectCredentials(cmd, in, currentURL, promptText)
			if err != nil {
				return err
			}
			if err := a.cfg.SaveOptions(creds); err != nil {
				return err
			}

			savedURL, tok := a.cfg.Service.Get()
			pterm.Success.Printfln("Saved %s", savedURL)
			if tok == "" {
				pterm.Warning.Println("No token stored yet; pass --username to set one")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&in.url, "url", "", "Service URL, e.g. https://read.example.com")
	cmd.Flags().StringVar(&in.username, "username", "", "Account username")
	cmd.Flags().StringVar(&in.password, "password", "", "Account password (prompted when --username is given alone)")
	cmd.Flags().BoolVar(&in.reset, "reset", false, "Remove the stored URL and token and restore browser defaults")
	cmd.MarkFlagsMutuallyExclusive("reset", "url")
	cmd.MarkFlagsMutuallyExclusive("reset", "username")
	return cmd
}

// prompter asks for one value; mask hides the input.
type prompter func(label, defaultValue string, mask bool) (string, error)

func promptText(label, defaultValue string, mask bool) (string, error) {
	input := pterm.DefaultInteractiveTextInput
	if mask {
		input = *input.WithMask("*")
	}
	if defaultValue != "" {
		input = *input.WithDefaultValue(defaultValue)
	}
	return input.Show(label)
}

// collectCredentials fills in whatever the flags left out.
func collectCredentials(cmd *cobra.Command, in *optionsInput, currentURL string, prompt prompter) (config.Credentials, error) {
	creds := config.Credentials{URL: in.url, Username: in.username, Password: in.password}

	if !cmd.Flags().Changed("url") {
		v, err := prompt("Service URL", currentURL, false)
		if err != nil {
			return creds, fmt.Errorf("failed to read service URL: %w", err)
		}
		creds.URL = v
	}
	if strings.TrimSpace(creds.URL) == "" {
		return creds, fmt.Errorf("a service URL is required")
	}

	if creds.Username != "" && !cmd.Flags().Changed("password") {
		v, err := prompt("Password", "", true)
		if err != nil {
			return creds, fmt.Errorf("failed to read password: %w", err)
		}
		creds.Password = v
	}
	return creds, nil
}

func newConfigCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			values, err := a.cfg.Source().Get(cmd.Context(), config.KeyURL, config.KeyToken)
			if err != nil {
				return err
			}
			settings := a.settings()
			for _, section := range a.cfg.Manager.GetSections() {
				pterm.DefaultSection.Println(section.Title())
				pterm.Println(pterm.Gray(section.Description()))
				if err := pterm.DefaultTable.WithHasHeader().WithData(sectionRows(section.ID(), values, settings)).Render(); err != nil {
					return err
				}
			}
			pterm.Println()
			pterm.Info.Printfln("Log file: %s", orUnset(a.logger.LogPath()))
			return nil
		},
	})
	return cmd
}

// sectionRows lists the effective values of one config section.
func sectionRows(id string, values map[string]string, s config.BrowserSettings) pterm.TableData {
	rows := pterm.TableData{{"Setting", "Value"}}
	switch id {
	case config.SectionIDService:
		rows = append(rows,
			[]string{"url", orUnset(values[config.KeyURL])},
			[]string{"token", orUnset(maskToken(values[config.KeyToken]))},
		)
	case config.SectionIDBrowser:
		rows = append(rows,
			[]string{"driver", s.Driver},
			[]string{"cdp url", orUnset(s.CDPURL)},
			[]string{"connect timeout", s.ConnectTimeout.String()},
			[]string{"feed readers", orUnset(s.FeedReaders)},
		)
	}
	return rows
}

func orUnset(v string) string {
	if v == "" {
		return pterm.Gray("(not set)")
	}
	return v
}

// maskToken keeps the first four characters.
func maskToken(tok string) string {
	if len(tok) <= 4 {
		return strings.Repeat("*", len(tok))
	}
	return tok[:4] + strings.Repeat("*", len(tok)-4)
}
