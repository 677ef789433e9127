package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/powervision/estoque/internal/api"
	"github.com/powervision/estoque/internal/config"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Interactive configuration wizard",
		Long:  "Guides you through setting up estoque: API address, login and export directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd)
		},
	}
}

func runInit(cmd *cobra.Command) error {
	reader := bufio.NewReader(os.Stdin)
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Welcome to the estoque configuration wizard!")
	fmt.Fprintln(out)

	ask := func(prompt, def string) string {
		if def != "" {
			fmt.Fprintf(out, "%s [%s]: ", prompt, def)
		} else {
			fmt.Fprintf(out, "%s: ", prompt)
		}
		input, _ := reader.ReadString('\n')
		if input = strings.TrimSpace(input); input != "" {
			return input
		}
		return def
	}

	current, err := config.Load(cfgFile)
	if err != nil {
		current = config.DefaultConfig()
	}

	var a config.InitAnswers
	a.BaseURL = ask("API base URL", current.API.BaseURL)
	if _, err := api.ParseBaseURL(a.BaseURL); err != nil {
		return err
	}
	a.Username = ask("Username", current.Auth.Username)

	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprint(out, "Password (leave empty to be asked every time): ")
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		a.Password = string(b)
		a.SavePassword = a.Password != ""
	}
	a.ExportDir = ask("CSV export directory (empty = system temp dir)", current.Export.Dir)

	path := cfgFile
	if path == "" {
		if path, err = config.DefaultPath(); err != nil {
			return err
		}
	}
	if err := config.SaveToFile(path, a); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nConfig saved to %s\n", path)
	fmt.Fprintln(out, "You can now run: estoque")
	return nil
}
