package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/powervision/estoque/internal/domain"
	"github.com/powervision/estoque/internal/export"
	"github.com/powervision/estoque/internal/nav"
	"github.com/powervision/estoque/internal/screen"
	"github.com/powervision/estoque/internal/session"
	"github.com/powervision/estoque/internal/tui"
)

// credentials are the login flags shared by every products subcommand.
type credentials struct {
	username string
	password string
	token    string
}

func newProductsCmd() *cobra.Command {
	var creds credentials

	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"p"},
		Short:   "Manage products without the terminal UI",
	}
	cmd.PersistentFlags().StringVarP(&creds.username, "username", "u", "", "login username (default from config or ESTOQUE_USERNAME)")
	cmd.PersistentFlags().StringVar(&creds.password, "password", "", "login password (default from config, ESTOQUE_PASSWORD or a prompt)")
	cmd.PersistentFlags().StringVar(&creds.token, "token", "", "use this access token instead of logging in")

	cmd.AddCommand(
		newProductsListCmd(&creds),
		newProductsGetCmd(&creds),
		newProductsAddCmd(&creds),
		newProductsEditCmd(&creds),
		newProductsDeleteCmd(&creds),
		newProductsExportCmd(&creds),
	)
	return cmd
}

// withSession builds the app, logs in and runs fn. After a successful
// login the product list has already been fetched once.
func withSession(cmd *cobra.Command, creds *credentials, fn func(ctx context.Context, app *appEnv) error) error {
	cfg, err := initConfig()
	if err != nil {
		return err
	}
	app, err := buildApp(cfg, tui.NewPlainAlerter(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := signalContext()
	defer cancel()
	ctx = app.context(ctx)

	if creds.token != "" {
		app.session.SetToken(creds.token)
		app.session.SetUserID(session.UserIDFromToken(creds.token))
		if err := app.nav.Reset(ctx, nav.Products, nil); err != nil {
			return fmt.Errorf("list products: %w", err)
		}
	} else {
		user, pass, err := resolveCredentials(cmd, creds, cfg.Auth.Username, cfg.Auth.Password)
		if err != nil {
			return err
		}
		if err := app.nav.Reset(ctx, nav.Login, nil); err != nil {
			return err
		}
		if err := app.login.Submit(ctx, user, pass); err != nil {
			if domain.IsTransport(err) {
				return fmt.Errorf("login: cannot reach %s: %w", cfg.API.BaseURL, err)
			}
			return fmt.Errorf("login: %w", err)
		}
	}
	return fn(ctx, app)
}

// resolveCredentials picks flag > config/env > interactive prompt. The
// password prompt does not echo.
func resolveCredentials(cmd *cobra.Command, creds *credentials, cfgUser, cfgPass string) (string, string, error) {
	user := firstNonEmpty(creds.username, cfgUser)
	pass := firstNonEmpty(creds.password, cfgPass)
	if user != "" && pass != "" {
		return user, pass, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		// Empty values fall through to the login validation.
		return user, pass, nil
	}
	out := cmd.ErrOrStderr()
	if user == "" {
		fmt.Fprint(out, "Usuário: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", "", fmt.Errorf("read username: %w", err)
		}
		user = strings.TrimSpace(line)
	}
	if pass == "" {
		fmt.Fprint(out, "Senha: ")
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", "", fmt.Errorf("read password: %w", err)
		}
		pass = string(b)
	}
	return user, pass, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// outputWidth is the terminal width of stdout, or 0 when it is not a terminal.
func outputWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}

func newProductsListCmd(creds *credentials) *cobra.Command {
	var asCSV bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List products",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, creds, func(ctx context.Context, app *appEnv) error {
				products := app.list.Products()
				if asCSV {
					fmt.Fprintln(cmd.OutOrStdout(), export.CSV(products))
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), tui.ProductTable(products, -1, outputWidth()))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asCSV, "csv", false, "print CSV instead of a table")
	return cmd
}

func newProductsGetCmd(creds *credentials) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, creds, func(ctx context.Context, app *appEnv) error {
				p, err := app.client.GetProduct(ctx, domain.ProductID(args[0]))
				if errors.Is(err, domain.ErrNotFound) {
					return fmt.Errorf("%s (%s): %w", screen.MsgNotFound, args[0], err)
				}
				if err != nil {
					return fmt.Errorf("%s: %w", screen.MsgDetailFailed, err)
				}
				md := tui.ProductMarkdown(p)
				width := outputWidth()
				if raw || width == 0 {
					fmt.Fprint(cmd.OutOrStdout(), md)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), tui.RenderMarkdown(md, width))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown source")
	return cmd
}

func newProductsAddCmd(creds *credentials) *cobra.Command {
	var form screen.AddForm
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a product",
		Example: `  estoque products add --name Cabo --description USB --price 9,90 --quantity 2`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, creds, func(ctx context.Context, app *appEnv) error {
				app.list.OpenAdd()
				app.list.SetAddForm(form)
				if err := app.list.SubmitAdd(ctx); err != nil {
					return fmt.Errorf("add product: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d produtos cadastrados.\n", len(app.list.Products()))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "product name")
	cmd.Flags().StringVar(&form.Description, "description", "", "product description")
	cmd.Flags().StringVar(&form.Price, "price", "", "unit price, e.g. 10,50")
	cmd.Flags().StringVar(&form.Quantity, "quantity", "", "quantity in stock")
	return cmd
}

func newProductsEditCmd(creds *credentials) *cobra.Command {
	var name, description, price, quantity string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a product; unset flags keep the current values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, creds, func(ctx context.Context, app *appEnv) error {
				if err := app.list.Select(ctx, domain.ProductID(args[0])); err != nil {
					return fmt.Errorf("load product: %w", err)
				}
				flags := cmd.Flags()
				if flags.Changed("name") {
					app.detail.SetName(name)
				}
				if flags.Changed("description") {
					app.detail.SetDescription(description)
				}
				if flags.Changed("price") {
					app.detail.SetPrice(price)
				}
				if flags.Changed("quantity") {
					app.detail.SetQuantity(quantity)
				}
				if err := app.detail.Update(ctx); err != nil {
					return fmt.Errorf("update product: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Total: %s\n", app.detail.TotalLabel())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&price, "price", "", "new unit price, e.g. 10,50")
	cmd.Flags().StringVar(&quantity, "quantity", "", "new quantity")
	return cmd
}

func newProductsDeleteCmd(creds *credentials) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a product",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, creds, func(ctx context.Context, app *appEnv) error {
				id := domain.ProductID(args[0])
				app.list.RequestDelete(id)
				if !yes && !confirm(cmd, fmt.Sprintf("Excluir o produto %s? [s/N]: ", id)) {
					app.list.CancelDelete()
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelado.")
					return nil
				}
				if err := app.list.ConfirmDelete(ctx); err != nil {
					return fmt.Errorf("delete product: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d produtos cadastrados.\n", len(app.list.Products()))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// confirm asks question on stderr. Without a terminal it answers no.
func confirm(cmd *cobra.Command, question string) bool {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false
	}
	fmt.Fprint(cmd.ErrOrStderr(), question)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "s", "sim", "y", "yes":
		return true
	}
	return false
}

func newProductsExportCmd(creds *credentials) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export the product list as CSV and copy it to the clipboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, creds, func(ctx context.Context, app *appEnv) error {
				path, err := app.list.Export(ctx)
				if path != "" {
					fmt.Fprintln(cmd.OutOrStdout(), path)
				}
				if err != nil && !errors.Is(err, export.ErrShareUnavailable) {
					return fmt.Errorf("export products: %w", err)
				}
				return nil
			})
		},
	}
}
