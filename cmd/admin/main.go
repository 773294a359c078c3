package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"expense-ledger/internal/config"
	"expense-ledger/internal/database"
	"expense-ledger/internal/model"
	"expense-ledger/internal/service"
	"expense-ledger/internal/store"

	"github.com/spf13/cobra"
)

var (
	loadConfig     = config.Load
	newPgxPool     = database.NewPgxPool
	runMigrations  = database.RunMigrations
	rollbackAll    = database.RollbackAll
	authorizeEmail = service.AuthorizeEmail
	revokeEmail    = service.RevokeEmail
	bootstrapAdmin = service.BootstrapAdmin
	listUsers      = store.ListUsers
	exitFunc       = os.Exit
	osArgs         = os.Args
)

func databaseURL() (string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.DatabaseURL == "" {
		return "", errors.New("DATABASE_URL is required")
	}
	return cfg.DatabaseURL, nil
}

// withDB opens the pool for the duration of fn.
func withDB(ctx context.Context, fn func(database.DB) error) error {
	url, err := databaseURL()
	if err != nil {
		return err
	}
	db, err := newPgxPool(ctx, url)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

func describe(u *model.User) string {
	return fmt.Sprintf("%s <%s> (%s)", u.Name, u.Email, u.State())
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ledger-admin",
		Short:         "Administrative tasks for the expense ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newUsersCmd(), newAdminCmd(), newMigrateCmd())
	return root
}

func newUsersCmd() *cobra.Command {
	users := &cobra.Command{Use: "users", Short: "Manage who may sign in"}

	var name string
	var admin bool
	authorize := &cobra.Command{
		Use:   "authorize <email>",
		Short: "Authorize an account, creating it when absent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(db database.DB) error {
				u, created, err := authorizeEmail(cmd.Context(), db, args[0], name, admin)
				if err != nil {
					return err
				}
				verb := "authorized"
				if created {
					verb = "created"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, describe(u))
				return nil
			})
		},
	}
	authorize.Flags().StringVar(&name, "name", "", "display name for a new account (defaults to the email local part)")
	authorize.Flags().BoolVar(&admin, "admin", false, "also grant administrator rights")

	revoke := &cobra.Command{
		Use:   "revoke <email>",
		Short: "Revoke access for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(db database.DB) error {
				u, err := revokeEmail(cmd.Context(), db, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "revoked %s\n", describe(u))
				return nil
			})
		},
	}

	var onlyAuthorized, onlyUnauthorized, onlyAdmins bool
	var search string
	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := store.UserFilter{Search: search}
			yes, no := true, false
			switch {
			case onlyAuthorized:
				f.Authorized = &yes
			case onlyUnauthorized:
				f.Authorized = &no
			}
			if onlyAdmins {
				f.Admin = &yes
			}
			return withDB(cmd.Context(), func(db database.DB) error {
				return printUsers(cmd.Context(), cmd.OutOrStdout(), db, f)
			})
		},
	}
	list.Flags().BoolVar(&onlyAuthorized, "authorized", false, "only authorized accounts")
	list.Flags().BoolVar(&onlyUnauthorized, "unauthorized", false, "only accounts without access")
	list.Flags().BoolVar(&onlyAdmins, "admins", false, "only administrators")
	list.Flags().StringVar(&search, "search", "", "match name or email")
	list.MarkFlagsMutuallyExclusive("authorized", "unauthorized")

	users.AddCommand(authorize, revoke, list)
	return users
}

// printUsers walks every page of the filter.
func printUsers(ctx context.Context, out io.Writer, db database.Querier, f store.UserFilter) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSTATE")
	for page := 1; ; page++ {
		f.Page = store.NewPage(page, store.MaxPerPage)
		res, err := listUsers(ctx, db, f)
		if err != nil {
			return err
		}
		for _, u := range res.Items {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.State())
		}
		if page >= res.LastPage {
			break
		}
	}
	return w.Flush()
}

func newAdminCmd() *cobra.Command {
	admin := &cobra.Command{Use: "admin", Short: "Administrator accounts"}

	var name, password string
	bootstrap := &cobra.Command{
		Use:   "bootstrap <email>",
		Short: "Create the first administrator, or promote an existing account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(db database.DB) error {
				u, err := bootstrapAdmin(cmd.Context(), db, args[0], name, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "administrator %s\n", describe(u))
				return nil
			})
		},
	}
	bootstrap.Flags().StringVar(&name, "name", "", "display name")
	bootstrap.Flags().StringVar(&password, "password", "", "password for email sign in (min 8 characters)")
	_ = bootstrap.MarkFlagRequired("name")

	admin.AddCommand(bootstrap)
	return admin
}

func newMigrateCmd() *cobra.Command {
	migrate := &cobra.Command{Use: "migrate", Short: "Apply or roll back database migrations"}
	migrate.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				url, err := databaseURL()
				if err != nil {
					return err
				}
				if err := runMigrations(url); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				url, err := databaseURL()
				if err != nil {
					return err
				}
				if err := rollbackAll(url); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations rolled back")
				return nil
			},
		},
	)
	return migrate
}

func execute(args []string, out, errOut io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	if code := execute(osArgs[1:], os.Stdout, os.Stderr); code != 0 {
		exitFunc(code)
	}
}
