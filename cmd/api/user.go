package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"accidentapi/internal/config"
	"accidentapi/internal/logger"
	"accidentapi/internal/model"
	"accidentapi/internal/service"
)

var (
	username string
	password string
	role     string
)

func newUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage back-office accounts",
	}
	cmd.AddCommand(newUserCreateCommand(), newUserListCommand())
	return cmd
}

func newUserCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin or agent account",
		RunE:  runUserCreate,
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Account name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password, at least 8 characters")
	cmd.Flags().StringVarP(&role, "role", "r", string(model.RoleAgent), "Role (admin or agent)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log := logger.Init(cfg.Logger, nil)

	store, err := openStore(cmd.Context(), cfg, log, true)
	if err != nil {
		return err
	}
	defer store.Close()

	// Only password hashing happens here, no tokens are signed.
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "unused"
	}
	auth, err := service.NewAuthService(store.Users(), cfg.Auth)
	if err != nil {
		return err
	}

	u, err := auth.CreateUser(cmd.Context(), username, password, model.Role(role))
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", u.Username, u.Role)
	return nil
}

func newUserListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List back-office accounts",
		Args:  cobra.NoArgs,
		RunE:  runUserList,
	}
}

func runUserList(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log := logger.Init(cfg.Logger, nil)

	store, err := openStore(cmd.Context(), cfg, log, true)
	if err != nil {
		return err
	}
	defer store.Close()

	users, err := store.Users().List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	return printUsers(cmd.OutOrStdout(), users)
}

func printUsers(out io.Writer, users []model.User) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "USERNAME\tROLE\tCREATED")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\n", u.Username, u.Role, u.CreatedAt.UTC().Format(time.RFC3339))
	}
	return w.Flush()
}
