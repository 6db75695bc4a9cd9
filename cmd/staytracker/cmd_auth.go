package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jengzang/taste-records-go/internal/client"
	"github.com/jengzang/taste-records-go/internal/models"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and save the session",
	Long: `Log in to the API and save the session cookie to the state file.

The password is read from --password, then STAYTRACKER_PASSWORD, then
one line of standard input.`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and remove the state file",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user with stay and notification counts",
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account e-mail")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")
	_ = loginCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}

func readPassword(cmd *cobra.Command) (string, error) {
	if loginPassword != "" {
		return loginPassword, nil
	}
	if pw := os.Getenv("STAYTRACKER_PASSWORD"); pw != "" {
		return pw, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	password, err := readPassword(cmd)
	if err != nil {
		return err
	}

	_, store, err := newSession(cmd.Context())
	if err != nil {
		return err
	}
	user, err := store.Login(cmd.Context(), loginEmail, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", user.Nickname, user.Email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	_, store, err := newSession(cmd.Context())
	if err != nil {
		return err
	}
	if !store.IsLoggedIn() {
		fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
		return store.Reset()
	}
	if err := store.Logout(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	c, store, err := requireLogin(cmd.Context())
	if err != nil {
		return err
	}
	user := store.User()

	var (
		dash  *models.PersonalDashboard
		notes *client.NotificationList
	)
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		var err error
		dash, err = c.Dashboard().Personal(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		notes, err = c.Notifications().List(ctx, true)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s <%s> (id %d)\n", user.Nickname, user.Email, user.ID)
	fmt.Fprintf(out, "  stays:         %d (%s total)\n", dash.StayCount, formatMs(dash.TotalDwellMs))
	fmt.Fprintf(out, "  taste records: %d\n", dash.RecordCount)
	fmt.Fprintf(out, "  unread:        %d\n", notes.Unread)
	return nil
}
