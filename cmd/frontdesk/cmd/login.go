package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BradenHooton/frontdesk/pkg/gate"
)

var (
	loginPIN        string
	loginRememberMe bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Unlock the dashboard gate",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.gate.Load(ctx); err != nil {
			return err
		}
		if s.gate.State() == gate.StateAuthenticated {
			fmt.Fprintln(cmd.OutOrStdout(), "Already logged in.")
			return nil
		}

		pin, err := readLine(cmd.InOrStdin(), cmd.ErrOrStderr(), "PIN", loginPIN)
		if err != nil {
			return err
		}

		s.gate.SetRememberMe(loginRememberMe)
		s.gate.SetInput(pin)
		if err := s.gate.Submit(ctx); err != nil {
			var lockout *gate.RateLimitError
			if errors.As(err, &lockout) && lockout.Minutes > 0 {
				return fmt.Errorf("locked out for %d minutes: %s", lockout.Minutes, lockout.Message)
			}
			if msg := s.gate.View().Error; msg != "" {
				return errors.New(msg)
			}
			return err
		}

		if err := s.save(); err != nil {
			return fmt.Errorf("logged in but failed to save session: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in (remember me: %t).\n", s.gate.View().RememberMeChecked)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the saved session is still valid",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.gate.Load(cmd.Context()); err != nil {
			return err
		}

		vm := s.gate.View()
		out := cmd.OutOrStdout()
		if vm.DashboardVisible {
			fmt.Fprintf(out, "Authenticated (remember me: %t)\n", vm.RememberMeChecked)
			return nil
		}
		fmt.Fprintln(out, "Not authenticated")
		if vm.Error != "" {
			fmt.Fprintln(out, vm.Error)
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the dashboard session",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.gate.Logout(cmd.Context()); err != nil {
			return err
		}
		if err := s.save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginPIN, "pin", "", "PIN or password (prompted when omitted)")
	loginCmd.Flags().BoolVar(&loginRememberMe, "remember-me", false, "keep the session for the remember-me period")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(logoutCmd)
}
