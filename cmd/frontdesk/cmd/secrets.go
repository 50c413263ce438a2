package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BradenHooton/frontdesk/internal/auth"
	pkgauth "github.com/BradenHooton/frontdesk/pkg/auth"
)

var (
	hashPIN string

	totpIssuer  string
	totpAccount string
	totpOut     string
	totpSize    int
)

var hashPINCmd = &cobra.Command{
	Use:   "hash-pin",
	Short: "Print a bcrypt hash for ADMIN_PIN_HASH",
	RunE: func(cmd *cobra.Command, args []string) error {
		policy, err := secretPolicy()
		if err != nil {
			return err
		}

		pin, err := readLine(cmd.InOrStdin(), cmd.ErrOrStderr(), "PIN", hashPIN)
		if err != nil {
			return err
		}
		if err := policy.Validate(pin); err != nil {
			return err
		}

		hash, err := pkgauth.HashSecret(pin)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

var totpEnrollCmd = &cobra.Command{
	Use:   "totp-enroll",
	Short: "Generate ADMIN_TOTP_SECRET and its provisioning QR code",
	RunE: func(cmd *cobra.Command, args []string) error {
		enrollment, err := auth.GenerateTOTPEnrollment(totpIssuer, totpAccount, totpSize)
		if err != nil {
			return err
		}
		if err := os.WriteFile(totpOut, enrollment.QRCode, 0o600); err != nil {
			return fmt.Errorf("failed to write QR code: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ADMIN_TOTP_SECRET=%s\n", enrollment.Secret)
		fmt.Fprintf(out, "GATE_SECRET_MODE=totp\n")
		fmt.Fprintf(out, "QR code written to %s\n", totpOut)
		fmt.Fprintf(out, "URL: %s\n", enrollment.URL)
		return nil
	},
}

func init() {
	hashPINCmd.Flags().StringVar(&hashPIN, "pin", "", "PIN to hash (prompted when omitted)")

	totpEnrollCmd.Flags().StringVar(&totpIssuer, "issuer", "Frontdesk", "issuer shown in the authenticator app")
	totpEnrollCmd.Flags().StringVar(&totpAccount, "account", "admin", "account name shown in the authenticator app")
	totpEnrollCmd.Flags().StringVar(&totpOut, "out", "", "PNG file for the QR code")
	totpEnrollCmd.Flags().IntVar(&totpSize, "size", 256, "QR code size in pixels")
	_ = totpEnrollCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(hashPINCmd)
	rootCmd.AddCommand(totpEnrollCmd)
}
