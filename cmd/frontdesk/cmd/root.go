package cmd

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	pkgauth "github.com/BradenHooton/frontdesk/pkg/auth"
)

var (
	serverURL   string
	sessionFile string
	policyName  string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "frontdesk",
	Short: "Frontdesk admin client",
	Long: `Command line client for the frontdesk dashboard: unlock the PIN gate,
manage appointments and contact submissions, talk to the booking assistant
and run database migrations.`,
	SilenceUsage: true,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("FRONTDESK_URL", "http://localhost:8080"), "frontdesk API base URL")
	rootCmd.PersistentFlags().StringVar(&sessionFile, "session-file", defaultSessionFile(), "where the gate session is kept")
	rootCmd.PersistentFlags().StringVar(&policyName, "policy", envOr("GATE_SECRET_POLICY", string(pkgauth.PolicyShortNumeric)), "secret policy: none, short-numeric or full-password")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log diagnostics to stderr")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".frontdesk", "session.db")
	}
	return filepath.Join(home, ".frontdesk", "session.db")
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(rootCmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func secretPolicy() (pkgauth.SecretPolicy, error) {
	return pkgauth.ParseSecretPolicy(policyName)
}
