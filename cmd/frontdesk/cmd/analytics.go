package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/BradenHooton/frontdesk/pkg/dashboard"
)

var analyticsCmd = &cobra.Command{
	Use:     "analytics",
	Aliases: []string{"estadisticas"},
	Short:   "Show booking and inquiry statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDashboard(cmd.Context(), func(s *session, l *dashboard.Loader) error {
			appts, err := l.LoadAnalytics(cmd.Context())
			if err != nil {
				return loadFailed(l, err)
			}
			inquiries, err := l.LoadInquiryAnalytics(cmd.Context())
			if err != nil {
				return loadFailed(l, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Citas")
			fmt.Fprintf(out, "  Total: %d  Último mes: %d  Hoy: %d  Próximas: %d\n",
				appts.Total, appts.Monthly, appts.Today, appts.Upcoming)
			printCounts(out, "SERVICIO", appts.ServiceLabels, appts.ServiceCounts)

			fmt.Fprintln(out, "\nConsultas")
			fmt.Fprintf(out, "  Total: %d  Último mes: %d  Abiertas: %d\n",
				inquiries.Total, inquiries.Monthly, inquiries.Open)
			printCounts(out, "ESTADO", inquiries.StatusLabels, inquiries.StatusCounts)
			printCounts(out, "PROVINCIA", inquiries.ProvinceLabels, inquiries.ProvinceCounts)
			return nil
		})
	},
}

// loadFailed prefixes the dashboard's warning, when it set one.
func loadFailed(l *dashboard.Loader, err error) error {
	if w := l.Warning(); w != "" {
		return fmt.Errorf("%s (%w)", w, err)
	}
	return err
}

func printCounts(out io.Writer, heading string, labels []string, counts []int) {
	if len(labels) == 0 {
		return
	}
	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "  %s\tCANTIDAD\n", heading)
	for i, label := range labels {
		if i < len(counts) {
			fmt.Fprintf(tw, "  %s\t%d\n", label, counts[i])
		}
	}
	tw.Flush()
}

func init() {
	rootCmd.AddCommand(analyticsCmd)
}
