package cmd

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/BradenHooton/frontdesk/pkg/dashboard"
	"github.com/BradenHooton/frontdesk/pkg/dto"
	"github.com/BradenHooton/frontdesk/pkg/gate"
)

var (
	contactsStatus string
	contactsPage   int
)

var contactsCmd = &cobra.Command{
	Use:     "contacts",
	Aliases: []string{"contactos"},
	Short:   "List and triage contact form submissions",
}

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contact submissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDashboard(cmd.Context(), func(s *session, l *dashboard.Loader) error {
			contacts, err := l.LoadContacts(cmd.Context())
			if err != nil {
				return loadFailed(l, err)
			}

			out := cmd.OutOrStdout()
			page := dashboard.Paginate(dashboard.FilterContacts(contacts, contactsStatus), contactsPage, dashboard.PageSize)
			printContacts(out, page.Items)
			fmt.Fprintf(out, "\nPágina %d de %d (%d registros)\n", page.Number, page.TotalPages, page.Total)
			return nil
		})
	},
}

func printContacts(out io.Writer, contacts []*dto.ContactSubmission) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFECHA\tNOMBRE\tEMAIL\tTELÉFONO\tCIUDAD\tESTADO")
	for _, c := range contacts {
		city := c.City
		if city == "" {
			city = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.CreatedAt.Format("02/01/2006"), c.Name, c.Email, dashboard.FormatPhone(c.Phone), city, c.Status)
	}
	tw.Flush()
}

var contactsStatusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Move a submission to Nuevo, En Proceso or Completado",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseRecordID(args[0])
		if err != nil {
			return err
		}
		status := args[1]
		if !dto.ValidContactStatus(status) {
			return fmt.Errorf("unknown status %q (want one of: %s)", status, strings.Join(dto.ContactStatuses, ", "))
		}

		return withDashboard(cmd.Context(), func(s *session, l *dashboard.Loader) error {
			updated, err := l.UpdateContactStatus(cmd.Context(), id, status)
			if err != nil {
				return describeAPIError(err)
			}
			printContacts(cmd.OutOrStdout(), []*dto.ContactSubmission{updated})
			return nil
		})
	},
}

// describeAPIError spells out per-field validation failures.
func describeAPIError(err error) error {
	var httpErr *gate.HTTPError
	if !errors.As(err, &httpErr) || len(httpErr.Fields) == 0 {
		return err
	}

	fields := make([]string, 0, len(httpErr.Fields))
	for f := range httpErr.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString(httpErr.Message)
	for _, f := range fields {
		fmt.Fprintf(&b, "\n  %s: %s", f, httpErr.Fields[f])
	}
	return errors.New(b.String())
}

func init() {
	contactsListCmd.Flags().StringVar(&contactsStatus, "status", dashboard.FilterAll, "only show this status (Nuevo, En Proceso, Completado)")
	contactsListCmd.Flags().IntVar(&contactsPage, "page", 1, "page to show")

	contactsCmd.AddCommand(contactsListCmd)
	contactsCmd.AddCommand(contactsStatusCmd)
	rootCmd.AddCommand(contactsCmd)
}
