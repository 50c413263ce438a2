package cmd

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/BradenHooton/frontdesk/pkg/dashboard"
	"github.com/BradenHooton/frontdesk/pkg/dto"
)

var (
	listStatus string
	listPage   int

	apptStatus  string
	apptDate    string
	apptTime    string
	apptName    string
	apptEmail   string
	apptPhone   string
	apptService string
)

var appointmentsCmd = &cobra.Command{
	Use:     "appointments",
	Aliases: []string{"citas"},
	Short:   "List and manage appointments",
}

var appointmentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List appointments with summary counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDashboard(cmd.Context(), func(s *session, l *dashboard.Loader) error {
			appts, err := l.LoadAppointments(cmd.Context())
			if err != nil {
				return loadFailed(l, err)
			}

			out := cmd.OutOrStdout()
			sum := dashboard.Summarize(appts, time.Now())
			fmt.Fprintf(out, "Total: %d  Hoy: %d  Próximas: %d\n\n", sum.Total, sum.Today, sum.Upcoming)

			page := dashboard.Paginate(dashboard.FilterAppointments(appts, listStatus), listPage, dashboard.PageSize)
			printAppointments(out, page.Items)
			fmt.Fprintf(out, "\nPágina %d de %d (%d registros)\n", page.Number, page.TotalPages, page.Total)
			return nil
		})
	},
}

func printAppointments(out io.Writer, appts []*dto.Appointment) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFECHA\tHORA\tNOMBRE\tEMAIL\tTELÉFONO\tSERVICIO\tESTADO")
	for _, a := range appts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.Date, a.Time, a.Name, a.Email, dashboard.FormatPhone(a.Phone), a.Service, a.Status)
	}
	tw.Flush()
}

var appointmentsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit an appointment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseRecordID(args[0])
		if err != nil {
			return err
		}

		var changes dashboard.AppointmentChanges
		flags := cmd.Flags()
		set := func(name string, value string, dst **string) {
			if flags.Changed(name) {
				v := value
				*dst = &v
			}
		}
		set("status", apptStatus, &changes.Status)
		set("date", apptDate, &changes.Date)
		set("time", apptTime, &changes.Time)
		set("name", apptName, &changes.Name)
		set("email", apptEmail, &changes.Email)
		set("phone", apptPhone, &changes.Phone)
		set("service", apptService, &changes.Service)

		if changes == (dashboard.AppointmentChanges{}) {
			return fmt.Errorf("nothing to update")
		}

		return withDashboard(cmd.Context(), func(s *session, l *dashboard.Loader) error {
			updated, err := l.UpdateAppointment(cmd.Context(), id, changes)
			if err != nil {
				return describeAPIError(err)
			}
			printAppointments(cmd.OutOrStdout(), []*dto.Appointment{updated})
			return nil
		})
	},
}

var appointmentsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an appointment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseRecordID(args[0])
		if err != nil {
			return err
		}
		return withDashboard(cmd.Context(), func(s *session, l *dashboard.Loader) error {
			if err := l.DeleteAppointment(cmd.Context(), id); err != nil {
				return describeAPIError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Appointment %d deleted.\n", id)
			return nil
		})
	},
}

func parseRecordID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func init() {
	appointmentsListCmd.Flags().StringVar(&listStatus, "status", dashboard.FilterAll, "only show this status (Pendiente, Confirmada, Cancelada, Completada)")
	appointmentsListCmd.Flags().IntVar(&listPage, "page", 1, "page to show")

	f := appointmentsUpdateCmd.Flags()
	f.StringVar(&apptStatus, "status", "", "new status")
	f.StringVar(&apptDate, "date", "", "new date (YYYY-MM-DD)")
	f.StringVar(&apptTime, "time", "", "new time (HH:MM)")
	f.StringVar(&apptName, "name", "", "new customer name")
	f.StringVar(&apptEmail, "email", "", "new customer email")
	f.StringVar(&apptPhone, "phone", "", "new customer phone")
	f.StringVar(&apptService, "service", "", "new service")

	appointmentsCmd.AddCommand(appointmentsListCmd)
	appointmentsCmd.AddCommand(appointmentsUpdateCmd)
	appointmentsCmd.AddCommand(appointmentsDeleteCmd)
	rootCmd.AddCommand(appointmentsCmd)
}
