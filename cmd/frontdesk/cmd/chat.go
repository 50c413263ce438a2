package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BradenHooton/frontdesk/pkg/chat"
	"github.com/BradenHooton/frontdesk/pkg/gate"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the booking assistant",
	Long:  `Opens an interactive session with the booking assistant. Type "salir" or send EOF to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := gate.NewClient(serverURL, nil)
		if err != nil {
			return err
		}
		conv := chat.NewConversation(client, newLogger())

		out := cmd.OutOrStdout()
		in := bufio.NewScanner(cmd.InOrStdin())
		fmt.Fprint(out, "> ")
		for in.Scan() {
			line := strings.TrimSpace(in.Text())
			if strings.EqualFold(line, "salir") || strings.EqualFold(line, "exit") {
				break
			}
			if line != "" {
				// failures already come back as the apology text
				reply, _ := conv.Send(cmd.Context(), line)
				fmt.Fprintf(out, "%s\n\n", reply)
			}
			fmt.Fprint(out, "> ")
		}
		fmt.Fprintln(out)
		return in.Err()
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
