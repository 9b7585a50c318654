package cli

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	var (
		sessionID      string
		language       string
		assessmentFile string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation with the advisor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(assessmentFile)
			if err != nil {
				return err
			}
			defer a.close()

			if sessionID == "" {
				sessionID = "chat-" + uuid.NewString()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cmd.Printf("Session %s. Type 'exit' to leave.\n", sessionID)
			scanner := bufio.NewScanner(os.Stdin)

			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					break
				}
				if ctx.Err() != nil {
					break
				}

				resp := a.orch.ProcessMessage(ctx, line, sessionID, nil, language)
				printResponse(cmd, resp)
			}
			return scanner.Err()
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session identifier (default: a fresh one per run)")
	cmd.Flags().StringVar(&language, "language", "", "reply language, en or vi (default: detected per message)")
	cmd.Flags().StringVar(&assessmentFile, "assessment", "", "JSON file with the current risk assessment")
	return cmd
}
