package cli

import (
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/logimind/advisor/internal/domain"
)

func newAskCmd() *cobra.Command {
	var (
		sessionID      string
		language       string
		assessmentFile string
	)

	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Ask the advisor a single question and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")

			a, err := buildApp(assessmentFile)
			if err != nil {
				return err
			}
			defer a.close()

			if sessionID == "" {
				sessionID = "cli-" + uuid.NewString()
			}

			resp := a.orch.ProcessMessage(cmd.Context(), message, sessionID, nil, language)
			printResponse(cmd, resp)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session identifier (default: a fresh one per invocation)")
	cmd.Flags().StringVar(&language, "language", "", "reply language, en or vi (default: detected from the message)")
	cmd.Flags().StringVar(&assessmentFile, "assessment", "", "JSON file with the current risk assessment")
	return cmd
}

func printResponse(cmd *cobra.Command, resp *domain.Response) {
	cmd.Println(resp.Reply)

	for _, r := range resp.ToolResults {
		if r.Success {
			cmd.Printf("\n[%s] ok\n", r.Tool)
			if r.Result != nil {
				cmd.Printf("  %v\n", r.Result)
			}
		} else {
			cmd.Printf("\n[%s] failed: %s\n", r.Tool, r.Error)
		}
	}

	if len(resp.Suggestions) > 0 {
		cmd.Println("\nNext steps:")
		for _, s := range resp.Suggestions {
			cmd.Printf("  - %s (%s)\n", s.Label, s.Action)
		}
	}

	cmd.Printf("\n(model: %s, confidence: %.1f, %d ms)\n",
		resp.Metadata.Model, resp.Metadata.Confidence, resp.Metadata.ResponseTimeMs)
}
