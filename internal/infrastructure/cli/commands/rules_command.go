package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewRulesCommand creates the rules command
func NewRulesCommand(deps *Deps) *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect the safety rules",
	}

	rulesCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List active safety rules in evaluation order",
			RunE: func(cmd *cobra.Command, args []string) error {
				container, err := deps.Container(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, rule := range container.Classifier.Rules() {
					fmt.Fprintf(out, "%-24s %s\n", rule.ID, rule.Description)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "check <command>",
			Short: "Classify a command without running it",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				container, err := deps.Container(cmd.Context())
				if err != nil {
					return err
				}
				verdict := container.Classifier.Classify(strings.Join(args, " "))
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "risk: %s\n", verdict.Level)
				if verdict.MatchedRule != "" {
					fmt.Fprintf(out, "rule: %s\n", verdict.MatchedRule)
					fmt.Fprintf(out, "reason: %s\n", verdict.Description)
				}
				return nil
			},
		},
	)

	return rulesCmd
}
