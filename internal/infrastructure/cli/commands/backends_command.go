package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/doeshing/nlsh/internal/app"
	"github.com/doeshing/nlsh/internal/application/prompt"
	"github.com/doeshing/nlsh/internal/domain"
	"github.com/doeshing/nlsh/internal/infrastructure/ai"
	"github.com/doeshing/nlsh/internal/ports"
)

// probeUtterance is sent by `backends test`; any parseable answer passes.
const probeUtterance = "print the current directory"

// NewBackendsCommand lists backends and can probe one of them.
func NewBackendsCommand(deps *Deps) *cobra.Command {
	backendsCmd := &cobra.Command{
		Use:   "backends",
		Short: "List configured backends in preference order",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := deps.Container(cmd.Context())
			if err != nil {
				return err
			}
			return listBackends(cmd.OutOrStdout(), container)
		},
	}

	backendsCmd.AddCommand(&cobra.Command{
		Use:   "test <name>",
		Short: "Send a probe request to one backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := deps.Container(cmd.Context())
			if err != nil {
				return err
			}
			return testBackend(cmd.Context(), cmd.OutOrStdout(), container, args[0])
		},
	})

	return backendsCmd
}

func listBackends(out io.Writer, container *app.Container) error {
	cfg := container.Config
	order := cfg.PreferenceOrder()
	rank := make(map[string]int, len(order))
	for i, name := range order {
		rank[name] = i + 1
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tNAME\tKIND\tMODEL\tENDPOINT\tCREDENTIALS")
	for _, def := range cfg.Backends {
		position := "-"
		if n, ok := rank[def.Name]; ok {
			position = fmt.Sprint(n)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			position,
			def.Name,
			def.Kind,
			def.ResolvedModel(),
			def.ResolvedEndpoint(),
			credentialStatus(def))
	}
	return tw.Flush()
}

func credentialStatus(def domain.BackendDefinition) string {
	if !def.Kind.IsCloud() {
		return "not needed"
	}
	if ai.HasCredentials(def) {
		return "set"
	}
	return "missing (" + strings.Join(def.AuthEnvVars(), " or ") + ")"
}

// testBackend sends one real request and reports the raw reply.
func testBackend(ctx context.Context, out io.Writer, container *app.Container, name string) error {
	def, ok := container.Config.FindBackendByName(name)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrBackendNotFound, name)
	}
	backend, err := container.Backends.ForBackend(def)
	if err != nil {
		return err
	}
	if pinger, ok := backend.(ports.Pinger); ok {
		if err := pinger.Ping(ctx); err != nil {
			return fmt.Errorf("backend %s unreachable: %w", name, err)
		}
	}

	text, err := prompt.NewBuilder(prompt.OptionsFromConfig(container.Config)).Build(domain.PipelineRequest{
		Utterance: probeUtterance,
		Shell:     container.Shell,
	})
	if err != nil {
		return err
	}
	reply, err := backend.Generate(ctx, ports.GenerateRequest{Prompt: text, Shell: container.Shell})
	if err != nil {
		return fmt.Errorf("backend %s test failed: %w", name, err)
	}
	fmt.Fprintf(out, "Backend %s responded:\n%s\n", name, strings.TrimSpace(reply))
	return nil
}
