package cmd

import (
	"github.com/lehigh-university-libraries/bookresolver/internal/evalcmd"
	"github.com/spf13/cobra"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Title resolution evaluation tools",
		Long: `Evaluation tools for measuring how often the resolver ranks the right
catalog entry first.

Supports running labelled samples through the resolver, inspecting datasets,
and reporting on saved runs so threshold changes can be compared.`,
	}

	cmd.AddCommand(evalcmd.NewRunCmd())
	cmd.AddCommand(evalcmd.NewReportCmd())
	cmd.AddCommand(evalcmd.NewInspectCmd())

	return cmd
}
