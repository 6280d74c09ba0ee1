package cli

import (
	"fmt"

	"imagestudio/internal/core/domain"

	"github.com/spf13/cobra"
)

func modelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the available models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, m := range domain.Models() {
				marker := ""
				if m.ID == domain.DefaultModel {
					marker = " " + a.ui.ok("(default)")
				}
				fmt.Fprintf(out, "%s%s  %s\n", a.ui.title(m.ID), marker, m.Name)
				fmt.Fprintf(out, "  %s\n", m.Description)
				fmt.Fprintf(out, "  %s\n", a.ui.dim(m.UpstreamName))
			}
			return nil
		},
	}
}
