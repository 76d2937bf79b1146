// Package profiles implements the profiles command, which lists the
// configured business contexts.
package profiles

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/tradematch/internal/appcontext"
	"github.com/agentstation/tradematch/internal/cmd/output"
	"github.com/agentstation/tradematch/pkg/errors"
)

// NewCommand creates the profiles command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var regime string

	cmd := &cobra.Command{
		Use:     "profiles",
		GroupID: "core",
		Short:   "List business contexts",
		Example: `  tradematch profiles
  tradematch profiles --regime MAS -o yaml
  tradematch profiles --profiles ./contexts.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := app.Profiles()
			if err != nil {
				return err
			}

			list := output.ProfileList{}
			for _, c := range reg.All() {
				if regime == "" || strings.EqualFold(c.Regime, regime) {
					list = append(list, c)
				}
			}
			if len(list) == 0 {
				return errors.NewNotFoundError("regime", regime)
			}
			return output.NewFormatter(output.Format(app.OutputFormat())).Format(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().StringVarP(&regime, "regime", "r", "", "only list contexts of this regime")
	return cmd
}
