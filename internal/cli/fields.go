package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newFieldsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List the fields defined by the schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.storeConfig()
			if err != nil {
				return userError(err)
			}
			s, err := a.loadSchema(cfg)
			if err != nil {
				return err
			}

			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), s.Specs())
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FIELD\tCARRIER\tTYPE\tSTORE KEY\tOPERATORS")
			for _, f := range s.Fields() {
				spec := f.Spec()
				ops := ""
				for i, op := range f.Descriptor().Operators {
					if i > 0 {
						ops += ","
					}
					ops += string(op)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", spec.Name, spec.Carrier, spec.DataType, spec.StoreKey, ops)
			}
			return tw.Flush()
		},
	}
}
