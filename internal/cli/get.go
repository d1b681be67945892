package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/satchel/pkg/schema"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a record by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.attach(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.close()

			rec, err := sess.store.Get(cmd.Context(), args[0])
			if err != nil {
				return classify(err)
			}
			if a.flags.jsonMode {
				projected, err := recordJSON(sess.schema, rec)
				if err != nil {
					return classify(err)
				}
				return writeJSON(cmd.OutOrStdout(), projected)
			}
			return printRecord(cmd, sess.schema, rec)
		},
	}
}

// printRecord writes the ID and the stored fields of rec, one per line.
func printRecord(cmd *cobra.Command, s *schema.Schema, rec *types.Record) error {
	names, err := presentFields(s, rec)
	if err != nil {
		return classify(err)
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "id\t%s\n", rec.RecordID)
	for _, name := range names {
		v, err := s.Get(rec, name)
		if err != nil {
			return classify(err)
		}
		fmt.Fprintf(tw, "%s\t%s\n", name, formatValue(v))
	}
	return tw.Flush()
}
