package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/satchel/pkg/predicate"
)

func newListCmd(a *app) *cobra.Command {
	var where []string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records, optionally filtered",
		Long: `List prints the records matching every --where filter, ordered by ID.

A filter is field:op[:value]. Between, in and contains take comma-separated
values. Without filters every record is listed.

Example:
  satchel list
  satchel list --where price:lt:20
  satchel list --where price:between:10,20 --where tags:contains:sale
  satchel list --where tags:present`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.attach(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.close()

			preds := make([]predicate.Predicate, 0, len(where))
			for _, expr := range where {
				p, err := parseWhere(sess.schema, expr)
				if err != nil {
					return classify(err)
				}
				preds = append(preds, p)
			}

			recs, err := sess.store.Fetch(cmd.Context(), preds...)
			if err != nil {
				return classify(err)
			}

			out := cmd.OutOrStdout()
			if a.flags.jsonMode {
				items := make([]map[string]any, 0, len(recs))
				for _, rec := range recs {
					projected, err := recordJSON(sess.schema, rec)
					if err != nil {
						return classify(err)
					}
					items = append(items, projected)
				}
				return writeJSON(out, items)
			}

			for _, rec := range recs {
				names, err := presentFields(sess.schema, rec)
				if err != nil {
					return classify(err)
				}
				pairs := make([]string, 0, len(names))
				for _, name := range names {
					v, err := sess.schema.Get(rec, name)
					if err != nil {
						return classify(err)
					}
					pairs = append(pairs, name+"="+formatValue(v))
				}
				fmt.Fprintf(out, "%s\t%s\n", rec.RecordID, strings.Join(pairs, " "))
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&where, "where", nil, "filter field:op[:value] (repeatable, ANDed)")
	return cmd
}
