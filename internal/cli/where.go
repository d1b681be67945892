package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/satchel/pkg/predicate"
)

func newWhereCmd(a *app) *cobra.Command {
	var dialect string
	cmd := &cobra.Command{
		Use:   "where <field> <op> [value...]",
		Short: "Print the SQL fragment for a field predicate",
		Long: `Where renders the predicate "field op values" for a SQL dialect without
touching the store. The dialect defaults to the configured backend.

Example:
  satchel where price between 10 20
  satchel where tags contains sale --dialect postgres`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.storeConfig()
			if err != nil {
				return userError(err)
			}
			s, err := a.loadSchema(cfg)
			if err != nil {
				return err
			}
			if dialect == "" {
				dialect = cfg.Backend
			}
			d, err := predicate.DialectByName(dialect)
			if err != nil {
				return userError(err)
			}

			p, err := buildPredicate(s, args[0], args[1], args[2:])
			if err != nil {
				return classify(err)
			}
			frag, err := predicate.Render(d, p)
			if err != nil {
				return classify(err)
			}

			out := cmd.OutOrStdout()
			if a.flags.jsonMode {
				return writeJSON(out, map[string]any{
					"dialect":   d.Name(),
					"predicate": p.String(),
					"sql":       frag.SQL,
					"args":      frag.Args,
				})
			}
			fmt.Fprintln(out, frag.SQL)
			for i, arg := range frag.Args {
				fmt.Fprintf(out, "  %s = %v\n", d.Placeholder(i+1), arg)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dialect, "dialect", "", "SQL dialect: postgres or sqlite")
	return cmd
}
