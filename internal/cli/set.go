package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/satchel/pkg/schema"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

func newSetCmd(a *app) *cobra.Command {
	var keep, unset []string
	cmd := &cobra.Command{
		Use:   "set <id|-> [field=value...]",
		Short: "Create or update a record",
		Long: `Set assigns fields on the record with the given ID, creating it if
needed. Use - as the ID to create a record with a generated ID.

Values are cast by the field's type. Arrays take a JSON list or
comma-separated elements; hashes take a JSON object.

After the assignments, --unset removes fields and --keep reverts fields to
their stored values. The per-field changes are reported before saving.

Example:
  satchel set - name=widget price=10 tags=red,sale
  satchel set 0192... price=12 --keep name
  satchel set 0192... --unset tags`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := a.attach(ctx)
			if err != nil {
				return err
			}
			defer sess.close()
			s := sess.schema

			rec, existed, err := loadOrNew(cmd, sess, args[0])
			if err != nil {
				return err
			}

			for _, arg := range args[1:] {
				name, raw, err := parseAssignment(arg)
				if err != nil {
					return userError(err)
				}
				if err := assign(s, rec, name, raw); err != nil {
					return classify(err)
				}
			}
			for _, name := range unset {
				if err := s.Set(rec, name, nil); err != nil {
					return classify(err)
				}
			}
			for _, name := range keep {
				f, err := s.Field(name)
				if err != nil {
					return classify(err)
				}
				f.Revert(rec)
			}

			changes, err := s.Changes(rec)
			if err != nil {
				return classify(err)
			}
			if existed && len(changes) == 0 {
				a.log.Debug("nothing to save", "id", rec.RecordID)
			} else if err := sess.store.Save(ctx, rec); err != nil {
				return classify(err)
			}
			return a.printChanges(cmd, s, rec, changes)
		},
	}
	cmd.Flags().StringArrayVar(&keep, "keep", nil, "revert this field after assignment (repeatable)")
	cmd.Flags().StringArrayVar(&unset, "unset", nil, "remove this field from the record (repeatable)")
	return cmd
}

// loadOrNew returns the stored record for id, or a new one. "-" always
// means a new record with a generated ID.
func loadOrNew(cmd *cobra.Command, sess *session, id string) (*types.Record, bool, error) {
	if id == "-" {
		return types.NewRecord(""), false, nil
	}
	rec, err := sess.store.Get(cmd.Context(), id)
	if errors.Is(err, types.ErrNotFound) {
		return types.NewRecord(id), false, nil
	}
	if err != nil {
		return nil, false, classify(err)
	}
	return rec, true, nil
}

func assign(s *schema.Schema, rec *types.Record, name, raw string) error {
	f, err := s.Field(name)
	if err != nil {
		return err
	}
	v, err := parseValue(f, raw)
	if err != nil {
		return err
	}
	return f.Set(rec, v)
}

func (a *app) printChanges(cmd *cobra.Command, s *schema.Schema, rec *types.Record, changes []schema.Change) error {
	out := cmd.OutOrStdout()
	if a.flags.jsonMode {
		projected, err := recordJSON(s, rec)
		if err != nil {
			return classify(err)
		}
		if changes == nil {
			changes = []schema.Change{}
		}
		return writeJSON(out, map[string]any{
			"id":      rec.RecordID,
			"changes": changes,
			"record":  projected,
		})
	}

	if len(changes) == 0 {
		fmt.Fprintf(out, "%s: no changes\n", rec.RecordID)
		return nil
	}
	fmt.Fprintf(out, "%s: saved\n", rec.RecordID)
	for _, c := range changes {
		fmt.Fprintf(out, "  %s: %q -> %q\n", c.Field, formatValue(c.Was), formatValue(c.Now))
	}
	return nil
}
