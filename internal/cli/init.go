package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize satchel storage",
		Long: `Create the configuration directory with a default config.yaml and
schema.yaml, then attach the configured store once so that its data
directory or table exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.storeConfig()
			if err != nil {
				return userError(err)
			}
			if err := writeIfMissing(cfg.SchemaFile, defaultSchemaYAML); err != nil {
				return sysError(fmt.Errorf("write schema: %w", err))
			}

			sess, err := a.attach(cmd.Context())
			if err != nil {
				return err
			}
			if err := sess.close(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.flags.jsonMode {
				return writeJSON(out, map[string]string{
					"config":  a.configDir,
					"schema":  cfg.SchemaFile,
					"backend": cfg.Backend,
					"data":    cfg.DataDir,
				})
			}
			fmt.Fprintln(out, "satchel initialized successfully")
			fmt.Fprintln(out, "  config:", a.configDir)
			fmt.Fprintln(out, "  schema:", cfg.SchemaFile)
			if cfg.Backend == types.BackendSQLite {
				fmt.Fprintln(out, "  data:  ", cfg.DataDir)
			} else {
				fmt.Fprintln(out, "  table: ", cfg.TableName())
			}
			return nil
		},
	}
}
