package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/satchel/pkg/registry"
	"github.com/mesh-intelligence/satchel/pkg/schema"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

const productSchemaYAML = `
carriers:
  options:
    color: string
    price: integer
    weight: float
    cost: decimal
    active: boolean
    due: date
    seen: datetime
    tags: array
    meta: hash
`

func productSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.Parse(registry.New(), []byte(productSchemaYAML))
	require.NoError(t, err)
	return s
}

// attached returns an attached backend over a fresh data directory.
func attached(t *testing.T, cfg types.Config) *Backend {
	t.Helper()
	if cfg.Backend == "" {
		cfg.Backend = types.BackendSQLite
	}
	if cfg.DataDir == "" {
		cfg.DataDir = t.TempDir()
	}
	b := NewBackend(cfg, productSchema(t), nil)
	require.NoError(t, b.Attach(context.Background()))
	t.Cleanup(func() { b.Detach() })
	return b
}
