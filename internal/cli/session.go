package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/mesh-intelligence/satchel/pkg/registry"
	"github.com/mesh-intelligence/satchel/pkg/schema"
	"github.com/mesh-intelligence/satchel/pkg/store"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

// loadSchema reads the schema file named by the configuration.
func (a *app) loadSchema(cfg types.Config) (*schema.Schema, error) {
	s, err := schema.LoadFile(registry.Default, cfg.SchemaFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, userError(fmt.Errorf("no schema file at %s (run satchel init)", cfg.SchemaFile))
		}
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return nil, sysError(err)
		}
		return nil, userError(err)
	}
	a.log.Debug("loaded schema", "file", cfg.SchemaFile, "fields", len(s.Fields()))
	return s, nil
}

// session is an attached store together with its schema.
type session struct {
	schema *schema.Schema
	store  store.Store
}

// attach loads the schema and attaches a store over it. The caller must call
// close.
func (a *app) attach(ctx context.Context) (*session, error) {
	cfg, err := a.storeConfig()
	if err != nil {
		return nil, userError(err)
	}
	s, err := a.loadSchema(cfg)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg, s, a.log)
	if err != nil {
		return nil, userError(err)
	}
	if err := st.Attach(ctx); err != nil {
		return nil, sysError(fmt.Errorf("attach store: %w", err))
	}
	return &session{schema: s, store: st}, nil
}

func (s *session) close() error {
	if err := s.store.Detach(); err != nil {
		return sysError(fmt.Errorf("detach store: %w", err))
	}
	return nil
}

// classify wraps a store error with the exit code it deserves.
func classify(err error) error {
	switch {
	case errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrInvalidID),
		errors.Is(err, types.ErrFieldNotFound),
		errors.Is(err, types.ErrCast),
		errors.Is(err, types.ErrUnsupportedOperator),
		errors.Is(err, types.ErrInvalidOperand),
		errors.Is(err, types.ErrUnknownDialect):
		return userError(err)
	default:
		return sysError(err)
	}
}
