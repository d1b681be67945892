package predicate

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

// Fragment is a rendered SQL boolean expression and its bound arguments,
// ready to follow WHERE.
type Fragment struct {
	SQL  string
	Args []any
}

// Empty reports whether the fragment holds no condition.
func (f Fragment) Empty() bool { return f.SQL == "" }

// Dialect renders predicates for one database.
type Dialect interface {
	// Name is the dialect's configuration name.
	Name() string

	// Placeholder returns the marker of the n-th bound argument, from 1.
	Placeholder(n int) string

	// Write appends the SQL of p to w.
	Write(w *Writer, p Predicate) error
}

// Writer accumulates SQL text and its arguments while rendering.
type Writer struct {
	strings.Builder
	Dialect Dialect
	Args    []any
}

// NewWriter returns a writer for d.
func NewWriter(d Dialect) *Writer {
	return &Writer{Dialect: d}
}

// Param binds v and returns its placeholder.
func (w *Writer) Param(v any) string {
	w.Args = append(w.Args, v)
	return w.Dialect.Placeholder(len(w.Args))
}

// Render joins preds with AND. No predicates render an empty fragment.
func Render(d Dialect, preds ...Predicate) (Fragment, error) {
	w := NewWriter(d)
	if err := w.WriteAll(preds...); err != nil {
		return Fragment{}, err
	}
	return w.Fragment(), nil
}

// WriteAll appends preds joined with AND, each in parentheses when there
// is more than one.
func (w *Writer) WriteAll(preds ...Predicate) error {
	for i, p := range preds {
		if i > 0 {
			w.WriteString(" AND ")
		}
		if len(preds) > 1 {
			w.WriteByte('(')
		}
		if err := w.Dialect.Write(w, p); err != nil {
			return fmt.Errorf("rendering %s for %s: %w", p, w.Dialect.Name(), err)
		}
		if len(preds) > 1 {
			w.WriteByte(')')
		}
	}
	return nil
}

// Fragment returns what has been written so far.
func (w *Writer) Fragment() Fragment {
	return Fragment{SQL: w.String(), Args: w.Args}
}

// Dialects by configuration name.
var dialects = map[string]Dialect{
	Postgres.Name(): Postgres,
	SQLite.Name():   SQLite,
}

// DialectByName returns the dialect called name.
func DialectByName(name string) (Dialect, error) {
	d, ok := dialects[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("dialect %q: %w", name, types.ErrUnknownDialect)
	}
	return d, nil
}

func unsupported(d Dialect, p Predicate) error {
	return fmt.Errorf("%s %s with %s: %w", p.Key, p.Op, d.Name(), types.ErrUnsupportedOperator)
}
