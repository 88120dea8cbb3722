// Package suggest is the core, providing the prioritized graph traversal for course-section prefix search and the autocomplete strategy on top of it.
package suggest

import (
	"context"

	"github.com/bastiangx/courseserve/pkg/catalog"
)

// ICompleter defines the interface for course-section autocomplete engines
type ICompleter interface {
	// Complete returns records for free-text input with a limit
	Complete(ctx context.Context, input string, limit int) ([]catalog.Record, error)

	// CompleteFields returns records similar to a partially filled section
	CompleteFields(ctx context.Context, fields catalog.Record, limit int) ([]catalog.Record, error)

	// Resolve dispatches a parsed query to Complete or CompleteFields
	Resolve(ctx context.Context, q catalog.Query, rawLimit int) ([]catalog.Record, error)

	// Stats returns statistics about the loaded graph
	Stats() map[string]int
}

// Compile time check to ensure Completer satisfies ICompleter.
var _ ICompleter = (*Completer)(nil)
