package graph

import (
	"errors"
	"fmt"
)

// ErrCorruptGraph is matched by every *CorruptGraphError via errors.Is.
var ErrCorruptGraph = errors.New("corrupt graph")

// CorruptGraphError reports a serialized graph that cannot be loaded:
// unknown node ids, self-loops, cycles, or a missing root.
type CorruptGraphError struct {
	Reason string
	NodeID string
}

func (e *CorruptGraphError) Error() string {
	if e.NodeID == "" {
		return fmt.Sprintf("corrupt graph: %s", e.Reason)
	}
	return fmt.Sprintf("corrupt graph: %s (node %q)", e.Reason, e.NodeID)
}

func (e *CorruptGraphError) Is(target error) bool {
	return target == ErrCorruptGraph
}
