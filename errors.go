package graphgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/graphgo/internal/csr"
	"github.com/hupe1980/graphgo/queue"
	"github.com/hupe1980/graphgo/vocabulary"
)

// ErrInvalidNodeID indicates a node id outside the graph's dense id range.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidNodeID struct {
	NodeID    NodeID
	NodeCount uint32
	cause     error
}

func (e *ErrInvalidNodeID) Error() string {
	return fmt.Sprintf("invalid node id: %d not in [0, %d)", e.NodeID, e.NodeCount)
}

func (e *ErrInvalidNodeID) Unwrap() error { return e.cause }

// ErrInvalidEdgeID indicates an edge id outside the graph's directed edge range.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidEdgeID struct {
	EdgeID    EdgeID
	EdgeCount uint64
	cause     error
}

func (e *ErrInvalidEdgeID) Error() string {
	return fmt.Sprintf("invalid edge id: %d not in [0, %d)", e.EdgeID, e.EdgeCount)
}

func (e *ErrInvalidEdgeID) Unwrap() error { return e.cause }

// ErrIncompatibleGraphs indicates that two graphs cannot be combined because
// their directedness, weight presence, type presence, or node mapping differ.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrIncompatibleGraphs struct {
	Reason string
	cause  error
}

func (e *ErrIncompatibleGraphs) Error() string {
	return fmt.Sprintf("incompatible graphs: %s", e.Reason)
}

func (e *ErrIncompatibleGraphs) Unwrap() error { return e.cause }

// ErrUnsupportedOnDirected indicates an operation that is only defined for
// undirected graphs.
type ErrUnsupportedOnDirected struct {
	Operation string
}

func (e *ErrUnsupportedOnDirected) Error() string {
	return fmt.Sprintf("%s is not supported on directed graphs", e.Operation)
}

// ErrMalformedInput indicates construction input or parameters that violate a
// declared contract: disallowed duplicate or self-loop edges, non-finite or
// non-positive values where positivity is required, or input declared sorted
// that is not.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrMalformedInput struct {
	Reason string
	cause  error
}

func (e *ErrMalformedInput) Error() string {
	return fmt.Sprintf("malformed input: %s", e.Reason)
}

func (e *ErrMalformedInput) Unwrap() error { return e.cause }

// ErrOutOfCapacity indicates a request that exceeds a structural capacity,
// such as asking for more negative samples than non-edges exist.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrOutOfCapacity struct {
	Requested uint64
	Capacity  uint64
	cause     error
}

func (e *ErrOutOfCapacity) Error() string {
	return fmt.Sprintf("out of capacity: requested %d, capacity %d", e.Requested, e.Capacity)
}

func (e *ErrOutOfCapacity) Unwrap() error { return e.cause }

// ErrIncompleteBuild indicates that a builder was finalized while edge slots
// remained unwritten.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrIncompleteBuild struct {
	Written  uint64
	Expected uint64
	cause    error
}

func (e *ErrIncompleteBuild) Error() string {
	return fmt.Sprintf("incomplete build: %d of %d edge slots written", e.Written, e.Expected)
}

func (e *ErrIncompleteBuild) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Builder normalization.
	var inc *csr.IncompleteError
	if errors.As(err, &inc) {
		return &ErrIncompleteBuild{Written: inc.Written, Expected: inc.Expected, cause: err}
	}
	var slot *csr.SlotError
	if errors.As(err, &slot) {
		return &ErrInvalidEdgeID{EdgeID: EdgeID(slot.Slot), EdgeCount: slot.EdgeCount, cause: err}
	}
	var node *csr.NodeError
	if errors.As(err, &node) {
		return &ErrInvalidNodeID{NodeID: NodeID(node.Node), NodeCount: node.NodeCount, cause: err}
	}
	var order *csr.OrderError
	if errors.As(err, &order) {
		return &ErrMalformedInput{Reason: "edges declared sorted are not sorted", cause: err}
	}

	// Id range normalization.
	var oor *vocabulary.OutOfRangeError
	if errors.As(err, &oor) {
		return &ErrInvalidNodeID{NodeID: NodeID(oor.ID), NodeCount: oor.Size, cause: err}
	}
	if errors.Is(err, queue.ErrOutOfBounds) {
		return &ErrOutOfCapacity{cause: err}
	}

	return err
}
