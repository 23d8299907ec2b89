package core

import (
	"fmt"
	"slices"

	"github.com/relaymesh/dtnsim/state"
)

// BufferFullError reports a store attempt against a node whose buffer is at
// capacity. The cap is hard: the caller must react (typically by forcing an
// immediate reroute) rather than overflow.
type BufferFullError struct {
	Node     state.NodeId
	Capacity int
}

func (e *BufferFullError) Error() string {
	return fmt.Sprintf("buffer at node %s is full (capacity %d)", e.Node, e.Capacity)
}

// BufferStore holds the per-node FIFO queues of bundles awaiting forward.
// Each simulation run owns a private instance.
type BufferStore struct {
	capacity  int
	queues    map[state.NodeId][]Bundle
	maxStored int
}

func NewBufferStore(capacityPerNode int) *BufferStore {
	return &BufferStore{
		capacity: capacityPerNode,
		queues:   make(map[state.NodeId][]Bundle),
	}
}

// Store appends the bundle to the node's queue. Storing is idempotent per
// bundle id; a second store of the same bundle at the same node is a no-op.
func (s *BufferStore) Store(node state.NodeId, bundle Bundle) error {
	q := s.queues[node]
	if slices.ContainsFunc(q, func(b Bundle) bool { return b.Id == bundle.Id }) {
		return nil
	}
	if len(q) >= s.capacity {
		return &BufferFullError{Node: node, Capacity: s.capacity}
	}
	s.queues[node] = append(q, bundle)
	if total := s.total(); total > s.maxStored {
		s.maxStored = total
	}
	return nil
}

// Remove drops the bundle from the node's queue if present; no-op otherwise.
func (s *BufferStore) Remove(node state.NodeId, bundle Bundle) {
	q := s.queues[node]
	idx := slices.IndexFunc(q, func(b Bundle) bool { return b.Id == bundle.Id })
	if idx == -1 {
		return
	}
	s.queues[node] = slices.Delete(q, idx, idx+1)
}

// Contains reports whether the node currently buffers the bundle.
func (s *BufferStore) Contains(node state.NodeId, bundleId string) bool {
	return slices.ContainsFunc(s.queues[node], func(b Bundle) bool { return b.Id == bundleId })
}

// Occupancy returns the number of bundles buffered at the node.
func (s *BufferStore) Occupancy(node state.NodeId) int {
	return len(s.queues[node])
}

// Snapshot returns the occupancy of every non-empty queue.
func (s *BufferStore) Snapshot() map[state.NodeId]int {
	out := make(map[state.NodeId]int, len(s.queues))
	for node, q := range s.queues {
		if len(q) > 0 {
			out[node] = len(q)
		}
	}
	return out
}

// MaxStored returns the high-water mark of bundles stored across all nodes.
func (s *BufferStore) MaxStored() int {
	return s.maxStored
}

func (s *BufferStore) total() int {
	n := 0
	for _, q := range s.queues {
		n += len(q)
	}
	return n
}
