package core

import (
	"fmt"
	"slices"

	"github.com/relaymesh/dtnsim/state"
)

type DistanceClass int

const (
	DistanceNear DistanceClass = iota
	DistanceDeep
)

func (c DistanceClass) String() string {
	if c == DistanceDeep {
		return "deep"
	}
	return "near"
}

// Link is an unordered node pair, always stored in sorted order so that it
// can be used as a map key regardless of direction.
type Link struct {
	A, B state.NodeId
}

func MakeLink(a, b state.NodeId) Link {
	p := state.MakeSortedPair(a, b)
	return Link{A: p.V1, B: p.V2}
}

func (l Link) String() string {
	return fmt.Sprintf("%s<->%s", l.A, l.B)
}

// LinkAttrs are the immutable attributes of a topology link.
type LinkAttrs struct {
	// Delay is the one-way transmission delay in seconds.
	Delay float64
	// DistanceKm is the link distance, already scaled for deep-space links.
	DistanceKm float64
	Class      DistanceClass
}

// UnknownLinkError reports an attribute lookup for a pair with no edge.
type UnknownLinkError struct {
	Link Link
}

func (e *UnknownLinkError) Error() string {
	return fmt.Sprintf("no link between %s and %s", e.Link.A, e.Link.B)
}

// Topology is an immutable undirected weighted graph. It is built once from
// a topology document and may be read concurrently; disruption state is an
// overlay (DisruptedSet) and never mutates the graph.
type Topology struct {
	nodes []state.NodeId
	adj   map[state.NodeId][]state.NodeId
	links map[Link]LinkAttrs
}

// NewTopology builds a Topology from a validated topology document.
func NewTopology(doc *state.TopologyDoc) (*Topology, error) {
	err := state.TopologyValidator(doc)
	if err != nil {
		return nil, err
	}
	t := &Topology{
		adj:   make(map[state.NodeId][]state.NodeId),
		links: make(map[Link]LinkAttrs),
	}
	for _, node := range doc.Nodes {
		t.nodes = append(t.nodes, state.NodeId(node.Id))
	}
	slices.Sort(t.nodes)
	for _, link := range doc.Links {
		km, deep, err := state.ParseDistance(link.Distance)
		if err != nil {
			return nil, err
		}
		class := DistanceNear
		if deep {
			class = DistanceDeep
		}
		a, b := state.NodeId(link.Source), state.NodeId(link.Target)
		t.links[MakeLink(a, b)] = LinkAttrs{
			Delay:      link.Delay,
			DistanceKm: km,
			Class:      class,
		}
		t.adj[a] = append(t.adj[a], b)
		t.adj[b] = append(t.adj[b], a)
	}
	for _, neighs := range t.adj {
		slices.Sort(neighs)
	}
	return t, nil
}

func (t *Topology) HasNode(node state.NodeId) bool {
	_, ok := slices.BinarySearch(t.nodes, node)
	return ok
}

// Nodes returns all node ids in sorted order.
func (t *Topology) Nodes() []state.NodeId {
	return slices.Clone(t.nodes)
}

// Neighbors returns the nodes adjacent to the given node, sorted.
func (t *Topology) Neighbors(node state.NodeId) []state.NodeId {
	return slices.Clone(t.adj[node])
}

// LinkAttrs looks up the attributes of the edge between a and b.
func (t *Topology) LinkAttrs(a, b state.NodeId) (LinkAttrs, error) {
	attrs, ok := t.links[MakeLink(a, b)]
	if !ok {
		return LinkAttrs{}, &UnknownLinkError{Link: MakeLink(a, b)}
	}
	return attrs, nil
}

// Links enumerates all edges in deterministic order.
func (t *Topology) Links() []Link {
	out := make([]Link, 0, len(t.links))
	for l := range t.links {
		out = append(out, l)
	}
	slices.SortFunc(out, func(x, y Link) int {
		if x.A != y.A {
			return cmpNodeId(x.A, y.A)
		}
		return cmpNodeId(x.B, y.B)
	})
	return out
}

func cmpNodeId(a, b state.NodeId) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
