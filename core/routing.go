package core

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jellydator/ttlcache/v3"
	"github.com/relaymesh/dtnsim/state"
)

// Path is a simple path through the topology annotated with its cumulative
// delay and multiplicative reliability.
type Path struct {
	Hops        []state.NodeId
	Delay       float64
	Reliability float64
}

// Score ranks a path for selection; lower is preferred. The cumulative
// delay is inflated by the inverse of the path reliability, so fragile
// deep-space routes lose against slightly slower near-space ones.
func (p Path) Score() float64 {
	return p.Delay * (1 / p.Reliability)
}

// Signature is a canonical string form of the hop sequence, used to track
// which candidates a run has already attempted.
func (p Path) Signature() string {
	parts := make([]string, 0, len(p.Hops))
	for _, h := range p.Hops {
		parts = append(parts, string(h))
	}
	return strings.Join(parts, ">")
}

func (p Path) String() string {
	return p.Signature()
}

// NoPathError reports that the topology has no route at all between the two
// nodes within the search depth.
type NoPathError struct {
	Source      state.NodeId
	Destination state.NodeId
}

func (e *NoPathError) Error() string {
	return fmt.Sprintf("no path from %s to %s", e.Source, e.Destination)
}

type pathKey struct {
	src, dst state.NodeId
	depth    int
}

// RoutingEngine enumerates and ranks simple paths over an immutable
// topology. Enumeration results are memoised; the graph never changes, so
// cached entries are always valid and the TTL only bounds memory.
type RoutingEngine struct {
	topo  *Topology
	cache *ttlcache.Cache[pathKey, []Path]
}

func NewRoutingEngine(topo *Topology) *RoutingEngine {
	return &RoutingEngine{
		topo: topo,
		cache: ttlcache.New[pathKey, []Path](
			ttlcache.WithTTL[pathKey, []Path](state.PathCacheTTL),
			ttlcache.WithDisableTouchOnHit[pathKey, []Path](),
		),
	}
}

// EnumeratePaths returns every simple path from source to destination with
// at most maxDepth hops, sorted ascending by score. Enumeration stops once
// state.MaxEnumeratedPaths candidates are found to avoid combinatorial
// blowup on dense graphs.
func (r *RoutingEngine) EnumeratePaths(source, destination state.NodeId, maxDepth int) ([]Path, error) {
	if !r.topo.HasNode(source) {
		return nil, &state.ConfigError{Field: "source", Reason: fmt.Sprintf("node %s not defined", source)}
	}
	if !r.topo.HasNode(destination) {
		return nil, &state.ConfigError{Field: "destination", Reason: fmt.Sprintf("node %s not defined", destination)}
	}

	key := pathKey{source, destination, maxDepth}
	if hit := r.cache.Get(key); hit != nil {
		return slices.Clone(hit.Value()), nil
	}

	paths := make([]Path, 0)
	visited := map[state.NodeId]bool{source: true}
	hops := []state.NodeId{source}
	r.walk(destination, maxDepth, hops, visited, &paths)
	if len(paths) == 0 {
		return nil, &NoPathError{Source: source, Destination: destination}
	}

	slices.SortFunc(paths, func(a, b Path) int {
		if a.Score() != b.Score() {
			if a.Score() < b.Score() {
				return -1
			}
			return 1
		}
		if len(a.Hops) != len(b.Hops) {
			return len(a.Hops) - len(b.Hops)
		}
		return strings.Compare(a.Signature(), b.Signature())
	})

	r.cache.Set(key, paths, ttlcache.DefaultTTL)
	return slices.Clone(paths), nil
}

func (r *RoutingEngine) walk(destination state.NodeId, depthLeft int, hops []state.NodeId, visited map[state.NodeId]bool, out *[]Path) {
	if len(*out) >= state.MaxEnumeratedPaths {
		return
	}
	current := hops[len(hops)-1]
	if current == destination {
		*out = append(*out, r.annotate(hops))
		return
	}
	if depthLeft == 0 {
		return
	}
	for _, next := range r.topo.Neighbors(current) {
		if visited[next] {
			continue
		}
		visited[next] = true
		r.walk(destination, depthLeft-1, append(hops, next), visited, out)
		visited[next] = false
	}
}

func (r *RoutingEngine) annotate(hops []state.NodeId) Path {
	p := Path{
		Hops:        slices.Clone(hops),
		Reliability: 1.0,
	}
	for i := 0; i+1 < len(hops); i++ {
		attrs, err := r.topo.LinkAttrs(hops[i], hops[i+1])
		if err != nil {
			// walk only follows topology edges
			panic(err)
		}
		p.Delay += attrs.Delay
		if attrs.Class == DistanceDeep {
			p.Reliability *= state.DeepLinkReliability
		} else {
			p.Reliability *= state.NearLinkReliability
		}
	}
	return p
}

// SelectAlternatives enumerates candidate paths and returns up to k of
// them, best score first, discarding any whose first hop is currently
// disrupted. The result is empty (not an error) when candidates exist but
// every one of them is filtered out by the disruption overlay; a
// NoPathError is returned only when the graph itself has no route.
func (r *RoutingEngine) SelectAlternatives(source, destination state.NodeId, disrupted *DisruptedSet, k int, maxDepth int) ([]Path, error) {
	paths, err := r.EnumeratePaths(source, destination, maxDepth)
	if err != nil {
		return nil, err
	}
	selected := make([]Path, 0, k)
	for _, p := range paths {
		if len(p.Hops) > 1 && disrupted.Contains(MakeLink(p.Hops[0], p.Hops[1])) {
			continue
		}
		selected = append(selected, p)
		if len(selected) == k {
			break
		}
	}
	return selected, nil
}
