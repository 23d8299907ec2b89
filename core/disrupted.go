package core

import "slices"

// DisruptedSet is the transient overlay of currently unusable links. Each
// simulation run owns a private instance; membership is always a subset of
// the topology's links.
type DisruptedSet struct {
	links map[Link]struct{}
}

func NewDisruptedSet() *DisruptedSet {
	return &DisruptedSet{links: make(map[Link]struct{})}
}

func (d *DisruptedSet) Add(link Link) {
	d.links[link] = struct{}{}
}

func (d *DisruptedSet) Remove(link Link) {
	delete(d.links, link)
}

func (d *DisruptedSet) Contains(link Link) bool {
	_, ok := d.links[link]
	return ok
}

func (d *DisruptedSet) Len() int {
	return len(d.links)
}

// Links returns the disrupted links in deterministic order.
func (d *DisruptedSet) Links() []Link {
	out := make([]Link, 0, len(d.links))
	for l := range d.links {
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
