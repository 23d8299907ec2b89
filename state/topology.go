package state

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// TopologyDoc is the parsed form of an on-disk topology document:
//
//	{"nodes": [{"id": "a"}], "links": [{"source": "a", "target": "b",
//	 "delay": 10, "distance": "1 km"}]}
//
// Distances are tagged strings, either "<value> km" or "<value> M km" for
// deep-space links.
type TopologyDoc struct {
	Nodes []TopologyNode `json:"nodes"`
	Links []TopologyLink `json:"links"`
}

type TopologyNode struct {
	Id string `json:"id"`
}

type TopologyLink struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Delay    float64 `json:"delay"`
	Distance string  `json:"distance"`
}

var distancePattern = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)\s*(M\s*)?km$`)

// ParseDistance parses a tagged distance string and reports the distance in
// km and whether the link is a deep-space link.
func ParseDistance(s string) (float64, bool, error) {
	m := distancePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false, fmt.Errorf(`%q is not a valid distance, expected "<value> km" or "<value> M km"`, s)
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false, err
	}
	deep := m[2] != ""
	if deep {
		value *= DeepSpaceKmScale
	}
	return value, deep, nil
}

func TopologyValidator(doc *TopologyDoc) error {
	if len(doc.Nodes) == 0 {
		return &ConfigError{"nodes", "topology must define at least one node"}
	}
	ids := make([]string, 0, len(doc.Nodes))
	for _, node := range doc.Nodes {
		if err := NameValidator(node.Id); err != nil {
			return &ConfigError{"nodes", err.Error()}
		}
		if slices.Contains(ids, node.Id) {
			return &ConfigError{"nodes", fmt.Sprintf("duplicate node id: %s", node.Id)}
		}
		ids = append(ids, node.Id)
	}
	edges := make([]Pair[string, string], 0, len(doc.Links))
	for _, link := range doc.Links {
		if !slices.Contains(ids, link.Source) {
			return &ConfigError{"links", fmt.Sprintf("node %s not defined", link.Source)}
		}
		if !slices.Contains(ids, link.Target) {
			return &ConfigError{"links", fmt.Sprintf("node %s not defined", link.Target)}
		}
		if link.Source == link.Target {
			return &ConfigError{"links", fmt.Sprintf("self link on node %s", link.Source)}
		}
		if link.Delay < 0 {
			return &ConfigError{"links", fmt.Sprintf("link %s, %s has negative delay", link.Source, link.Target)}
		}
		if _, _, err := ParseDistance(link.Distance); err != nil {
			return &ConfigError{"links", err.Error()}
		}
		edge := MakeSortedPair(link.Source, link.Target)
		if slices.Contains(edges, edge) {
			return &ConfigError{"links", fmt.Sprintf("duplicate link found: %s, %s", edge.V1, edge.V2)}
		}
		edges = append(edges, edge)
	}
	return nil
}

func LoadTopology(path string) (*TopologyDoc, error) {
	var doc TopologyDoc
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	err = json.Unmarshal(file, &doc)
	if err != nil {
		return nil, err
	}
	err = TopologyValidator(&doc)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// DemoTopology is the built-in Mars-Earth relay network used by tests and
// by `dtnsim run --demo`.
func DemoTopology() *TopologyDoc {
	return &TopologyDoc{
		Nodes: []TopologyNode{
			{Id: "mars_rover"},
			{Id: "mars_orbiter"},
			{Id: "relay_satellite"},
			{Id: "earth_station"},
		},
		Links: []TopologyLink{
			{Source: "mars_rover", Target: "mars_orbiter", Delay: 10, Distance: "400 km"},
			{Source: "mars_orbiter", Target: "relay_satellite", Delay: 600, Distance: "150 M km"},
			{Source: "relay_satellite", Target: "earth_station", Delay: 350, Distance: "75 M km"},
			{Source: "mars_orbiter", Target: "earth_station", Delay: 1300, Distance: "225 M km"},
		},
	}
}
