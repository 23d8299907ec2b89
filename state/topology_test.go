package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDistance(t *testing.T) {
	cases := []struct {
		in   string
		km   float64
		deep bool
	}{
		{"400 km", 400, false},
		{"0.5 km", 0.5, false},
		{"150 M km", 150_000_000, true},
		{"150M km", 150_000_000, true},
		{"  75 M km ", 75_000_000, true},
	}
	for _, tc := range cases {
		km, deep, err := ParseDistance(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.km, km, tc.in)
		assert.Equal(t, tc.deep, deep, tc.in)
	}
}

func TestParseDistanceRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "km", "400", "400 miles", "-5 km", "M km", "400 G km"} {
		_, _, err := ParseDistance(in)
		assert.Error(t, err, in)
	}
}

func twoNodeDoc() *TopologyDoc {
	return &TopologyDoc{
		Nodes: []TopologyNode{{Id: "a"}, {Id: "b"}},
		Links: []TopologyLink{{Source: "a", Target: "b", Delay: 10, Distance: "1 km"}},
	}
}

func TestTopologyValidator(t *testing.T) {
	assert.NoError(t, TopologyValidator(twoNodeDoc()))
	assert.NoError(t, TopologyValidator(DemoTopology()))

	cases := []struct {
		name   string
		mutate func(doc *TopologyDoc)
	}{
		{"no nodes", func(d *TopologyDoc) { d.Nodes = nil }},
		{"bad node name", func(d *TopologyDoc) { d.Nodes[0].Id = "Not Valid!" }},
		{"duplicate node", func(d *TopologyDoc) { d.Nodes[1].Id = "a" }},
		{"unknown source", func(d *TopologyDoc) { d.Links[0].Source = "x" }},
		{"unknown target", func(d *TopologyDoc) { d.Links[0].Target = "x" }},
		{"self link", func(d *TopologyDoc) { d.Links[0].Target = "a" }},
		{"negative delay", func(d *TopologyDoc) { d.Links[0].Delay = -1 }},
		{"bad distance", func(d *TopologyDoc) { d.Links[0].Distance = "far" }},
		{"duplicate link", func(d *TopologyDoc) {
			d.Links = append(d.Links, TopologyLink{Source: "b", Target: "a", Delay: 5, Distance: "1 km"})
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := twoNodeDoc()
			tc.mutate(doc)
			err := TopologyValidator(doc)
			require.Error(t, err)
			var cfgErr *ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestLoadTopology(t *testing.T) {
	doc := `{
  "nodes": [{"id": "a"}, {"id": "b"}, {"id": "c"}],
  "links": [
    {"source": "a", "target": "b", "delay": 10, "distance": "400 km"},
    {"source": "b", "target": "c", "delay": 20, "distance": "2 M km"}
  ]
}`
	path := filepath.Join(t.TempDir(), "topology.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	loaded, err := LoadTopology(path)
	require.NoError(t, err)
	assert.Len(t, loaded.Nodes, 3)
	assert.Len(t, loaded.Links, 2)
	assert.Equal(t, "2 M km", loaded.Links[1].Distance)
}

func TestLoadTopologyRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topology.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"nodes": [], "links": []}`), 0o644))
	_, err := LoadTopology(path)
	assert.Error(t, err)
}
