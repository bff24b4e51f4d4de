// Package model holds the data types shared across the IPS analysis
// pipeline: nodes as seen in a crawl snapshot, the working state derived
// from them, and the peer lists produced for each node.
package model

import "github.com/runziggurat/ips/pkg/normalization"

// Geolocation is a node's resolved coordinates, when known. A node with no
// resolved geolocation has a nil Geolocation; a Geolocation whose
// Coordinates is nil is treated the same way.
type Geolocation struct {
	Coordinates *Coordinates
}

// Coordinates is a point on the globe, in degrees.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Node is one participant of the overlay network snapshot: its address,
// its adjacency (indices into the same node slice), its resolved
// geolocation (if any), and its two structural centrality scores.
type Node struct {
	Addr        string
	Connections []int
	Geolocation *Geolocation
	Betweenness float64
	Closeness   float64
}

// PeerEntry is a rated candidate peer: the node at Index, addressed by
// Addr, with a rating accumulated by the MCDA phase.
type PeerEntry struct {
	Addr   string
	Index  int
	Rating float64
}

// Peer is one node's recommended peer list, keyed by its own address.
type Peer struct {
	Addr string   `json:"ip"`
	List []string `json:"list"`
}

// Bridges maps a node index to the set of neighbor indices it forms a
// bridge edge with (both directions are present, since bridges are
// symmetric by construction).
type Bridges map[int]map[int]struct{}

// Has reports whether (from, to) is a recorded bridge edge.
func (b Bridges) Has(from, to int) bool {
	peers, ok := b[from]
	if !ok {
		return false
	}
	_, ok = peers[to]
	return ok
}

// Island is a set of node indices forming one connected component.
type Island map[int]struct{}

// IpsState is the full working snapshot the analysis pipeline operates on:
// the node list plus every derived value needed to rate peers without
// recomputing centralities on every lookup.
type IpsState struct {
	Nodes              []Node
	PeerList           []Peer
	Degrees            map[int]int
	Eigenvalues        map[int]float64
	DegreeFactors      normalization.Factors
	BetweennessFactors normalization.Factors
	ClosenessFactors   normalization.Factors
	EigenvectorFactors normalization.Factors
}
