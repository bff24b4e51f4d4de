package ips

import (
	"github.com/runziggurat/ips/pkg/graph"
	"github.com/runziggurat/ips/pkg/model"
	"github.com/runziggurat/ips/pkg/normalization"
)

// BuildState derives an IpsState from nodes: degree and eigenvector
// centrality are always (re)computed; betweenness and closeness are only
// recomputed when full is true, since the security phase and the final
// re-derivation both need fresh structural scores but the constant-factor
// computation mid-pipeline does not need to redo that work.
//
// When full recomputes betweenness/closeness, it writes the new values
// directly into nodes (the caller's slice is shared backing storage), and
// every NormalizationFactors below is then determined from those same,
// just-updated values — the returned state and its factors always agree.
func BuildState(nodes []model.Node, full bool, workers int) (*model.IpsState, error) {
	adjacency := Adjacency(nodes)

	if full {
		g := graph.Build(adjacency)
		closeness := graph.Closeness(g)
		betweenness := graph.Betweenness(adjacency, workers)
		for i := range nodes {
			nodes[i].Betweenness = betweenness[i]
			nodes[i].Closeness = closeness[i]
		}
	}

	degrees := graph.Degree(adjacency)
	eigenvalues := graph.Eigenvector(adjacency)

	degreeSeries := make([]float64, 0, len(degrees))
	for _, d := range degrees {
		degreeSeries = append(degreeSeries, float64(d))
	}
	eigenSeries := make([]float64, 0, len(eigenvalues))
	for _, e := range eigenvalues {
		eigenSeries = append(eigenSeries, e)
	}
	betweennessSeries := make([]float64, len(nodes))
	closenessSeries := make([]float64, len(nodes))
	for i, n := range nodes {
		betweennessSeries[i] = n.Betweenness
		closenessSeries[i] = n.Closeness
	}

	degreeFactors, err := normalization.Determine(degreeSeries)
	if err != nil {
		return nil, err
	}
	eigenFactors, err := normalization.Determine(eigenSeries)
	if err != nil {
		return nil, err
	}
	betweennessFactors, err := normalization.Determine(betweennessSeries)
	if err != nil {
		return nil, err
	}
	closenessFactors, err := normalization.Determine(closenessSeries)
	if err != nil {
		return nil, err
	}

	return &model.IpsState{
		Nodes:              nodes,
		PeerList:           GeneratePeerList(nodes),
		Degrees:            degrees,
		Eigenvalues:        eigenvalues,
		DegreeFactors:      degreeFactors,
		BetweennessFactors: betweennessFactors,
		ClosenessFactors:   closenessFactors,
		EigenvectorFactors: eigenFactors,
	}, nil
}

// CloneState deep-copies state's node slice (and its per-node connection
// slices) so the clone can be mutated independently; the derived maps and
// factors are shared, since they are treated as read-only snapshots.
func CloneState(state *model.IpsState) *model.IpsState {
	clone := *state
	clone.Nodes = cloneNodes(state.Nodes)
	return &clone
}

func cloneNodes(nodes []model.Node) []model.Node {
	out := make([]model.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n
		out[i].Connections = append([]int(nil), n.Connections...)
	}
	return out
}
