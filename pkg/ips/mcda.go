package ips

import (
	"sort"

	"github.com/runziggurat/ips/pkg/model"
)

// normalizeToValue is the common scale every per-criterion score is
// projected onto before weighting.
const normalizeToValue = 100.0

const (
	normalizeTwoThirds = 100.0 * 2.0 / 3.0
	normalizeOneThird  = 100.0 * 1.0 / 3.0
	normalizeHalf      = 50.0
)

// GeolocationMode selects how location factors into a candidate's rating.
type GeolocationMode int

const (
	GeolocationOff GeolocationMode = iota
	GeolocationPreferCloser
	GeolocationPreferDistant
)

// Weights are the MCDA criterion weights; defaults are set by
// DefaultWeights, grounded on the reference weights.
type Weights struct {
	Location    float64
	Degree      float64
	Eigenvector float64
	Betweenness float64
	Closeness   float64
}

// Config holds every tunable the orchestrator and MCDA phase need.
type Config struct {
	Geolocation                 GeolocationMode
	GeolocationMinMaxDistanceKm float64
	ChangeAtLeast               int
	ChangeNoMore                int
	BridgeThresholdAdjustment   float64
	Weights                     Weights
	Workers                     int
}

// RateNode computes a node's constant (location-independent) rating: the
// weighted sum of its four normalized centralities.
func RateNode(node model.Node, degree int, eigenvalue float64, state *model.IpsState, weights Weights) float64 {
	rating := 0.0
	rating += state.DegreeFactors.Scale(float64(degree)) * normalizeToValue * weights.Degree
	rating += state.BetweennessFactors.Scale(node.Betweenness) * normalizeToValue * weights.Betweenness
	rating += state.ClosenessFactors.Scale(node.Closeness) * normalizeToValue * weights.Closeness
	rating += state.EigenvectorFactors.Scale(eigenvalue) * normalizeToValue * weights.Eigenvector
	return rating
}

// CalculateConstFactors rates every node once, independent of which node is
// currently being decided for; DecideNode reuses this shared slice per call.
func CalculateConstFactors(state *model.IpsState, weights Weights) []model.PeerEntry {
	out := make([]model.PeerEntry, len(state.Nodes))
	for i, n := range state.Nodes {
		out[i] = model.PeerEntry{
			Addr:   n.Addr,
			Index:  i,
			Rating: RateNode(n, state.Degrees[i], state.Eigenvalues[i], state, weights),
		}
	}
	return out
}

// UpdateRatingByLocation adds a location-preference term to each rating in
// ratings, relative to selected's coordinates. It is a no-op when
// geolocation is disabled or selected has no resolved coordinates.
func UpdateRatingByLocation(selected model.Node, nodes []model.Node, ratings []model.PeerEntry, cfg Config) {
	if cfg.Geolocation == GeolocationOff {
		return
	}
	if selected.Geolocation == nil || selected.Geolocation.Coordinates == nil {
		return
	}

	d := cfg.GeolocationMinMaxDistanceKm * 1000
	for i := range ratings {
		candidate := nodes[ratings[i].Index]
		if candidate.Geolocation == nil || candidate.Geolocation.Coordinates == nil {
			continue
		}
		distance := HaversineDistanceMeters(*selected.Geolocation.Coordinates, *candidate.Geolocation.Coordinates)

		var rating float64
		switch cfg.Geolocation {
		case GeolocationPreferCloser:
			switch {
			case distance < d:
				rating = normalizeToValue
			case distance < 2*d:
				rating = normalizeTwoThirds
			case distance < 3*d:
				rating = normalizeOneThird
			default:
				rating = 0
			}
		case GeolocationPreferDistant:
			switch {
			case distance < d/2:
				rating = 0
			case distance < d:
				rating = normalizeHalf
			default:
				rating = normalizeToValue
			}
		}
		ratings[i].Rating += rating * cfg.Weights.Location
	}
}

// DecideNode rates and resolves the peer list for the node at nodeIdx,
// mutating finalState in place: it drops the lowest-rated current peers
// down to quota (skipping any that would break a bridge edge, though the
// quota is spent either way) and tops candidates back up from the
// highest-rated, least-central pool of not-yet-connected nodes.
func DecideNode(nodeIdx int, workingState, finalState *model.IpsState, constFactors []model.PeerEntry, bridges model.Bridges, degreeAvg float64, cfg Config) {
	node := workingState.Nodes[nodeIdx]

	peerRatings := append([]model.PeerEntry(nil), constFactors...)

	currConns := finalState.Nodes[nodeIdx].Connections
	currPeerRatings := make([]model.PeerEntry, 0, len(currConns))
	for _, idx := range currConns {
		currPeerRatings = append(currPeerRatings, constFactors[idx])
	}

	if cfg.Geolocation != GeolocationOff {
		UpdateRatingByLocation(node, workingState.Nodes, peerRatings, cfg)
		UpdateRatingByLocation(node, workingState.Nodes, currPeerRatings, cfg)
	}

	degree := workingState.Degrees[nodeIdx]
	desiredDegree := roundToInt(degreeAvg)

	peersToDelete := cfg.ChangeAtLeast
	if desiredDegree < degree {
		peersToDelete = degree - desiredDegree
	}
	if peersToDelete > cfg.ChangeNoMore {
		peersToDelete = cfg.ChangeNoMore
	}

	peersToAdd := cfg.ChangeAtLeast
	if desiredDegree > degree {
		peersToAdd = (desiredDegree - degree) + peersToDelete
	}
	if peersToAdd > cfg.ChangeNoMore {
		peersToAdd = cfg.ChangeNoMore
	}

	filtered := peerRatings[:0]
	for _, pe := range peerRatings {
		if len(finalState.Nodes[pe.Index].Connections) >= len(workingState.Nodes[pe.Index].Connections) {
			continue
		}
		if absInt(len(finalState.Nodes[pe.Index].Connections)-len(workingState.Nodes[pe.Index].Connections)) > cfg.ChangeNoMore {
			continue
		}
		if pe.Index == nodeIdx {
			continue
		}
		filtered = append(filtered, pe)
	}
	peerRatings = filtered

	sort.Slice(currPeerRatings, func(i, j int) bool { return currPeerRatings[i].Rating > currPeerRatings[j].Rating })
	kept := make([]model.PeerEntry, 0, peersToDelete)
	for peersToDelete > 0 && len(currPeerRatings) > 0 {
		last := currPeerRatings[len(currPeerRatings)-1]
		currPeerRatings = currPeerRatings[:len(currPeerRatings)-1]
		if bridges.Has(last.Index, nodeIdx) {
			// Deleting this peer would break a bridge edge; keep it, but
			// the quota is still spent — matching the intentional choice
			// to cap churn even when a candidate deletion is vetoed. The
			// next-lowest-rated peer is examined only if quota remains.
			kept = append(kept, last)
		}
		peersToDelete--
	}
	currPeerRatings = append(currPeerRatings, kept...)

	if peersToAdd > 0 {
		sort.Slice(peerRatings, func(i, j int) bool { return peerRatings[i].Rating > peerRatings[j].Rating })

		candidates := make([]model.PeerEntry, 0, peersToAdd)
		for _, pe := range peerRatings {
			if isConnected(finalState, nodeIdx, pe.Index) {
				continue
			}
			candidates = append(candidates, pe)
			if len(candidates) >= 2*peersToAdd {
				break
			}
		}
		sort.Slice(candidates, func(i, j int) bool {
			return workingState.Nodes[candidates[i].Index].Betweenness < workingState.Nodes[candidates[j].Index].Betweenness
		})
		if len(candidates) > peersToAdd {
			candidates = candidates[:peersToAdd]
		}

		for _, c := range candidates {
			currPeerRatings = append(currPeerRatings, c)
			finalState.Nodes[c.Index].Connections = appendUniqueInt(finalState.Nodes[c.Index].Connections, nodeIdx)
		}
	}

	newConns := make([]int, 0, len(currPeerRatings))
	for _, pe := range currPeerRatings {
		newConns = append(newConns, pe.Index)
	}
	sort.Ints(newConns)
	newConns = dedupSortedInts(newConns)
	newConns = removeIntValue(newConns, nodeIdx)
	finalState.Nodes[nodeIdx].Connections = newConns
}

func isConnected(state *model.IpsState, a, b int) bool {
	return containsInt(state.Nodes[a].Connections, b) || containsInt(state.Nodes[b].Connections, a)
}

func roundToInt(v float64) int {
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func dedupSortedInts(sorted []int) []int {
	out := sorted[:0]
	var prev int
	havePrev := false
	for _, v := range sorted {
		if havePrev && v == prev {
			continue
		}
		out = append(out, v)
		prev = v
		havePrev = true
	}
	return out
}
