package ips

import (
	"sort"
	"strconv"

	"github.com/runziggurat/ips/pkg/model"
	"github.com/runziggurat/ips/pkg/statistics"
)

// Adjacency extracts the plain index adjacency list pkg/graph operates on
// from a node slice; nodes already store their connections as indices into
// the same slice, so this is a direct projection.
func Adjacency(nodes []model.Node) [][]int {
	adjacency := make([][]int, len(nodes))
	for i, n := range nodes {
		adjacency[i] = n.Connections
	}
	return adjacency
}

// FindBridges returns the set of edges whose both endpoints have
// betweenness centrality strictly greater than median(betweenness) *
// thresholdAdjustment. Both endpoints must clear the threshold — the
// reference implementation only required the source node to clear it and
// the peer to strictly exceed it, an asymmetry this implementation does
// not reproduce.
func FindBridges(nodes []model.Node, thresholdAdjustment float64) model.Bridges {
	bridges := model.Bridges{}
	if len(nodes) < 2 {
		return bridges
	}

	values := make([]float64, len(nodes))
	for i, n := range nodes {
		values[i] = n.Betweenness
	}
	median, ok := statistics.Median(values)
	if !ok {
		return bridges
	}
	threshold := median * thresholdAdjustment

	for i, n := range nodes {
		if n.Betweenness <= threshold {
			continue
		}
		for _, j := range n.Connections {
			if nodes[j].Betweenness <= threshold {
				continue
			}
			if bridges[i] == nil {
				bridges[i] = map[int]struct{}{}
			}
			bridges[i][j] = struct{}{}
		}
	}
	return bridges
}

// RemoveNode returns a new node slice with the node at idx removed: every
// remaining node's connection list drops idx and every index greater than
// idx is decremented by one to stay consistent with the shortened slice.
func RemoveNode(nodes []model.Node, idx int) []model.Node {
	out := make([]model.Node, 0, len(nodes)-1)
	for i, n := range nodes {
		if i == idx {
			continue
		}
		conns := make([]int, 0, len(n.Connections))
		for _, c := range n.Connections {
			if c == idx {
				continue
			}
			if c > idx {
				c--
			}
			conns = append(conns, c)
		}
		n.Connections = conns
		out = append(out, n)
	}
	return out
}

// FindLowestBetweenness returns the index, among indices, whose node has
// the smallest betweenness centrality. Ties are broken by first occurrence.
func FindLowestBetweenness(indices []int, nodes []model.Node) int {
	best := indices[0]
	bestVal := nodes[best].Betweenness
	for _, idx := range indices[1:] {
		if nodes[idx].Betweenness < bestVal {
			best = idx
			bestVal = nodes[idx].Betweenness
		}
	}
	return best
}

// CheckReciprocity returns a human-readable warning for every adjacency
// entry that is not mirrored on the other endpoint, or that references a
// node's own index. It never errors — these are sanity warnings logged by
// the orchestrator, not a reason to abort.
func CheckReciprocity(nodes []model.Node) []string {
	var warnings []string
	for i, n := range nodes {
		for _, j := range n.Connections {
			if j == i {
				warnings = append(warnings, formatSelfConnection(i))
				continue
			}
			if j < 0 || j >= len(nodes) {
				warnings = append(warnings, formatOutOfRange(i, j))
				continue
			}
			if !containsInt(nodes[j].Connections, i) {
				warnings = append(warnings, formatAsymmetric(i, j))
			}
		}
	}
	sort.Strings(warnings)
	return warnings
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func formatSelfConnection(i int) string {
	return "node " + strconv.Itoa(i) + " is connected to itself"
}

func formatOutOfRange(i, j int) string {
	return "node " + strconv.Itoa(i) + " references out-of-range peer index " + strconv.Itoa(j)
}

func formatAsymmetric(i, j int) string {
	return "node " + strconv.Itoa(i) + " connects to " + strconv.Itoa(j) + " but not vice versa"
}
