// Package crawlio reads a crawl snapshot and writes the peer-list and
// state-file outputs. Loading the snapshot and writing results are named
// external collaborators of the IPS core, not part of it — this package is
// the thin, real implementation of that boundary.
package crawlio

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"github.com/runziggurat/ips/pkg/histogram"
	"github.com/runziggurat/ips/pkg/metrics"
	"github.com/runziggurat/ips/pkg/model"
)

// NetworkType is the crawl-reported reachability class of a node.
type NetworkType string

const (
	NetworkUnknown NetworkType = "Unknown"
	NetworkIPv4    NetworkType = "IPv4"
	NetworkIPv6    NetworkType = "IPv6"
	NetworkOnion   NetworkType = "Onion"
)

// CrawlResult is the decoded shape of the input snapshot: parallel arrays
// indexed by node. Unrecognized fields in the source JSON (crawler-specific
// metadata the IPS pipeline has no use for) are silently ignored rather
// than causing a decode error.
type CrawlResult struct {
	NodeIndices      [][]int       `json:"nodes_indices"`
	NodeAddrs        []string      `json:"node_addrs"`
	NodeNetworkTypes []NetworkType `json:"node_network_types"`
}

// Load reads and decodes a crawl result from path.
func Load(path string) (CrawlResult, error) {
	defer metrics.Timer(metrics.CrawlLoad)()
	data, err := os.ReadFile(path)
	if err != nil {
		return CrawlResult{}, fmt.Errorf("crawlio: reading %s: %w", path, err)
	}
	var result CrawlResult
	if err := json.Unmarshal(data, &result); err != nil {
		return CrawlResult{}, fmt.Errorf("crawlio: decoding %s: %w", path, err)
	}
	if len(result.NodeAddrs) != len(result.NodeIndices) {
		return CrawlResult{}, fmt.Errorf("crawlio: %s: node_addrs has %d entries but nodes_indices has %d",
			path, len(result.NodeAddrs), len(result.NodeIndices))
	}
	return result, nil
}

// Nodes builds the initial node slice for the IPS pipeline, filtering out
// any node whose network type is excluded by networkTypeFilter (the empty
// string keeps every node).
func (r CrawlResult) Nodes(networkTypeFilter string) []model.Node {
	keep := make([]bool, len(r.NodeAddrs))
	remap := make([]int, len(r.NodeAddrs))
	kept := 0
	for i := range r.NodeAddrs {
		nt := NetworkUnknown
		if i < len(r.NodeNetworkTypes) {
			nt = r.NodeNetworkTypes[i]
		}
		if networkTypeFilter != "" && string(nt) != networkTypeFilter {
			remap[i] = -1
			continue
		}
		keep[i] = true
		remap[i] = kept
		kept++
	}

	nodes := make([]model.Node, 0, kept)
	for i, addr := range r.NodeAddrs {
		if !keep[i] {
			continue
		}
		conns := make([]int, 0, len(r.NodeIndices[i]))
		for _, j := range r.NodeIndices[i] {
			if j < 0 || j >= len(keep) || !keep[j] {
				continue
			}
			conns = append(conns, remap[j])
		}
		if len(conns) == 0 {
			// Filtering removed every neighbor; self-loop to keep the node
			// present in the graph instead of stranding it with no edges.
			conns = append(conns, remap[i])
		}
		nodes = append(nodes, model.Node{Addr: addr, Connections: conns})
	}
	return nodes
}

// StateFile is the on-disk shape of the state output: the final node
// population with its centralities, plus binned distributions for display.
type StateFile struct {
	ElapsedMs  int64                 `json:"elapsed_ms"`
	Nodes      []StateNode           `json:"nodes"`
	Histograms []histogram.Summary   `json:"histograms"`
}

// StateNode is one node's entry in the state-file output.
type StateNode struct {
	Addr        string  `json:"addr"`
	Betweenness float64 `json:"betweenness"`
	Closeness   float64 `json:"closeness"`
	Connections []int   `json:"connections"`
}

// BuildStateFile assembles a StateFile from a final IpsState.
func BuildStateFile(state *model.IpsState, elapsedMs int64) StateFile {
	nodes := make([]StateNode, len(state.Nodes))
	degreeHist := histogram.New("degree")
	betweennessHist := histogram.New("betweenness")
	closenessHist := histogram.New("closeness")

	for i, n := range state.Nodes {
		nodes[i] = StateNode{
			Addr:        n.Addr,
			Betweenness: n.Betweenness,
			Closeness:   n.Closeness,
			Connections: n.Connections,
		}
		degreeHist.Add(float64(len(n.Connections)))
		betweennessHist.Add(n.Betweenness)
		closenessHist.Add(n.Closeness)
	}

	return StateFile{
		ElapsedMs: elapsedMs,
		Nodes:     nodes,
		Histograms: []histogram.Summary{
			degreeHist.Compute(256),
			betweennessHist.Compute(256),
			closenessHist.Compute(256),
		},
	}
}

// WriteJSON encodes v and writes it to path.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("crawlio: encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("crawlio: writing %s: %w", path, err)
	}
	return nil
}
