// Package ips implements the Intelligent Peer Sharing analysis: it takes a
// crawl snapshot's node graph and produces, for every node, a recommended
// peer list rated by a multi-criteria blend of structural centralities and
// (optionally) geolocation preference.
package ips

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/runziggurat/ips/pkg/debug"
	"github.com/runziggurat/ips/pkg/metrics"
	"github.com/runziggurat/ips/pkg/model"
	"github.com/runziggurat/ips/pkg/statistics"
)

// ErrMultipleMassiveIslands is returned when the network has more than one
// connected component exceeding MassiveIslandPercentage of its population.
// This is a fatal condition: the MCDA phase assumes a single dominant
// component to rate peers against.
var ErrMultipleMassiveIslands = errors.New("ips: more than one massive island in the network")

// Result is everything the orchestrator produces from one run.
type Result struct {
	PeerList        []model.Peer
	VanillaPeerList []model.Peer
	FinalState      *model.IpsState
	InitialStats    statistics.Statistics
	FinalStats      statistics.Statistics
	Warnings        []string
	Elapsed         time.Duration
}

// DefaultWeights mirrors the reference MCDA criterion weights.
func DefaultWeights() Weights {
	return Weights{
		Location:    0.3,
		Degree:      0.25,
		Eigenvector: 0.1,
		Betweenness: 0.25,
		Closeness:   0.1,
	}
}

// DefaultConfig mirrors the reference implementation's defaults.
func DefaultConfig() Config {
	return Config{
		Geolocation:                 GeolocationPreferCloser,
		GeolocationMinMaxDistanceKm: 1000,
		ChangeAtLeast:               1,
		ChangeNoMore:                2,
		BridgeThresholdAdjustment:   1.25,
		Weights:                     DefaultWeights(),
	}
}

// Run executes the full pipeline over nodes: reciprocity sanity check,
// state construction, the security phase (island detection plus integrity
// probe/repair), the MCDA phase (one Decide pass per node index, in index
// order — the pipeline never reorders or parallelizes this loop, since
// later nodes' decisions depend on earlier ones' mutations to finalState),
// and final statistics.
func Run(nodes []model.Node, cfg Config, logger *log.Logger) (*Result, error) {
	defer debug.LogEnterExit("ips.Run")()
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	start := time.Now()

	warnings := CheckReciprocity(nodes)
	for _, w := range warnings {
		logger.Println(w)
	}

	vanillaPeerList := GeneratePeerList(nodes)

	buildStop := metrics.Timer(metrics.StateBuild)
	workingState, err := BuildState(nodes, true, cfg.Workers)
	buildStop()
	if err != nil {
		return nil, fmt.Errorf("ips: building initial state: %w", err)
	}
	initialStats := statistics.Generate(workingState)

	securityStop := metrics.Timer(metrics.SecurityPhase)
	islands := DetectIslands(workingState.Nodes)
	massiveCount := CountMassiveIslands(islands, len(workingState.Nodes))
	switch {
	case massiveCount > 1:
		securityStop()
		return nil, fmt.Errorf("%w: found %d", ErrMultipleMassiveIslands, massiveCount)
	case len(islands) > 1:
		logger.Printf("no more than one massive island, but %d disconnected components exist", len(islands))
	default:
		logger.Println("network has a single connected component")
	}

	robust := CheckAndFixIntegrity(workingState)
	securityStop()
	if !robust {
		logger.Println("integrity probe found fragility; repaired in place, regenerating state")
		buildStop = metrics.Timer(metrics.StateBuild)
		workingState, err = BuildState(workingState.Nodes, true, cfg.Workers)
		buildStop()
		if err != nil {
			return nil, fmt.Errorf("ips: regenerating state after repair: %w", err)
		}
	} else {
		logger.Println("integrity probe found no fragmentation risk")
	}

	degreeValues := make([]float64, 0, len(workingState.Degrees))
	for _, d := range workingState.Degrees {
		degreeValues = append(degreeValues, float64(d))
	}
	degreeAvg := statistics.Average(degreeValues)

	bridges := FindBridges(workingState.Nodes, cfg.BridgeThresholdAdjustment)
	constFactors := CalculateConstFactors(workingState, cfg.Weights)

	mcdaStop := metrics.Timer(metrics.MCDAPhase)
	finalState := CloneState(workingState)
	for nodeIdx := range workingState.Nodes {
		debug.Log("deciding node %d/%d", nodeIdx, len(workingState.Nodes))
		DecideNode(nodeIdx, workingState, finalState, constFactors, bridges, degreeAvg, cfg)
	}
	mcdaStop()

	finalState, err = BuildState(finalState.Nodes, true, cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("ips: building final state: %w", err)
	}
	finalStats := statistics.Generate(finalState)

	return &Result{
		PeerList:        GeneratePeerList(finalState.Nodes),
		VanillaPeerList: vanillaPeerList,
		FinalState:      finalState,
		InitialStats:    initialStats,
		FinalStats:      finalStats,
		Warnings:        warnings,
		Elapsed:         time.Since(start),
	}, nil
}
