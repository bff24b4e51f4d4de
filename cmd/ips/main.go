// Command ips runs one Intelligent Peer Sharing analysis pass: it reads a
// crawl snapshot, computes recommended peer lists for every node, and
// writes the peer list and state file the crawler consumes next.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"

	json "github.com/goccy/go-json"

	"github.com/runziggurat/ips/internal/crawlio"
	"github.com/runziggurat/ips/pkg/config"
	"github.com/runziggurat/ips/pkg/ips"
	"github.com/runziggurat/ips/pkg/statistics"
	"github.com/runziggurat/ips/pkg/version"
)

const (
	exitOK = iota
	exitMalformedInput
	exitMultipleMassiveIslands
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	fs := flag.NewFlagSet("ips", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "ips.yaml", "Path to the YAML configuration file")
	cpuProfile := fs.String("cpu-profile", "", "Write CPU profile to file")
	showVersion := fs.Bool("version", false, "Show version")
	showHelp := fs.Bool("help", false, "Show help")
	robotState := fs.Bool("robot-state", false, "Print the resulting state file to stdout as JSON instead of writing it to disk")

	if err := fs.Parse(args); err != nil {
		return exitMalformedInput
	}

	if *showHelp {
		fmt.Fprintln(stdout, "Usage: ips [options]")
		fmt.Fprintln(stdout, "\nComputes recommended peer lists from a crawl snapshot.")
		fs.PrintDefaults()
		return exitOK
	}
	if *showVersion {
		fmt.Fprintf(stdout, "ips %s\n", version.Version)
		return exitOK
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(stderr, "could not create CPU profile: %v\n", err)
			return exitMalformedInput
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(stderr, "could not start CPU profile: %v\n", err)
			return exitMalformedInput
		}
		defer pprof.StopCPUProfile()
	}

	logger := log.New(stderr, "ips: ", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Printf("loading config: %v", err)
		return exitMalformedInput
	}
	if cfg.LogPath != "" {
		logFile, err := os.Create(cfg.LogPath)
		if err != nil {
			logger.Printf("creating log file: %v", err)
			return exitMalformedInput
		}
		defer logFile.Close()
		logger = log.New(logFile, "ips: ", log.LstdFlags)
	}

	crawl, err := crawlio.Load(cfg.InputFilePath)
	if err != nil {
		logger.Printf("loading crawl snapshot: %v", err)
		return exitMalformedInput
	}
	nodes := crawl.Nodes(cfg.NetworkType)

	ipsCfg, err := cfg.ToIpsConfig()
	if err != nil {
		logger.Printf("resolving configuration: %v", err)
		return exitMalformedInput
	}

	resolveGeolocation(nodes, ipsCfg.Geolocation, cfg.GeoIP, logger)

	result, err := ips.Run(nodes, ipsCfg, logger)
	if err != nil {
		if errors.Is(err, ips.ErrMultipleMassiveIslands) {
			logger.Printf("fatal: %v", err)
			return exitMultipleMassiveIslands
		}
		logger.Printf("running analysis: %v", err)
		return exitMalformedInput
	}

	statistics.Print(stdout, result.FinalStats)
	statistics.PrintDelta(stdout, result.InitialStats, result.FinalStats)
	logger.Printf("completed in %s", result.Elapsed)

	if err := crawlio.WriteJSON(cfg.PeerFilePath, result.PeerList); err != nil {
		logger.Printf("writing peer list: %v", err)
		return exitMalformedInput
	}
	if cfg.VanillaPeerFilePath != "" {
		if err := crawlio.WriteJSON(cfg.VanillaPeerFilePath, result.VanillaPeerList); err != nil {
			logger.Printf("writing vanilla peer list: %v", err)
			return exitMalformedInput
		}
	}

	stateFile := crawlio.BuildStateFile(result.FinalState, result.Elapsed.Milliseconds())
	if *robotState {
		data, err := json.MarshalIndent(stateFile, "", "  ")
		if err != nil {
			logger.Printf("encoding state file: %v", err)
			return exitMalformedInput
		}
		fmt.Fprintln(stdout, string(data))
	} else if err := crawlio.WriteJSON(cfg.StateFilePath, stateFile); err != nil {
		logger.Printf("writing state file: %v", err)
		return exitMalformedInput
	}

	return exitOK
}
