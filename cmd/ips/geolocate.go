package main

import (
	"log"
	"net"

	"github.com/runziggurat/ips/internal/geoloc"
	"github.com/runziggurat/ips/pkg/config"
	"github.com/runziggurat/ips/pkg/ips"
	"github.com/runziggurat/ips/pkg/model"
)

// resolveGeolocation populates each node's Geolocation field via the
// configured provider chain, when the run's mode calls for it. Lookup
// failures for individual nodes are non-fatal: those nodes simply
// participate in MCDA without a location factor.
func resolveGeolocation(nodes []model.Node, mode ips.GeolocationMode, geoCfg config.GeoIPConfig, logger *log.Logger) {
	if mode == ips.GeolocationOff {
		return
	}

	cache := geoloc.NewCache(geoCfg.CacheFilePath, geoCfg.KeepInCacheDays)
	if geoCfg.CacheFilePath != "" {
		if err := cache.Load(); err != nil {
			logger.Printf("geolocation cache load: %v", err)
		}
	}
	for _, name := range geoCfg.Providers {
		switch name {
		case "ipapi":
			cache.AddProvider(geoloc.NewIPAPIProvider())
		default:
			logger.Printf("geolocation: unknown provider %q, skipping", name)
		}
	}

	for i := range nodes {
		host, _, err := net.SplitHostPort(nodes[i].Addr)
		if err != nil {
			host = nodes[i].Addr
		}
		coords, ok := cache.Lookup(host)
		if !ok {
			continue
		}
		nodes[i].Geolocation = &model.Geolocation{Coordinates: &coords}
	}

	if geoCfg.CacheFilePath != "" {
		if err := cache.Save(); err != nil {
			logger.Printf("geolocation cache save: %v", err)
		}
	}
}
