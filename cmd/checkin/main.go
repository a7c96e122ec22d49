package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"

	"checkin-api/internal/capture"
	"checkin-api/internal/config"
	"checkin-api/internal/enrichment"
	"checkin-api/internal/geolocation"
	"checkin-api/internal/logging"
	"checkin-api/internal/submission"

	"github.com/rs/zerolog/log"
)

const userAgent = "checkin-cli/1.0"

func main() {
	lat := flag.Float64("lat", 0, "Latitude of your current position")
	lon := flag.Float64("lon", 0, "Longitude of your current position")
	yes := flag.Bool("yes", false, "Agree to share your location without being asked")
	flag.Parse()

	if !isSet("lat") || !isSet("lon") {
		fmt.Println("Error: --lat and --lon flags are required")
		os.Exit(1)
	}

	cfg, err := config.LoadClientConfig("configs")
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: "console"})

	client := submission.NewClient(cfg.SubmissionURL(), nil)
	perm := &geolocation.PromptPermission{
		In:          os.Stdin,
		Out:         os.Stdout,
		Destination: client.Endpoint(),
		Remembered:  *yes,
	}
	source := geolocation.StaticSource{Coordinates: geolocation.Coordinates{Latitude: *lat, Longitude: *lon}}

	pipeline := capture.NewPipeline(
		geolocation.NewAcquirer(perm, source),
		enrichment.NewResolver(nil, cfg.GeocodeURL, cfg.IPEchoURL, userAgent),
		capture.NewBuilder(),
		client,
		capture.Device{
			Language:  os.Getenv("LANG"),
			Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			UserAgent: userAgent,
		},
	)

	rec, err := pipeline.Run(context.Background())
	if err != nil {
		if errors.Is(err, geolocation.ErrPermissionDenied) {
			fmt.Println("Nothing was shared.")
			os.Exit(2)
		}
		log.Error().Err(err).Msg("check-in failed")
		os.Exit(1)
	}

	fmt.Printf("Checked in as %s at %s\n", rec.ID, rec.Address)
}

func isSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
