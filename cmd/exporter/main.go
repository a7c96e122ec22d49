package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"checkin-api/internal/config"
	"checkin-api/internal/models"
	"checkin-api/internal/repository"
)

var header = []string{
	"id", "latitude", "longitude", "address", "ip", "user_agent",
	"timestamp", "session_id", "device_info", "created_at",
}

func main() {
	file := flag.String("file", "", "Path of the CSV file to write")
	flag.Parse()

	if *file == "" {
		fmt.Println("Error: --file flag is required")
		os.Exit(1)
	}

	// Load config
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	store, err := repository.Open(cfg.StoreURI, cfg.DBName, cfg.ConnectTimeout)
	if err != nil {
		fmt.Printf("Error opening store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close(context.Background())

	records, err := store.List(context.Background())
	if err != nil {
		fmt.Printf("Error reading records: %v\n", err)
		os.Exit(1)
	}

	out, err := os.Create(*file)
	if err != nil {
		fmt.Printf("Error creating file: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeCSV(out, records); err != nil {
		fmt.Printf("Error writing CSV: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Exported %d records to %s\n", len(records), *file)
}

func writeCSV(w io.Writer, records []models.CaptureRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range records {
		device, err := json.Marshal(r.DeviceInfo)
		if err != nil {
			return fmt.Errorf("failed to encode device info for %s: %w", r.ID, err)
		}
		row := []string{
			r.ID,
			strconv.FormatFloat(r.Latitude, 'f', -1, 64),
			strconv.FormatFloat(r.Longitude, 'f', -1, 64),
			r.Address,
			r.IP,
			r.UserAgent,
			r.Timestamp.UTC().Format(time.RFC3339),
			r.SessionID,
			string(device),
			r.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write record %s: %w", r.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
