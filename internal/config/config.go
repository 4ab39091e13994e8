package config

import (
	"os"
	"runtime"
	"strconv"
)

// Config holds application configuration from environment variables.
// Values that vary per run (zone file, service date, output) are CLI
// flags instead.
type Config struct {
	DBPath  string
	GTFSDir string
	GTFSURL string
	RTURL   string // GTFS-RT TripUpdates feed, empty disables delays

	// Departure window, seconds since service-day midnight.
	MinDeparture float64
	MaxDeparture float64
	StepSize     float64

	Workers int

	// Access/egress walking.
	WalkSpeed       float64 // m/s
	SearchRadius    float64 // meters
	ExtensionRadius float64 // meters

	// Timetable construction.
	TransferRadius  float64 // meters
	MinTransferTime float64 // seconds
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		DBPath:  envStr("PTSKIM_DB_PATH", "./ptskim.db"),
		GTFSDir: envStr("PTSKIM_GTFS_DIR", "./data"),
		GTFSURL: envStr("PTSKIM_GTFS_URL", ""),
		RTURL:   envStr("PTSKIM_RT_URL", ""),

		MinDeparture: envFloat("PTSKIM_MIN_DEPARTURE", 6*3600),
		MaxDeparture: envFloat("PTSKIM_MAX_DEPARTURE", 9*3600),
		StepSize:     envFloat("PTSKIM_STEP_SIZE", 120),

		Workers: envInt("PTSKIM_WORKERS", runtime.NumCPU()),

		WalkSpeed:       envFloat("PTSKIM_WALK_SPEED", 1.1),
		SearchRadius:    envFloat("PTSKIM_SEARCH_RADIUS", 1000),
		ExtensionRadius: envFloat("PTSKIM_EXTENSION_RADIUS", 500),

		TransferRadius:  envFloat("PTSKIM_TRANSFER_RADIUS", 400),
		MinTransferTime: envFloat("PTSKIM_MIN_TRANSFER_TIME", 120),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
