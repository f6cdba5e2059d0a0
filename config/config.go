package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	fittrack "github.com/lucasjlepore/fit-tracker"
)

// Config captures runtime configuration for the fittrack tools.
type Config struct {
	Calibration fittrack.Calibration
	DBPath      string
	Device      string
	LogLevel    string
	LogFormat   string
	Rescan      string
	LineTags    map[string]string
}

// Load reads an optional .env file, then environment variables, and applies
// defaults.
func Load(envFiles ...string) Config {
	_ = godotenv.Load(envFiles...)

	def := fittrack.DefaultCalibration()
	return Config{
		Calibration: fittrack.Calibration{
			MonitoringOffset: getDurationEnv("FITTRACK_MONITORING_OFFSET", def.MonitoringOffset),
			GapThreshold:     getDurationEnv("FITTRACK_GAP_THRESHOLD", def.GapThreshold),
			DisplayOffset:    getDurationEnv("FITTRACK_DISPLAY_OFFSET", def.DisplayOffset),
		},
		DBPath:    getEnv("FITTRACK_DB_PATH", "fittrack.db"),
		Device:    getEnv("FITTRACK_DEVICE", ""),
		LogLevel:  getEnv("FITTRACK_LOG_LEVEL", "info"),
		LogFormat: getEnv("FITTRACK_LOG_FORMAT", "text"),
		Rescan:    getEnv("FITTRACK_RESCAN", "@hourly"),
		LineTags:  parseTags(getEnv("FITTRACK_LINE_TAGS", "")),
	}
}

// parseTags reads "k=v,k2=v2" pairs. Malformed pairs are dropped.
func parseTags(value string) map[string]string {
	tags := make(map[string]string)
	for _, pair := range splitAndTrim(value) {
		k, v, ok := strings.Cut(pair, "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if !ok || k == "" || v == "" {
			continue
		}
		tags[k] = v
	}
	return tags
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
