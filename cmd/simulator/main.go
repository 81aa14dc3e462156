package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// Location represents a geographical location with latitude and longitude coordinates.
type Location struct {
	Lat float64
	Lon float64
}

// Report is the body posted to the report API.
type Report struct {
	Type      string  `json:"type"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

var reportTypes = []string{"flood", "fire", "storm", "accident", "blockage"}

// Cities reports are scattered around
var cities = []Location{
	{Lat: 51.5074, Lon: -0.1278},   // London
	{Lat: 40.7128, Lon: -74.0060},  // New York
	{Lat: 40.4168, Lon: -3.7038},   // Madrid
	{Lat: 35.1856, Lon: 33.3823},   // Nicosia
	{Lat: 4.7110, Lon: -74.0721},   // Bogotá
	{Lat: 48.8566, Lon: 2.3522},    // Paris
	{Lat: 41.0082, Lon: 28.9784},   // Istanbul
	{Lat: 52.5200, Lon: 13.4050},   // Berlin
	{Lat: 35.6762, Lon: 139.6503},  // Tokyo
	{Lat: -33.8688, Lon: 151.2093}, // Sydney
	{Lat: 1.3521, Lon: 103.8198},   // Singapore
	{Lat: -23.5505, Lon: -46.6333}, // São Paulo
	{Lat: 43.6532, Lon: -79.3832},  // Toronto
	{Lat: 19.0760, Lon: 72.8777},   // Mumbai
}

const jitterMeters = 500.0

func jitterLocation(base Location, meters float64) Location {
	latMetersPerDeg := 111320.0
	lonMetersPerDeg := 111320.0 * math.Cos(base.Lat*math.Pi/180)
	dLat := (rand.Float64()*2 - 1) * (meters / latMetersPerDeg)
	dLon := (rand.Float64()*2 - 1) * (meters / lonMetersPerDeg)
	return Location{Lat: base.Lat + dLat, Lon: base.Lon + dLon}
}

func randomLocation() Location {
	base := cities[rand.Intn(len(cities))]
	return jitterLocation(base, jitterMeters)
}

func randomReport() Report {
	loc := randomLocation()
	return Report{
		Type:      reportTypes[rand.Intn(len(reportTypes))],
		Latitude:  loc.Lat,
		Longitude: loc.Lon,
	}
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

func sendReport(apiURL string, report Report) (string, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	resp, err := httpClient.Post(apiURL+"/reports", "application/json", bytes.NewBuffer(data))
	if err != nil {
		return "", fmt.Errorf("failed to send report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		var body struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return "", fmt.Errorf("report creation failed with status %d: %s", resp.StatusCode, body.Message)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	id, ok := result["id"].(string)
	if !ok {
		return "", fmt.Errorf("invalid report ID in response")
	}
	return id, nil
}

// simulate posts count reports (forever when count is 0) and returns how many were stored.
func simulate(apiURL string, count int, interval time.Duration) int {
	tick := time.NewTicker(interval)
	defer tick.Stop()

	sent := 0
	for i := 0; count == 0 || i < count; i++ {
		report := randomReport()
		id, err := sendReport(apiURL, report)
		if err != nil {
			log.WithError(err).Error("Failed to create report")
		} else {
			sent++
			log.WithFields(log.Fields{
				"report_id": id,
				"type":      report.Type,
				"latitude":  report.Latitude,
				"longitude": report.Longitude,
			}).Info("Created report")
		}
		if count != 0 && i == count-1 {
			break
		}
		<-tick.C
	}
	return sent
}

func main() {
	count := 20
	if val := os.Getenv("SIM_REPORTS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n >= 0 {
			count = n
		}
	}

	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:3001/api"
	}

	interval := 2 * time.Second
	if v := os.Getenv("SIM_TICK_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			interval = time.Duration(n) * time.Second
		}
	}

	log.WithFields(log.Fields{
		"reports":  count,
		"api_url":  apiURL,
		"interval": interval,
	}).Info("Starting report simulation")

	sent := simulate(apiURL, count, interval)
	log.WithField("created_reports", sent).Info("Report simulation finished")
}
