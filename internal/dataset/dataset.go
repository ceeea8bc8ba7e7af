// v1
// internal/dataset/dataset.go

// Package dataset synthesizes labelled driver-behaviour data for offline
// experiments. Personas and action sequences come from a chat model when
// an API client is supplied and fall back to canned examples otherwise,
// so the tool also works without network access.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"strconv"
	"time"
)

// Trip context pools. The values match the labels the downstream
// notebooks group by.
var (
	weatherConditions = []string{"sunny", "rainy", "snowy", "cloudy", "foggy"}
	tripTypes         = []string{"commute_work", "commute_home", "leisure", "shopping", "long_trip"}
	timesOfDay        = []string{"morning", "afternoon", "evening", "night"}
)

// TripContext captures the situational variables one trip is generated
// under. Every action row of the trip repeats them.
type TripContext struct {
	Weather             string `json:"weather"`
	TripType            string `json:"trip_type"`
	TimeOfDay           string `json:"time_of_day"`
	OutsideTemperature  int    `json:"outside_temperature"`
	TripDurationMinutes int    `json:"trip_duration_minutes"`
	PassengerCount      int    `json:"passenger_count"`
	IsWeekend           bool   `json:"is_weekend"`
}

// NewTripContext draws a random trip context from the configured pools.
func NewTripContext(rng *rand.Rand) TripContext {
	return TripContext{
		Weather:             weatherConditions[rng.Intn(len(weatherConditions))],
		TripType:            tripTypes[rng.Intn(len(tripTypes))],
		TimeOfDay:           timesOfDay[rng.Intn(len(timesOfDay))],
		OutsideTemperature:  rng.Intn(46) - 10,
		TripDurationMinutes: rng.Intn(116) + 5,
		PassengerCount:      rng.Intn(4) + 1,
		IsWeekend:           rng.Intn(2) == 0,
	}
}

// Record is one action row of the generated dataset.
type Record struct {
	DriverID            int
	TripID              string
	Timestamp           time.Time
	Action              string
	Value               *float64
	ContextReason       string
	Weather             string
	TripType            string
	TimeOfDay           string
	OutsideTemperature  int
	TripDurationMinutes int
	PassengerCount      int
	IsWeekend           bool
	DriverPersona       string
}

var csvHeader = []string{
	"driver_id",
	"trip_id",
	"timestamp",
	"action",
	"value",
	"context_reason",
	"weather",
	"trip_type",
	"time_of_day",
	"outside_temperature",
	"trip_duration_minutes",
	"passenger_count",
	"is_weekend",
	"driver_persona",
}

// WriteCSV renders records with the canonical column layout. Missing
// values stay empty so spreadsheet tools and dataframe loaders treat
// them as nulls.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range records {
		value := ""
		if r.Value != nil {
			value = strconv.FormatFloat(*r.Value, 'f', -1, 64)
		}
		row := []string{
			strconv.Itoa(r.DriverID),
			r.TripID,
			r.Timestamp.UTC().Format(time.RFC3339),
			r.Action,
			value,
			r.ContextReason,
			r.Weather,
			r.TripType,
			r.TimeOfDay,
			strconv.Itoa(r.OutsideTemperature),
			strconv.Itoa(r.TripDurationMinutes),
			strconv.Itoa(r.PassengerCount),
			strconv.FormatBool(r.IsWeekend),
			r.DriverPersona,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Summary aggregates headline numbers about a generated dataset.
type Summary struct {
	TotalRecords  int
	UniqueDrivers int
	UniqueTrips   int
	ActionCounts  map[string]int
}

// Summarize computes dataset statistics for operator output.
func Summarize(records []Record) Summary {
	drivers := map[int]struct{}{}
	trips := map[string]struct{}{}
	actions := map[string]int{}
	for _, r := range records {
		drivers[r.DriverID] = struct{}{}
		trips[r.TripID] = struct{}{}
		actions[r.Action]++
	}
	return Summary{
		TotalRecords:  len(records),
		UniqueDrivers: len(drivers),
		UniqueTrips:   len(trips),
		ActionCounts:  actions,
	}
}

// TopActions lists the action names of the summary ordered by
// descending count, names tie-breaking alphabetically.
func (s Summary) TopActions(n int) []string {
	names := make([]string, 0, len(s.ActionCounts))
	for name := range s.ActionCounts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if s.ActionCounts[names[i]] != s.ActionCounts[names[j]] {
			return s.ActionCounts[names[i]] > s.ActionCounts[names[j]]
		}
		return names[i] < names[j]
	})
	if n > 0 && n < len(names) {
		names = names[:n]
	}
	return names
}
