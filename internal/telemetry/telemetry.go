// Package telemetry reduces raw car telemetry to a per-lap driving style
// score: the mean absolute lateral acceleration (accy_can) of each lap.
package telemetry

import (
	"cmp"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Channel is the telemetry channel the score is computed from.
const Channel = "accy_can"

// MaxLap drops the placeholder lap numbers some loggers emit.
const MaxLap = 1000

// ErrNoCarNumber is returned when a row carries no usable car number and
// no earlier row provided one.
var ErrNoCarNumber = errors.New("no car number")

// Format is the layout of the raw telemetry file.
type Format string

const (
	// FormatLong has one reading per row: telemetry_name, telemetry_value.
	FormatLong Format = "long"
	// FormatJSON packs all channels of a sample into a JSON array in the
	// value column.
	FormatJSON Format = "json"
)

// IsValid checks if the format is known.
func (f Format) IsValid() bool {
	return f == FormatLong || f == FormatJSON
}

// LapAggression is the score of one lap of one car.
type LapAggression struct {
	Number            string  `json:"number" parquet:"NUMBER"`
	LapNumber         int64   `json:"lap_number" parquet:"LAP_NUMBER"`
	AvgAggressiveness float64 `json:"avg_aggressiveness" parquet:"avg_aggressiveness"`
	Samples           int64   `json:"samples" parquet:"samples"`
}

// Stats summarize an aggregation run.
type Stats struct {
	Rows     int `json:"rows"`
	Readings int `json:"readings"`
	Skipped  int `json:"skipped"`
}

// carNumbers resolves car numbers row by row. The last vehicle_number seen
// is carried forward explicitly as the fallback for ids without a number.
type carNumbers struct {
	last string
}

// resolve returns the car number for a row. vehicleNumber is empty when the
// file has no vehicle_number column.
func (c *carNumbers) resolve(vehicleID, vehicleNumber string) (string, error) {
	if n, ok := parseCarNumber(vehicleNumber); ok {
		c.last = n
		return n, nil
	}

	id := clean(vehicleID)
	if i := strings.LastIndex(id, "-"); i >= 0 {
		id = id[i+1:]
	}
	if n, err := strconv.Atoi(id); err == nil && n > 0 {
		return strconv.Itoa(n), nil
	}

	if c.last != "" {
		return c.last, nil
	}
	return "", fmt.Errorf("%w: vehicle_id %q", ErrNoCarNumber, vehicleID)
}

func parseCarNumber(s string) (string, bool) {
	s = clean(s)
	if s == "" {
		return "", false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return "", false
	}
	return strconv.Itoa(int(f)), true
}

func clean(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, `"`, ""))
}

type lapKey struct {
	number string
	lap    int64
}

type accumulator struct {
	sum   float64
	count int64
}

// Aggregate streams a raw telemetry CSV and returns the per-lap score
// sorted by car then lap. Rows that cannot be parsed are skipped.
func Aggregate(ctx context.Context, r io.Reader, format Format) ([]LapAggression, Stats, error) {
	var stats Stats
	if !format.IsValid() {
		return nil, stats, fmt.Errorf("unknown telemetry format: %q", format)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[clean(name)] = i
	}

	required := []string{"vehicle_id", "lap"}
	if format == FormatLong {
		required = append(required, "telemetry_name", "telemetry_value")
	} else {
		required = append(required, "value")
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, stats, fmt.Errorf("missing column %q", name)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	numbers := &carNumbers{}
	acc := make(map[lapKey]*accumulator)

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			stats.Skipped++
			continue
		}
		if err != nil {
			return nil, stats, err
		}

		stats.Rows++
		if stats.Rows%100000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
		}

		var value float64
		var ok bool
		if format == FormatLong {
			value, ok = longValue(field(rec, "telemetry_name"), field(rec, "telemetry_value"))
		} else {
			value, ok = jsonValue(field(rec, "value"))
		}

		// A vehicle_number seen on any row is kept as the fallback.
		number, numErr := numbers.resolve(field(rec, "vehicle_id"), field(rec, "vehicle_number"))
		if !ok {
			continue
		}

		lap, lapErr := strconv.ParseFloat(clean(field(rec, "lap")), 64)
		if numErr != nil || lapErr != nil || math.IsNaN(value) || lap >= MaxLap {
			stats.Skipped++
			continue
		}

		k := lapKey{number: number, lap: int64(lap)}
		a := acc[k]
		if a == nil {
			a = &accumulator{}
			acc[k] = a
		}
		a.sum += math.Abs(value)
		a.count++
		stats.Readings++
	}

	out := make([]LapAggression, 0, len(acc))
	for k, a := range acc {
		out = append(out, LapAggression{
			Number:            k.number,
			LapNumber:         k.lap,
			AvgAggressiveness: a.sum / float64(a.count),
			Samples:           a.count,
		})
	}
	slices.SortFunc(out, func(a, b LapAggression) int {
		if c := compareNumbers(a.Number, b.Number); c != 0 {
			return c
		}
		return cmp.Compare(a.LapNumber, b.LapNumber)
	})
	return out, stats, nil
}

func compareNumbers(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return cmp.Compare(na, nb)
	}
	return strings.Compare(a, b)
}

func longValue(name, value string) (float64, bool) {
	if clean(name) != Channel {
		return 0, false
	}
	v, err := strconv.ParseFloat(clean(value), 64)
	if err != nil {
		return math.NaN(), true
	}
	return v, true
}

type jsonReading struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

func jsonValue(raw string) (float64, bool) {
	var readings []jsonReading
	if err := json.Unmarshal([]byte(raw), &readings); err != nil {
		return 0, false
	}
	for _, r := range readings {
		if clean(r.Name) != Channel {
			continue
		}
		var f float64
		if err := json.Unmarshal(r.Value, &f); err == nil {
			return f, true
		}
		var s string
		if err := json.Unmarshal(r.Value, &s); err == nil {
			if v, err := strconv.ParseFloat(clean(s), 64); err == nil {
				return v, true
			}
		}
		return math.NaN(), true
	}
	return 0, false
}
