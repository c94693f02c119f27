package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// ErrNotFound is returned when a circuit has no processed lap files.
var ErrNotFound = errors.New("dataset not found")

// Sessions are the processed race files of a circuit, in load order.
var Sessions = []string{"R1_processed", "R2_processed"}

// Dataset is the concatenated lap history of a circuit.
type Dataset struct {
	Circuit string   `json:"circuit"`
	Sources []string `json:"sources"`
	Laps    []Lap    `json:"-"`
}

// Load reads every session file found in dir. Parquet is preferred over
// CSV when both exist. At least one session must be present.
func Load(circuit, dir string) (*Dataset, error) {
	ds := &Dataset{Circuit: circuit}

	for _, session := range Sessions {
		path, ok := findSession(dir, session)
		if !ok {
			continue
		}
		laps, err := LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		ds.Sources = append(ds.Sources, path)
		ds.Laps = append(ds.Laps, laps...)
	}

	if len(ds.Sources) == 0 {
		return nil, fmt.Errorf("%w: no session files for %s in %s", ErrNotFound, circuit, dir)
	}
	return ds, nil
}

// Available reports whether dir holds at least one session file.
func Available(dir string) bool {
	for _, session := range Sessions {
		if _, ok := findSession(dir, session); ok {
			return true
		}
	}
	return false
}

func findSession(dir, session string) (string, bool) {
	for _, ext := range []string{".parquet", ".csv"} {
		path := filepath.Join(dir, session+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// LoadFile reads a single parquet or CSV file, chosen by extension.
func LoadFile(path string) ([]Lap, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return readParquet(path)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadCSV(f)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}
}

func readParquet(path string) ([]Lap, error) {
	rows, err := parquet.ReadFile[parquetLap](path)
	if err != nil {
		return nil, err
	}
	laps := make([]Lap, len(rows))
	for i, r := range rows {
		laps[i] = r.lap()
	}
	return laps, nil
}

// ReadCSV reads processed laps from CSV with a header row. Unknown columns
// are ignored. Empty or unparseable numeric cells become NaN. Integer
// columns that are empty, non-finite or out of range become zero, and a
// tyre age like that is flagged missing.
func ReadCSV(r io.Reader) ([]Lap, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.Trim(strings.TrimSpace(name), `"`)] = i
	}

	cell := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	num := func(rec []string, name string) float64 {
		v, err := strconv.ParseFloat(cell(rec, name), 64)
		if err != nil || math.IsInf(v, 0) {
			return math.NaN()
		}
		return v
	}
	count := func(rec []string, name string) (int, bool) {
		v := num(rec, name)
		if math.IsNaN(v) || v < 0 || v > maxLapCount {
			return 0, false
		}
		return int(v), true
	}
	integer := func(rec []string, name string) int {
		n, _ := count(rec, name)
		return n
	}

	var laps []Lap
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		tireAge, ok := count(rec, ColTireAge)
		laps = append(laps, Lap{
			Number:         cell(rec, ColNumber),
			LapNumber:      integer(rec, ColLapNumber),
			StintID:        integer(rec, ColStintID),
			TireAgeLaps:    tireAge,
			TireAgeMissing: !ok,
			LapTimeSec:     num(rec, ColLapTimeSec),
			LapDelta:       num(rec, ColLapDelta),
			S1Delta:        num(rec, ColS1Delta),
			S2Delta:        num(rec, ColS2Delta),
			S3Delta:        num(rec, ColS3Delta),
			TrackTempC:     num(rec, ColTrackTemp),
			Aggressiveness: num(rec, ColAggressiveness),
		})
	}
	return laps, nil
}
