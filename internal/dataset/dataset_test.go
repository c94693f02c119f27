package dataset

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/parquet-go/parquet-go"
)

const sampleCSV = `NUMBER,LAP_NUMBER,STINT_ID,Laps_on_this_Tireset,LAP_TIME_SEC,LAP_DELTA,S1_DELTA,S2_DELTA,S3_DELTA,TRACK_TEMP,avg_aggressiveness,TOP_SPEED
7,2,0,1,100.5,0.5,0.1,0.2,0.2,30.4,1.1,200
7,3,0,2,100.7,0.7,0.2,0.2,0.3,31.2,1.2,201
7,4,0,3,100.9,0.9,0.3,0.3,0.3,32.9,,199
13,2,0,1,101.0,0.3,0.1,0.1,0.1,30.0,0.9,198
13,3,0,2,101.2,,0.1,0.1,0.1,31.0,1.0,197
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func sampleDataset(t *testing.T) *Dataset {
	t.Helper()
	laps, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	return &Dataset{Circuit: "VIR", Laps: laps}
}

func TestReadCSV(t *testing.T) {
	ds := sampleDataset(t)
	if len(ds.Laps) != 5 {
		t.Fatalf("expected 5 laps, got %d", len(ds.Laps))
	}

	first := ds.Laps[0]
	if first.Number != "7" || first.LapNumber != 2 || first.TireAgeLaps != 1 {
		t.Errorf("unexpected first lap: %+v", first)
	}
	if first.TrackTempC != 30.4 || first.Aggressiveness != 1.1 {
		t.Errorf("unexpected conditions: %+v", first)
	}
	if !math.IsNaN(ds.Laps[2].Aggressiveness) {
		t.Errorf("empty cell should be NaN, got %v", ds.Laps[2].Aggressiveness)
	}
	if !math.IsNaN(ds.Laps[4].LapDelta) {
		t.Errorf("empty delta should be NaN, got %v", ds.Laps[4].LapDelta)
	}
}

func TestReadCSV_Empty(t *testing.T) {
	laps, err := ReadCSV(strings.NewReader(""))
	if err != nil || laps != nil {
		t.Errorf("expected no laps and no error, got %v, %v", laps, err)
	}
}

func TestLoad_ConcatenatesSessions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "R1_processed.csv"), sampleCSV)
	writeFile(t, filepath.Join(dir, "R2_processed.csv"), sampleCSV)

	ds, err := Load("VIR", dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(ds.Laps) != 10 {
		t.Errorf("expected 10 laps, got %d", len(ds.Laps))
	}
	if len(ds.Sources) != 2 {
		t.Errorf("expected 2 sources, got %v", ds.Sources)
	}
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load("Barber", t.TempDir())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadFile_Parquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "R1_processed.parquet")
	num, lapNo, age := "22", int64(5), int64(4)
	delta, temp := 1.25, 28.0

	rows := []parquetLap{{
		Number:    &num,
		LapNumber: &lapNo,
		TireAge:   &age,
		LapDelta:  &delta,
		TrackTemp: &temp,
	}}
	if err := parquet.WriteFile(path, rows); err != nil {
		t.Fatal(err)
	}

	laps, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(laps) != 1 {
		t.Fatalf("expected 1 lap, got %d", len(laps))
	}
	got := laps[0]
	if got.Number != "22" || got.LapNumber != 5 || got.TireAgeLaps != 4 || got.LapDelta != 1.25 || got.TrackTempC != 28 {
		t.Errorf("unexpected lap: %+v", got)
	}
	if !math.IsNaN(got.Aggressiveness) {
		t.Errorf("null aggressiveness should be NaN, got %v", got.Aggressiveness)
	}
}

func TestParquetLap_NullTireAgeIsMissing(t *testing.T) {
	negative := int64(-3)
	tests := []struct {
		name string
		age  *int64
	}{
		{"null", nil},
		{"negative", &negative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := parquetLap{TireAge: tt.age}.lap()
			if !l.TireAgeMissing {
				t.Errorf("expected tire age to be flagged missing: %+v", l)
			}
			if v, _ := l.Value(ColTireAge); !math.IsNaN(v) {
				t.Errorf("expected NaN tire age, got %v", v)
			}
		})
	}
}

func TestReadCSV_InvalidTireAge(t *testing.T) {
	tests := []struct {
		name    string
		cell    string
		missing bool
		want    int
	}{
		{"present", "4", false, 4},
		{"empty", "", true, 0},
		{"garbage", "abc", true, 0},
		{"infinite", "Inf", true, 0},
		{"out of range", "1e30", true, 0},
		{"negative", "-2", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			laps, err := ReadCSV(strings.NewReader("NUMBER,Laps_on_this_Tireset,LAP_DELTA\n7," + tt.cell + ",0.5\n"))
			if err != nil {
				t.Fatal(err)
			}
			got := laps[0]
			if got.TireAgeMissing != tt.missing || got.TireAgeLaps != tt.want {
				t.Errorf("expected age %d missing=%v, got %d missing=%v", tt.want, tt.missing, got.TireAgeLaps, got.TireAgeMissing)
			}
		})
	}
}

func TestReadCSV_InfiniteFloatIsNaN(t *testing.T) {
	laps, err := ReadCSV(strings.NewReader("TRACK_TEMP,LAP_DELTA\n-Inf,+Inf\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(laps[0].TrackTempC) || !math.IsNaN(laps[0].LapDelta) {
		t.Errorf("infinite cells should be NaN, got %+v", laps[0])
	}
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	if _, err := LoadFile("laps.xlsx"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestRanges(t *testing.T) {
	r := sampleDataset(t).Ranges()

	want := Ranges{
		TireAge:        Range{Min: 1, Max: 25, Default: 10},
		TrackTemp:      Range{Min: 30, Max: 32, Default: 31},
		Aggressiveness: Range{Min: 0.9, Max: 1.2, Default: 1.05},
	}
	approx := cmp.Comparer(func(a, b float64) bool { return math.Abs(a-b) < 1e-9 })
	if diff := cmp.Diff(want, r, approx); diff != "" {
		t.Errorf("ranges mismatch (-want +got):\n%s", diff)
	}
}

func TestRanges_DegenerateFallsBack(t *testing.T) {
	ds := &Dataset{Laps: []Lap{
		{TireAgeLaps: 1, TrackTempC: 0, Aggressiveness: math.NaN()},
		{TireAgeLaps: 2, TrackTempC: 0.4, Aggressiveness: math.NaN()},
	}}
	r := ds.Ranges()

	if !r.TrackTemp.Fallback || r.TrackTemp.Min != 0 || r.TrackTemp.Max != 50 || r.TrackTemp.Default != 25 {
		t.Errorf("unexpected temperature fallback: %+v", r.TrackTemp)
	}
	if !r.Aggressiveness.Fallback || r.Aggressiveness.Min != 0.5 || r.Aggressiveness.Max != 1.5 {
		t.Errorf("unexpected aggressiveness fallback: %+v", r.Aggressiveness)
	}
}

func TestDrivers_SortedNumerically(t *testing.T) {
	ds := &Dataset{Laps: []Lap{{Number: "13"}, {Number: "7"}, {Number: "13"}, {Number: "100"}, {Number: ""}}}
	if diff := cmp.Diff([]string{"7", "13", "100"}, ds.Drivers()); diff != "" {
		t.Errorf("drivers mismatch (-want +got):\n%s", diff)
	}
}

func TestDegradation(t *testing.T) {
	got := sampleDataset(t).Degradation()
	want := []DegradationPoint{
		{TireAgeLaps: 1, MeanDelta: 0.4, Samples: 2},
		{TireAgeLaps: 2, MeanDelta: 0.7, Samples: 1},
		{TireAgeLaps: 3, MeanDelta: 0.9, Samples: 1},
	}
	approx := cmp.Comparer(func(a, b float64) bool { return math.Abs(a-b) < 1e-9 })
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("degradation mismatch (-want +got):\n%s", diff)
	}
}

func TestSectorTrends(t *testing.T) {
	trends := sampleDataset(t).SectorTrends("7")
	if len(trends) != 3 {
		t.Fatalf("expected 3 trends, got %d", len(trends))
	}

	s1 := trends[0]
	if s1.Sector != ColS1Delta || s1.Samples != 3 {
		t.Errorf("unexpected S1 trend: %+v", s1)
	}
	if math.Abs(s1.Slope-0.1) > 1e-9 || math.Abs(s1.Intercept) > 1e-9 {
		t.Errorf("S1 trend should be 0.1 per lap through zero, got %+v", s1)
	}

	if trends := sampleDataset(t).SectorTrends("99"); len(trends) != 0 {
		t.Errorf("expected no trends for unknown car, got %v", trends)
	}
}

func TestMatrix_DropsIncompleteRows(t *testing.T) {
	ds := sampleDataset(t)

	X, y, err := ds.Matrix([]string{ColTireAge, ColTrackTemp, ColAggressiveness})
	if err != nil {
		t.Fatal(err)
	}
	// lap 3 of car 7 has no aggressiveness, lap 3 of car 13 has no delta
	if len(X) != 3 || len(y) != 3 {
		t.Fatalf("expected 3 rows, got %d/%d", len(X), len(y))
	}
	if diff := cmp.Diff([]float64{1, 30.4, 1.1}, X[0]); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}

	X, _, err = ds.Matrix([]string{ColTireAge})
	if err != nil {
		t.Fatal(err)
	}
	if len(X) != 4 {
		t.Errorf("expected 4 rows without aggressiveness, got %d", len(X))
	}

	if _, _, err := ds.Matrix([]string{"HUMIDITY"}); err == nil {
		t.Error("expected error for unknown column")
	}
}

func TestMatrix_DropsMissingTireAge(t *testing.T) {
	laps, err := ReadCSV(strings.NewReader(`NUMBER,LAP_NUMBER,Laps_on_this_Tireset,LAP_DELTA,TRACK_TEMP,avg_aggressiveness
7,2,,0.5,30,1.0
7,3,2,0.7,31,1.1
`))
	if err != nil {
		t.Fatal(err)
	}
	ds := &Dataset{Laps: laps}

	X, y, err := ds.Matrix([]string{ColTireAge, ColTrackTemp, ColAggressiveness})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([][]float64{{2, 31, 1.1}}, X); diff != "" {
		t.Errorf("matrix mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{0.7}, y); diff != "" {
		t.Errorf("target mismatch (-want +got):\n%s", diff)
	}

	// a feature set without tire age keeps the row
	X, _, err = ds.Matrix([]string{ColTrackTemp})
	if err != nil {
		t.Fatal(err)
	}
	if len(X) != 2 {
		t.Errorf("expected 2 rows, got %d", len(X))
	}
}

func TestMeanOf(t *testing.T) {
	ds := sampleDataset(t)
	if got := ds.MeanOf(ColAggressiveness); math.Abs(got-1.05) > 1e-9 {
		t.Errorf("expected 1.05, got %v", got)
	}
	if got := (&Dataset{}).MeanOf(ColTrackTemp); !math.IsNaN(got) {
		t.Errorf("expected NaN for empty dataset, got %v", got)
	}
}
