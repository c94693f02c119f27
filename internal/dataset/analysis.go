package dataset

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// Fallback slider bounds used when the data has no spread.
const (
	FallbackTempMin = 0
	FallbackTempMax = 50
	FallbackAggMin  = 0.5
	FallbackAggMax  = 1.5

	TireAgeMin     = 1
	TireAgeMax     = 25
	TireAgeDefault = 10
)

// Range is an input slider bound with its initial value.
type Range struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Default  float64 `json:"default"`
	Fallback bool    `json:"fallback,omitempty"`
}

// Ranges bounds the dashboard inputs for a circuit.
type Ranges struct {
	TireAge        Range `json:"tire_age"`
	TrackTemp      Range `json:"track_temp"`
	Aggressiveness Range `json:"aggressiveness"`
}

// Ranges derives input bounds from the data. Temperature bounds are whole
// degrees; a column without spread falls back to fixed bounds.
func (d *Dataset) Ranges() Ranges {
	r := Ranges{
		TireAge: Range{Min: TireAgeMin, Max: TireAgeMax, Default: TireAgeDefault},
	}

	low, high, ok := d.bounds(ColTrackTemp)
	minT, maxT := math.Trunc(low), math.Trunc(high)
	if !ok || minT >= maxT {
		r.TrackTemp = Range{Min: FallbackTempMin, Max: FallbackTempMax, Default: (FallbackTempMin + FallbackTempMax) / 2, Fallback: true}
	} else {
		r.TrackTemp = Range{Min: minT, Max: maxT, Default: math.Floor((minT + maxT) / 2)}
	}

	low, high, ok = d.bounds(ColAggressiveness)
	if !ok || low >= high {
		r.Aggressiveness = Range{Min: FallbackAggMin, Max: FallbackAggMax, Default: (FallbackAggMin + FallbackAggMax) / 2, Fallback: true}
	} else {
		r.Aggressiveness = Range{Min: low, Max: high, Default: (low + high) / 2}
	}

	return r
}

// bounds returns the min and max of a column, skipping NaN.
func (d *Dataset) bounds(column string) (low, high float64, ok bool) {
	low, high = math.Inf(1), math.Inf(-1)
	for _, l := range d.Laps {
		v, _ := l.Value(column)
		if math.IsNaN(v) {
			continue
		}
		low = min(low, v)
		high = max(high, v)
		ok = true
	}
	return low, high, ok
}

// Drivers returns the distinct car numbers, numerically sorted where
// possible.
func (d *Dataset) Drivers() []string {
	drivers := lo.Uniq(lo.FilterMap(d.Laps, func(l Lap, _ int) (string, bool) {
		return l.Number, l.Number != ""
	}))
	sort.Slice(drivers, func(i, j int) bool {
		a, errA := strconv.Atoi(drivers[i])
		b, errB := strconv.Atoi(drivers[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return drivers[i] < drivers[j]
	})
	return drivers
}

// DegradationPoint is the mean lap delta at one tyre age.
type DegradationPoint struct {
	TireAgeLaps int     `json:"tire_age_laps"`
	MeanDelta   float64 `json:"mean_delta"`
	Samples     int     `json:"samples"`
}

// Degradation averages LAP_DELTA by tyre age over all cars.
func (d *Dataset) Degradation() []DegradationPoint {
	valid := lo.Filter(d.Laps, func(l Lap, _ int) bool {
		return l.TireAgeLaps > 0 && !math.IsNaN(l.LapDelta)
	})
	groups := lo.GroupBy(valid, func(l Lap) int { return l.TireAgeLaps })

	points := make([]DegradationPoint, 0, len(groups))
	for age, laps := range groups {
		deltas := lo.Map(laps, func(l Lap, _ int) float64 { return l.LapDelta })
		points = append(points, DegradationPoint{
			TireAgeLaps: age,
			MeanDelta:   stat.Mean(deltas, nil),
			Samples:     len(deltas),
		})
	}
	slices.SortFunc(points, func(a, b DegradationPoint) int { return a.TireAgeLaps - b.TireAgeLaps })
	return points
}

// Trend is an OLS trendline of a sector delta against tyre age.
type Trend struct {
	Sector    string  `json:"sector"`
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
	R2        float64 `json:"r2"`
	Samples   int     `json:"samples"`
}

// SectorTrends fits one trendline per sector for a car. Sectors with fewer
// than two usable laps are left out.
func (d *Dataset) SectorTrends(car string) []Trend {
	laps := lo.Filter(d.Laps, func(l Lap, _ int) bool { return l.Number == car })

	var trends []Trend
	for _, sector := range []string{ColS1Delta, ColS2Delta, ColS3Delta} {
		var xs, ys []float64
		for _, l := range laps {
			y, _ := l.Value(sector)
			if math.IsNaN(y) || l.TireAgeLaps <= 0 {
				continue
			}
			xs = append(xs, float64(l.TireAgeLaps))
			ys = append(ys, y)
		}
		if len(xs) < 2 {
			continue
		}
		alpha, beta := stat.LinearRegression(xs, ys, nil, false)
		trends = append(trends, Trend{
			Sector:    sector,
			Intercept: alpha,
			Slope:     beta,
			R2:        stat.RSquared(xs, ys, nil, alpha, beta),
			Samples:   len(xs),
		})
	}
	return trends
}

// Matrix builds a training matrix for the given features with LAP_DELTA as
// target. Rows with a missing feature or target are dropped.
func (d *Dataset) Matrix(features []string) ([][]float64, []float64, error) {
	for _, f := range features {
		if _, ok := (Lap{}).Value(f); !ok {
			return nil, nil, fmt.Errorf("unknown column %q", f)
		}
	}

	var X [][]float64
	var y []float64
	for _, l := range d.Laps {
		if math.IsNaN(l.LapDelta) {
			continue
		}
		row := make([]float64, len(features))
		complete := true
		for i, f := range features {
			v, _ := l.Value(f)
			if math.IsNaN(v) {
				complete = false
				break
			}
			row[i] = v
		}
		if !complete {
			continue
		}
		X = append(X, row)
		y = append(y, l.LapDelta)
	}
	return X, y, nil
}

// MeanOf averages a column, skipping NaN. It returns NaN for an empty or
// all-missing column.
func (d *Dataset) MeanOf(column string) float64 {
	vals := lo.FilterMap(d.Laps, func(l Lap, _ int) (float64, bool) {
		v, _ := l.Value(column)
		return v, !math.IsNaN(v)
	})
	if len(vals) == 0 {
		return math.NaN()
	}
	return stat.Mean(vals, nil)
}
