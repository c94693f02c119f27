// Package dataset loads the processed per-lap history of a circuit and
// derives the views the dashboard and the trainer need.
package dataset

import (
	"math"

	"github.com/haskel/pitwall/internal/predictor"
)

// Column names of the processed lap files.
const (
	ColNumber         = "NUMBER"
	ColLapNumber      = "LAP_NUMBER"
	ColStintID        = "STINT_ID"
	ColTireAge        = predictor.FeatureTireAge
	ColLapTimeSec     = "LAP_TIME_SEC"
	ColLapDelta       = "LAP_DELTA"
	ColS1Delta        = "S1_DELTA"
	ColS2Delta        = "S2_DELTA"
	ColS3Delta        = "S3_DELTA"
	ColTrackTemp      = predictor.FeatureTrackTemp
	ColAggressiveness = predictor.FeatureAggressiveness
)

// Lap is one green-flag lap of one car. Missing numeric values are NaN;
// a missing tyre age is flagged by TireAgeMissing.
type Lap struct {
	Number         string  `json:"number"`
	LapNumber      int     `json:"lap_number"`
	StintID        int     `json:"stint_id"`
	TireAgeLaps    int     `json:"tire_age_laps"`
	LapTimeSec     float64 `json:"lap_time_sec"`
	LapDelta       float64 `json:"lap_delta"`
	S1Delta        float64 `json:"s1_delta"`
	S2Delta        float64 `json:"s2_delta"`
	S3Delta        float64 `json:"s3_delta"`
	TrackTempC     float64 `json:"track_temp_c"`
	Aggressiveness float64 `json:"aggressiveness"`
	TireAgeMissing bool    `json:"-"`
}

// Value returns a numeric column of the lap by name.
func (l Lap) Value(column string) (float64, bool) {
	switch column {
	case ColLapNumber:
		return float64(l.LapNumber), true
	case ColStintID:
		return float64(l.StintID), true
	case ColTireAge:
		if l.TireAgeMissing {
			return math.NaN(), true
		}
		return float64(l.TireAgeLaps), true
	case ColLapTimeSec:
		return l.LapTimeSec, true
	case ColLapDelta:
		return l.LapDelta, true
	case ColS1Delta:
		return l.S1Delta, true
	case ColS2Delta:
		return l.S2Delta, true
	case ColS3Delta:
		return l.S3Delta, true
	case ColTrackTemp:
		return l.TrackTempC, true
	case ColAggressiveness:
		return l.Aggressiveness, true
	}
	return math.NaN(), false
}

// parquetLap mirrors the processed parquet schema. Every column may be
// absent or null in older files.
type parquetLap struct {
	Number         *string  `parquet:"NUMBER,optional"`
	LapNumber      *int64   `parquet:"LAP_NUMBER,optional"`
	StintID        *int64   `parquet:"STINT_ID,optional"`
	TireAge        *int64   `parquet:"Laps_on_this_Tireset,optional"`
	LapTimeSec     *float64 `parquet:"LAP_TIME_SEC,optional"`
	LapDelta       *float64 `parquet:"LAP_DELTA,optional"`
	S1Delta        *float64 `parquet:"S1_DELTA,optional"`
	S2Delta        *float64 `parquet:"S2_DELTA,optional"`
	S3Delta        *float64 `parquet:"S3_DELTA,optional"`
	TrackTemp      *float64 `parquet:"TRACK_TEMP,optional"`
	Aggressiveness *float64 `parquet:"avg_aggressiveness,optional"`
}

func (p parquetLap) lap() Lap {
	l := Lap{
		LapTimeSec:     orNaN(p.LapTimeSec),
		LapDelta:       orNaN(p.LapDelta),
		S1Delta:        orNaN(p.S1Delta),
		S2Delta:        orNaN(p.S2Delta),
		S3Delta:        orNaN(p.S3Delta),
		TrackTempC:     orNaN(p.TrackTemp),
		Aggressiveness: orNaN(p.Aggressiveness),
	}
	if p.Number != nil {
		l.Number = *p.Number
	}
	if p.LapNumber != nil {
		l.LapNumber = int(*p.LapNumber)
	}
	if p.StintID != nil {
		l.StintID = int(*p.StintID)
	}
	if age, ok := lapCount(p.TireAge); ok {
		l.TireAgeLaps = age
	} else {
		l.TireAgeMissing = true
	}
	return l
}

// maxLapCount bounds integer lap columns. Larger values are treated as
// missing.
const maxLapCount = 1 << 20

func lapCount(v *int64) (int, bool) {
	if v == nil || *v < 0 || *v > maxLapCount {
		return 0, false
	}
	return int(*v), true
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
