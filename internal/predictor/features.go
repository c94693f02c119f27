package predictor

// Feature names as they appear in the processed lap dataset and in the
// feature list of a trained model.
const (
	FeatureTireAge        = "Laps_on_this_Tireset"
	FeatureTrackTemp      = "TRACK_TEMP"
	FeatureAggressiveness = "avg_aggressiveness"
)

// Conditions are the car and track state a lap is predicted for.
type Conditions struct {
	TireAgeLaps          int     `json:"tire_age_laps"`
	TrackTempC           float64 `json:"track_temp_c"`
	DriverAggressiveness float64 `json:"driver_aggressiveness"`
}

type extractor func(Conditions) float64

// extractors maps every feature a model may declare to the value it takes
// from Conditions. Adding a feature means adding one entry here.
var extractors = map[string]extractor{
	FeatureTireAge:        func(c Conditions) float64 { return float64(c.TireAgeLaps) },
	FeatureTrackTemp:      func(c Conditions) float64 { return c.TrackTempC },
	FeatureAggressiveness: func(c Conditions) float64 { return c.DriverAggressiveness },
}

// CanonicalFeatures lists every supported feature in display order.
func CanonicalFeatures() []string {
	return []string{FeatureTireAge, FeatureTrackTemp, FeatureAggressiveness}
}

// Known reports whether a feature name has an extractor.
func Known(name string) bool {
	_, ok := extractors[name]
	return ok
}

// Input is a single prediction row: the declared feature names of a model
// and their values, in the model's order.
type Input struct {
	Names  []string
	Values []float64
}

// BuildInput builds the row for the given feature list. Features without an
// extractor are left out rather than filled with zero.
func BuildInput(features []string, c Conditions) Input {
	in := Input{
		Names:  make([]string, 0, len(features)),
		Values: make([]float64, 0, len(features)),
	}
	for _, name := range features {
		ex, ok := extractors[name]
		if !ok {
			continue
		}
		in.Names = append(in.Names, name)
		in.Values = append(in.Values, ex(c))
	}
	return in
}

// Get returns the value of a named feature in the row.
func (in Input) Get(name string) (float64, bool) {
	for i, n := range in.Names {
		if n == name {
			return in.Values[i], true
		}
	}
	return 0, false
}

// Has reports whether the row carries the named feature.
func (in Input) Has(name string) bool {
	_, ok := in.Get(name)
	return ok
}
