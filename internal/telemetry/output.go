package telemetry

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Write stores the scores as parquet or CSV, chosen by the extension of
// path.
func Write(path string, rows []LapAggression) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return parquet.WriteFile(path, rows)
	case ".csv":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := WriteCSV(f, rows); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	default:
		return fmt.Errorf("unsupported output type: %s", path)
	}
}

// WriteCSV writes the scores with the processed-data column names.
func WriteCSV(w io.Writer, rows []LapAggression) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"NUMBER", "LAP_NUMBER", "avg_aggressiveness", "samples"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Number,
			strconv.FormatInt(r.LapNumber, 10),
			strconv.FormatFloat(r.AvgAggressiveness, 'f', -1, 64),
			strconv.FormatInt(r.Samples, 10),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
