package cli

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/haskel/pitwall/internal/calibration"
	"github.com/haskel/pitwall/internal/engine"
	"github.com/haskel/pitwall/internal/server"
	"github.com/haskel/pitwall/internal/strategy"
)

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func printIgnored(w io.Writer, ignored []string) {
	if len(ignored) > 0 {
		fmt.Fprintf(w, "Warning: the model ignores %s\n", strings.Join(ignored, ", "))
	}
}

func printCosts(w io.Writer, c calibration.Costs) {
	note := ""
	if !c.Calibrated {
		note = " (default)"
	}
	fmt.Fprintf(w, "Pit cost: %.1fs green, %.1fs caution%s\n", c.Green, c.Yellow, note)
}

func printStatus(w io.Writer, s *server.StatusResponse) {
	fmt.Fprintln(w, "=== Server Status ===")
	fmt.Fprintf(w, "\nVersion:  %s\n", s.Version)
	fmt.Fprintf(w, "Data dir: %s\n", s.DataDir)
	fmt.Fprintf(w, "Cached:   %s\n", joinOrNone(s.CachedCircuits))

	if r := s.Resources; r != nil {
		fmt.Fprintf(w, "\nProcess:\n")
		fmt.Fprintf(w, "  PID:        %d\n", r.Process.PID)
		fmt.Fprintf(w, "  RSS:        %.1f MB\n", float64(r.Process.RSSBytes)/1024/1024)
		fmt.Fprintf(w, "  CPU:        %.1f%%\n", r.Process.CPUPercent)
		fmt.Fprintf(w, "  Goroutines: %d\n", r.Process.Goroutines)
		fmt.Fprintf(w, "  Uptime:     %s\n", r.Uptime)

		fmt.Fprintf(w, "\nHost memory:\n")
		fmt.Fprintf(w, "  Usage: %.1f%%\n", r.Memory.UsagePercent)
		fmt.Fprintf(w, "  Free:  %.1f GB\n", float64(r.Memory.AvailableBytes)/1024/1024/1024)
		fmt.Fprintf(w, "  Used:  %.1f / %.1f GB\n",
			float64(r.Memory.UsedBytes)/1024/1024/1024,
			float64(r.Memory.TotalBytes)/1024/1024/1024)
	}
}

func printCircuits(w io.Writer, circuits []engine.CircuitSummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CIRCUIT\tGREEN\tCAUTION\tCALIBRATED\tMODEL\tLAPS")
	for _, c := range circuits {
		fmt.Fprintf(tw, "%s\t%.1f\t%.1f\t%s\t%s\t%s\n",
			c.Circuit, c.Costs.Green, c.Costs.Yellow,
			yesNo(c.Costs.Calibrated), yesNo(c.Model.Exists), yesNo(c.HasDataset))
	}
	tw.Flush()
}

func printCircuit(w io.Writer, d *engine.CircuitDetail) {
	fmt.Fprintf(w, "=== %s ===\n", d.Circuit)
	printCosts(w, d.Costs)

	if !d.Available {
		fmt.Fprintf(w, "Model: unavailable (%s)\n", d.Error)
	} else {
		fmt.Fprintf(w, "Model: %s\n", d.ModelType)
		fmt.Fprintf(w, "Features: %s\n", joinOrNone(d.Features))
		if d.Metrics != nil {
			fmt.Fprintf(w, "Fit: R² %.3f, MAE %.3fs over %d laps\n", d.Metrics.R2, d.Metrics.MAE, d.Metrics.Samples)
		}
		if d.TrainedAt != nil {
			fmt.Fprintf(w, "Trained: %s\n", d.TrainedAt.Format("2006-01-02 15:04"))
		}
		printIgnored(w, d.IgnoredInputs)
	}

	if r := d.Ranges; r != nil {
		fmt.Fprintf(w, "\nInput ranges:\n")
		fmt.Fprintf(w, "  Tyre age:   %.0f to %.0f laps\n", r.TireAge.Min, r.TireAge.Max)
		fmt.Fprintf(w, "  Track temp: %.0f to %.0f °C\n", r.TrackTemp.Min, r.TrackTemp.Max)
		fmt.Fprintf(w, "  Aggression: %.2f to %.2f g\n", r.Aggressiveness.Min, r.Aggressiveness.Max)
		if r.TrackTemp.Fallback {
			fmt.Fprintln(w, "Warning: weather data unavailable")
		}
		if r.Aggressiveness.Fallback {
			fmt.Fprintln(w, "Warning: telemetry data unavailable")
		}
	}
}

func printPrediction(w io.Writer, p *engine.PredictResponse) {
	fmt.Fprintf(w, "%s, tyres %d laps old\n", p.Circuit, p.TireAgeLaps)
	fmt.Fprintf(w, "  Current lap delta:   %+.3fs\n", p.Delta)
	fmt.Fprintf(w, "  Next lap (age %2d):   %+.3fs\n", p.NextLapTireAge, p.NextLapDelta)
	printIgnored(w, p.IgnoredInputs)
}

func printCaution(w io.Writer, c *engine.CautionResponse) {
	v := c.Verdict
	printCosts(w, c.Costs)
	fmt.Fprintf(w, "Pit now:               %.2fs\n", v.PitNowTotal)
	fmt.Fprintf(w, "Stay out, pit lap %-3d  %.2fs\n", c.TargetPitLap, v.StayOutTotal)
	if v.PitNow {
		fmt.Fprintf(w, "VERDICT: PIT NOW. You save %.2fs\n", v.Saving)
	} else {
		fmt.Fprintf(w, "VERDICT: STAY OUT. Pitting costs %.2fs\n", math.Abs(v.Saving))
	}
	printIgnored(w, c.IgnoredInputs)

	if c.PitNowTrace != nil {
		fmt.Fprintln(w, "\nPit now:")
		printTrace(w, c.PitNowTrace)
	}
	if c.StayOutTrace != nil {
		fmt.Fprintln(w, "\nStay out:")
		printTrace(w, c.StayOutTrace)
	}
}

func printBattle(w io.Writer, b *engine.BattleResponse) {
	v := b.Verdict
	printCosts(w, b.Costs)
	fmt.Fprintf(w, "Over %d laps: us %.2fs, rival %.2fs\n", b.CycleLaps, v.OwnTotal, v.RivalTotal)
	fmt.Fprintf(w, "Net gain: %+.2fs against a %.2fs gap\n", v.NetGain, v.Gap)
	if v.Success {
		fmt.Fprintf(w, "SUCCESS. The %s gains the position by %.2fs\n", v.Mode, v.Margin)
	} else {
		fmt.Fprintf(w, "FAIL. The %s misses by %.2fs\n", v.Mode, -v.Margin)
	}
	printIgnored(w, b.IgnoredInputs)

	if b.OwnTrace != nil {
		fmt.Fprintln(w, "\nUs:")
		printTrace(w, b.OwnTrace)
	}
	if b.RivalTrace != nil {
		fmt.Fprintln(w, "\nRival:")
		printTrace(w, b.RivalTrace)
	}
}

func printTrace(w io.Writer, t *strategy.Trace) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "LAP\tTYRE AGE\tPIT\tDELTA\tTOTAL\t")
	for _, s := range t.Laps {
		pit := ""
		if s.Pitted {
			pit = fmt.Sprintf("%.1f", s.PitCost)
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%.3f\t%.3f\t\n", s.Lap, s.TireAgeLaps, pit, s.Delta, s.Cumulative)
	}
	tw.Flush()
}

func printAnalysis(w io.Writer, a *engine.Analysis) {
	fmt.Fprintf(w, "=== %s: %d laps from %s ===\n", a.Circuit, a.Laps, joinOrNone(a.Sources))
	fmt.Fprintf(w, "Cars: %s\n", joinOrNone(a.Drivers))

	if len(a.Degradation) > 0 {
		fmt.Fprintln(w, "\nMean lap delta by tyre age:")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "AGE\tDELTA\tLAPS\t")
		for _, p := range a.Degradation {
			fmt.Fprintf(tw, "%d\t%.3f\t%d\t\n", p.TireAgeLaps, p.MeanDelta, p.Samples)
		}
		tw.Flush()
	}

	if len(a.SectorTrends) > 0 {
		fmt.Fprintf(w, "\nSector wear for car %s (seconds lost per lap of tyre age):\n", a.Car)
		for _, t := range a.SectorTrends {
			fmt.Fprintf(w, "  %s: %+.3f s/lap (R² %.2f, %d laps)\n", t.Sector, t.Slope, t.R2, t.Samples)
		}
	}
}
