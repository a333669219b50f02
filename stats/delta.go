package stats

import (
	"slices"
	"strconv"

	"github.com/Enkerli/MIDIcurator/classify"
)

// Change is the difference of one metric between two variants. Pct is nil
// when the lower value is zero.
type Change struct {
	Delta float64  `json:"delta"`
	Pct   *float64 `json:"pct"`
}

// Deltas maps metric names to their change.
type Deltas map[string]Change

// DeltaMetrics lists the metrics compared by Delta, in report order.
var DeltaMetrics = []string{
	"note_count", "notes_per_bar", "pitch_range", "pitch_mean",
	"vel_mean", "onset_count", "onset_density", "ioi_cv", "poly_mean",
}

func (m *Metrics) field(name string) float64 {
	if m == nil {
		return 0
	}
	switch name {
	case "note_count":
		return float64(m.NoteCount)
	case "notes_per_bar":
		return m.NotesPerBar
	case "pitch_range":
		return float64(m.PitchRange)
	case "pitch_mean":
		return m.PitchMean
	case "vel_mean":
		return m.VelMean
	case "onset_count":
		return float64(m.OnsetCount)
	case "onset_density":
		return m.OnsetDensity
	case "ioi_cv":
		return m.IOICV
	case "poly_mean":
		return m.PolyMean
	}
	return 0
}

// Delta compares lo to hi. A nil side counts as all zero.
func Delta(lo, hi *Metrics) Deltas {
	d := make(Deltas, len(DeltaMetrics))
	for _, name := range DeltaMetrics {
		a, b := lo.field(name), hi.field(name)
		c := Change{Delta: round(b-a, 2)}
		if a != 0 {
			pct := round((b-a)/a*100, 1)
			c.Pct = &pct
		}
		d[name] = c
	}
	return d
}

// Step is the change between two consecutive intensities.
type Step struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Deltas Deltas `json:"deltas"`
}

// Group is the analysis of every intensity variant of one pattern.
type Group struct {
	Source      string              `json:"source"`
	Pattern     string              `json:"pattern"`
	BPM         int                 `json:"bpm"`
	Intensities map[string]*Metrics `json:"intensities"`
	Steps       []Step              `json:"step_deltas"`
	// Busyness compares 10 to 10a.
	Busyness Deltas `json:"busyness_delta"`
	// Overall compares 1 to 10.
	Overall Deltas `json:"overall_delta"`
}

// Key identifies a pattern group.
type Key struct {
	Source  string
	Pattern string
	BPM     int
}

func (k Key) String() string {
	return k.Source + "|" + k.Pattern + "|" + strconv.Itoa(k.BPM) + "bpm"
}

// AnalyzeGroup computes step, busyness and overall deltas for the variants
// of one pattern. Intensities outside the known order are kept in the
// metrics map but take no part in deltas.
func AnalyzeGroup(key Key, variants map[string]*Metrics) Group {
	g := Group{
		Source:      key.Source,
		Pattern:     key.Pattern,
		BPM:         key.BPM,
		Intensities: variants,
	}
	var ordered []string
	for _, in := range classify.Intensities {
		if _, ok := variants[in]; ok {
			ordered = append(ordered, in)
		}
	}
	for i := 0; i+1 < len(ordered); i++ {
		lo, hi := ordered[i], ordered[i+1]
		g.Steps = append(g.Steps, Step{From: lo, To: hi, Deltas: Delta(variants[lo], variants[hi])})
	}
	if has(variants, "10") && has(variants, "10a") {
		g.Busyness = Delta(variants["10"], variants["10a"])
	}
	if has(variants, "1") && has(variants, "10") {
		g.Overall = Delta(variants["1"], variants["10"])
	}
	return g
}

func has(m map[string]*Metrics, k string) bool {
	_, ok := m[k]
	return ok
}

// SharedPatterns returns, for each pattern name found under more than one
// source, the sorted list of sources.
func SharedPatterns(keys []Key) map[string][]string {
	sources := make(map[string][]string)
	for _, k := range keys {
		if !slices.Contains(sources[k.Pattern], k.Source) {
			sources[k.Pattern] = append(sources[k.Pattern], k.Source)
		}
	}
	for p, s := range sources {
		if len(s) < 2 {
			delete(sources, p)
			continue
		}
		slices.Sort(s)
	}
	return sources
}

// MeanDelta averages one metric's delta over a set of comparisons.
func MeanDelta(all []Deltas, name string) float64 {
	var xs []float64
	for _, d := range all {
		if c, ok := d[name]; ok {
			xs = append(xs, c.Delta)
		}
	}
	return mean(xs)
}
