// Package stats computes per-file musical metrics and compares them across
// the intensity variants of a pattern.
package stats

import (
	"math"
	"slices"

	"github.com/Enkerli/MIDIcurator/smf"
	gosmf "gitlab.com/gomidi/midi/v2/smf"
)

// Metrics summarises the notes of one file. Rounded fields use the same
// precision as the JSON report.
type Metrics struct {
	NoteCount    int     `json:"note_count"`
	NotesPerBar  float64 `json:"notes_per_bar"`
	Bars         int     `json:"bars"`
	PitchMin     int     `json:"pitch_min"`
	PitchMax     int     `json:"pitch_max"`
	PitchRange   int     `json:"pitch_range"`
	PitchMean    float64 `json:"pitch_mean"`
	VelMin       int     `json:"vel_min"`
	VelMax       int     `json:"vel_max"`
	VelMean      float64 `json:"vel_mean"`
	VelStd       float64 `json:"vel_std"`
	DurationMean float64 `json:"duration_mean"`
	OnsetCount   int     `json:"onset_count"`
	OnsetDensity float64 `json:"onset_density"`
	IOICV        float64 `json:"ioi_cv"`
	PolyMean     float64 `json:"poly_mean"`
	PolyMax      int     `json:"poly_max"`
}

// Compute returns nil when there are no notes. bars below 1 is treated as 1.
func Compute(notes []smf.Note, division gosmf.MetricTicks, bars int) *Metrics {
	if len(notes) == 0 {
		return nil
	}
	bars = max(bars, 1)

	pitches := make([]float64, len(notes))
	vels := make([]float64, len(notes))
	durs := make([]float64, len(notes))
	perOnset := make(map[uint64]int)
	m := &Metrics{
		NoteCount: len(notes),
		Bars:      bars,
		PitchMin:  math.MaxInt,
		VelMin:    math.MaxInt,
	}
	for i, n := range notes {
		pitches[i] = float64(n.Pitch)
		vels[i] = float64(n.Velocity)
		durs[i] = float64(n.Duration)
		m.PitchMin = min(m.PitchMin, int(n.Pitch))
		m.PitchMax = max(m.PitchMax, int(n.Pitch))
		m.VelMin = min(m.VelMin, int(n.Velocity))
		m.VelMax = max(m.VelMax, int(n.Velocity))
		perOnset[n.Onset]++
	}
	m.PitchRange = m.PitchMax - m.PitchMin
	m.NotesPerBar = round(float64(len(notes))/float64(bars), 2)
	m.PitchMean = round(mean(pitches), 1)
	m.VelMean = round(mean(vels), 1)
	m.VelStd = round(stdev(vels), 1)
	m.DurationMean = round(mean(durs), 0)

	onsets := make([]uint64, 0, len(perOnset))
	poly := make([]float64, 0, len(perOnset))
	for tick, count := range perOnset {
		onsets = append(onsets, tick)
		m.PolyMax = max(m.PolyMax, count)
	}
	slices.Sort(onsets)
	for _, tick := range onsets {
		poly = append(poly, float64(perOnset[tick]))
	}
	m.PolyMean = round(mean(poly), 2)

	m.OnsetCount = gridSlots(onsets, float64(division.Ticks8th()))
	m.OnsetDensity = round(float64(m.OnsetCount)/float64(bars), 2)

	if len(onsets) > 2 {
		iois := make([]float64, len(onsets)-1)
		for i := range iois {
			iois[i] = float64(onsets[i+1] - onsets[i])
		}
		if mu := mean(iois); mu > 0 {
			m.IOICV = round(stdev(iois)/mu, 3)
		}
	}
	return m
}

// gridSlots counts the distinct grid positions the onsets quantize to.
func gridSlots(onsets []uint64, grid float64) int {
	if grid <= 0 {
		return len(onsets)
	}
	slots := make(map[int64]struct{}, len(onsets))
	for _, o := range onsets {
		slots[int64(math.RoundToEven(float64(o)/grid))] = struct{}{}
	}
	return len(slots)
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stdev is the sample standard deviation; it is 0 for fewer than two values.
func stdev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mu := mean(xs)
	var ss float64
	for _, x := range xs {
		ss += (x - mu) * (x - mu)
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

func round(x float64, places int) float64 {
	p := math.Pow10(places)
	return math.RoundToEven(x*p) / p
}
