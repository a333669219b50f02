package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Enkerli/MIDIcurator/batch"
	"github.com/Enkerli/MIDIcurator/classify"
	"github.com/Enkerli/MIDIcurator/config"
	"github.com/Enkerli/MIDIcurator/smf"
	"github.com/Enkerli/MIDIcurator/stats"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	analysisJSON   = "vp-intensity-analysis.json"
	analysisReport = "vp-intensity-report.md"
)

type variant struct {
	key       stats.Key
	intensity string
	metrics   *stats.Metrics
}

func loadVariant(cfg *config.Config, classifier classify.Classifier) func(string) (variant, error) {
	return func(path string) (variant, error) {
		m, err := classifier.Classify(stem(path))
		if err != nil {
			return variant{}, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return variant{}, err
		}
		f, err := smf.ReadFile(data)
		if err != nil {
			return variant{}, err
		}
		events, err := f.Events()
		if err != nil {
			return variant{}, err
		}
		notes := smf.AssembleNotes(events)
		bars := smf.BarCount(smf.LastNoteEnd(notes), f.Header.Division, cfg.BeatsPerBar)
		return variant{
			key:       stats.Key{Source: m.Source, Pattern: m.Pattern, BPM: m.BPM},
			intensity: m.Intensity,
			metrics:   stats.Compute(notes, f.Header.Division, bars),
		}, nil
	}
}

func runAnalyze(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	outDir := fs.String("o", ".", "directory for the JSON and markdown reports")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("usage: midicurator " + analyzeUsage)
	}

	paths, err := midiFiles(fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Printf("Loading %d files\n", len(paths))

	groups := make(map[stats.Key]map[string]*stats.Metrics)
	for _, r := range batch.Run(paths, cfg.Workers, loadVariant(cfg, classify.VP{})) {
		if r.Err != nil {
			if errors.Is(r.Err, classify.ErrUnparsableFilename) {
				logrus.Debug(r.Err)
			} else {
				logrus.WithField("file", r.Path).Error(r.Err)
			}
			continue
		}
		v := r.Value
		if groups[v.key] == nil {
			groups[v.key] = make(map[string]*stats.Metrics)
		}
		groups[v.key][v.intensity] = v.metrics
	}

	keys := make([]stats.Key, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	shared := stats.SharedPatterns(keys)
	fmt.Printf("Found %d pattern groups; %d patterns shared across titles\n", len(keys), len(shared))

	analyses := make([]stats.Group, len(keys))
	for i, k := range keys {
		analyses[i] = stats.AnalyzeGroup(k, groups[k])
	}

	out, err := json.MarshalIndent(analyses, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		return err
	}
	jsonPath := filepath.Join(*outDir, analysisJSON)
	if err := writeFileAtomic(jsonPath, out); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", jsonPath)

	mdPath := filepath.Join(*outDir, analysisReport)
	if err := writeFileAtomic(mdPath, []byte(markdownReport(analyses, shared))); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", mdPath)

	fmt.Println()
	fmt.Println(titleStyle.Render("Average metric change per intensity step"))
	fmt.Println(stepSummary(analyses))
	return nil
}

var summaryMetrics = []struct{ name, label string }{
	{"note_count", "Δ notes"},
	{"onset_density", "Δ onset/bar"},
	{"pitch_range", "Δ pitch range"},
	{"vel_mean", "Δ mean vel"},
	{"poly_mean", "Δ polyphony"},
}

// collectSteps groups step deltas by step label in first-seen order.
func collectSteps(analyses []stats.Group) (labels []string, steps map[string][]stats.Deltas, busyness []stats.Deltas) {
	steps = make(map[string][]stats.Deltas)
	for _, a := range analyses {
		for _, s := range a.Steps {
			label := s.From + "→" + s.To
			if _, ok := steps[label]; !ok {
				labels = append(labels, label)
			}
			steps[label] = append(steps[label], s.Deltas)
		}
		if a.Busyness != nil {
			busyness = append(busyness, a.Busyness)
		}
	}
	return labels, steps, busyness
}

func stepSummary(analyses []stats.Group) string {
	headers := []string{"Step"}
	for _, m := range summaryMetrics {
		headers = append(headers, m.label)
	}
	t := newTable(headers...)

	labels, steps, busyness := collectSteps(analyses)
	row := func(label string, all []stats.Deltas) []string {
		r := []string{label}
		for _, m := range summaryMetrics {
			r = append(r, fmt.Sprintf("%+.2f", stats.MeanDelta(all, m.name)))
		}
		return r
	}
	for _, label := range labels {
		t.Row(row(label, steps[label])...)
	}
	if len(busyness) > 0 {
		t.Row(row("10→10a", busyness)...)
	}
	return t.String()
}

func markdownReport(analyses []stats.Group, shared map[string][]string) string {
	var b strings.Builder
	b.WriteString("# VP Virtual Pianist intensity analysis\n\n")

	b.WriteString("## Patterns shared across titles\n\n")
	if len(shared) == 0 {
		b.WriteString("_(none found)_\n")
	}
	patterns := make([]string, 0, len(shared))
	for p := range shared {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)
	for _, p := range patterns {
		fmt.Fprintf(&b, "- **%s**: %s\n", p, strings.Join(shared[p], ", "))
	}

	perIntensity := []struct {
		title string
		cell  func(*stats.Metrics) string
	}{
		{"Note count", func(m *stats.Metrics) string { return strconv.Itoa(m.NoteCount) }},
		{"Onset density (unique 8th-grid slots per bar)", func(m *stats.Metrics) string { return fmt.Sprintf("%.1f", m.OnsetDensity) }},
		{"Pitch range (semitones)", func(m *stats.Metrics) string { return strconv.Itoa(m.PitchRange) }},
		{"Mean velocity", func(m *stats.Metrics) string { return fmt.Sprintf("%.1f", m.VelMean) }},
	}
	headers := append([]string{"Pattern", "Source"}, classify.Intensities...)
	for _, section := range perIntensity {
		fmt.Fprintf(&b, "\n## %s by pattern and intensity\n\n", section.title)
		var rows [][]string
		for _, a := range analyses {
			row := []string{a.Pattern, a.Source}
			for _, in := range classify.Intensities {
				cell := ""
				if m := a.Intensities[in]; m != nil {
					cell = section.cell(m)
				}
				row = append(row, cell)
			}
			rows = append(rows, row)
		}
		b.WriteString(markdownTable(headers, rows))
		b.WriteString("\n")
	}

	b.WriteString("\n## Busyness: intensity 10 → 10a delta\n\n")
	var rows [][]string
	for _, a := range analyses {
		if a.Busyness == nil {
			continue
		}
		rows = append(rows, []string{
			a.Pattern, a.Source,
			fmt.Sprintf("%+.0f", a.Busyness["note_count"].Delta),
			fmt.Sprintf("%+.0f", a.Busyness["onset_count"].Delta),
			fmt.Sprintf("%+.2f", a.Busyness["onset_density"].Delta),
			fmt.Sprintf("%+.0f", a.Busyness["pitch_range"].Delta),
			fmt.Sprintf("%+.1f", a.Busyness["vel_mean"].Delta),
		})
	}
	b.WriteString(markdownTable([]string{"Pattern", "Source", "Δnotes", "Δonsets", "Δdensity", "Δpitch_rng", "Δvel"}, rows))
	b.WriteString("\n")

	labels, steps, busyness := collectSteps(analyses)
	b.WriteString("\n## Average change per intensity step\n\n")
	stepHeaders := []string{"Metric"}
	stepHeaders = append(stepHeaders, labels...)
	if len(busyness) > 0 {
		stepHeaders = append(stepHeaders, "10→10a")
	}
	rows = nil
	for _, m := range summaryMetrics {
		row := []string{m.label}
		for _, label := range labels {
			row = append(row, fmt.Sprintf("%+.2f", stats.MeanDelta(steps[label], m.name)))
		}
		if len(busyness) > 0 {
			row = append(row, fmt.Sprintf("%+.2f", stats.MeanDelta(busyness, m.name)))
		}
		rows = append(rows, row)
	}
	b.WriteString(markdownTable(stepHeaders, rows))
	b.WriteString("\n")
	return b.String()
}
