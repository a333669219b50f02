package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Enkerli/MIDIcurator/batch"
	"github.com/Enkerli/MIDIcurator/classify"
	"github.com/Enkerli/MIDIcurator/config"
	"github.com/Enkerli/MIDIcurator/mcurator"
	"github.com/Enkerli/MIDIcurator/smf"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type tagger struct {
	cfg        *config.Config
	classifier classify.Classifier
	dryRun     bool
}

type tagReport struct {
	match  classify.Match
	bars   int
	result mcurator.Result
}

func (r tagReport) String() string {
	parts := []string{
		"src=" + r.match.Source,
		fmt.Sprintf("pattern=%q", r.match.Pattern),
		"intensity=" + r.match.Intensity,
		fmt.Sprintf("bars=%d", r.bars),
	}
	for _, w := range r.result.Warnings {
		parts = append(parts, warnStyle.Render("WARNING:"+w))
	}
	if r.result.LeadsheetAdded {
		parts = append(parts, "leadsheet=added")
	} else {
		parts = append(parts, "leadsheet=existing")
	}
	return strings.Join(parts, "  ")
}

// tagFile classifies, patches and rewrites one MIDI file. Only the first
// track is re-encoded; the header and any other chunks are kept as read.
func (t *tagger) tagFile(path string) (tagReport, error) {
	var rep tagReport
	m, err := t.classifier.Classify(stem(path))
	if err != nil {
		return rep, err
	}
	rep.match = m

	data, err := os.ReadFile(path)
	if err != nil {
		return rep, err
	}
	f, err := smf.ReadFile(data)
	if err != nil {
		return rep, err
	}
	all, err := f.Events()
	if err != nil {
		return rep, err
	}
	rep.bars = smf.BarCount(smf.LastNoteOff(all), f.Header.Division, t.cfg.BeatsPerBar)

	events, err := f.Track(0)
	if err != nil {
		return rep, err
	}
	patched, res, err := mcurator.Patch(events, mcurator.Options{
		Source:        m.Source,
		Pattern:       m.Pattern,
		Intensity:     m.Intensity,
		LeadsheetText: t.cfg.LeadsheetText,
		Bars:          rep.bars,
	})
	if err != nil {
		return rep, err
	}
	rep.result = res
	if err := f.SetTrack(0, patched); err != nil {
		return rep, err
	}
	if t.dryRun {
		return rep, nil
	}
	return rep, errors.Wrap(writeFileAtomic(path, f.Bytes()), "write")
}

func runTag(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tag", flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "parse and report without writing any files")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("usage: midicurator " + tagUsage)
	}
	dir := fs.Arg(0)

	paths, err := midiFiles(dir)
	if err != nil {
		return err
	}
	fmt.Printf("Found %d .mid files in %s\n", len(paths), dir)
	if *dryRun {
		fmt.Println(dimStyle.Render("(dry run, no files will be modified)"))
	}
	fmt.Println()

	t := &tagger{cfg: cfg, classifier: classify.VP{}, dryRun: *dryRun}
	results := batch.Run(paths, cfg.Workers, t.tagFile)

	tagged := 0
	for _, r := range results {
		name := filepath.Base(r.Path)
		if r.Err != nil {
			fmt.Printf("  %s %s: %v\n", skipStyle.Render("[SKIP]"), name, r.Err)
			if !errors.Is(r.Err, classify.ErrUnparsableFilename) {
				logrus.WithField("file", r.Path).Warn(r.Err)
			}
			continue
		}
		tagged++
		fmt.Printf("  %s %s\n         %s\n", okStyle.Render("[OK  ]"), name, r.Value)
	}

	verb := "Tagged"
	if *dryRun {
		verb = "Would tag"
	}
	fmt.Printf("\n%s %d / %d files, %d skipped\n", verb, tagged, len(results), len(results)-tagged)
	return nil
}
