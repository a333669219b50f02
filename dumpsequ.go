package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Enkerli/MIDIcurator/batch"
	"github.com/Enkerli/MIDIcurator/config"
	"github.com/Enkerli/MIDIcurator/container"
	"github.com/Enkerli/MIDIcurator/sequ"
	"github.com/Enkerli/MIDIcurator/smf"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	gosmf "gitlab.com/gomidi/midi/v2/smf"
)

// defaultDivision is assumed when the embedded event data carries no header.
const defaultDivision = gosmf.MetricTicks(480)

func runDumpSequ(cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: midicurator " + dumpSequUsage)
	}
	results := batch.Run(args, cfg.Workers, func(path string) (string, error) {
		return dumpSequ(cfg, path)
	})
	for _, r := range results {
		fmt.Println(titleStyle.Render(strings.Repeat("=", 80)))
		fmt.Println(titleStyle.Render("FILE: " + r.Path))
		fmt.Println(titleStyle.Render(strings.Repeat("=", 80)))
		if r.Err != nil {
			logrus.WithField("file", r.Path).Error(r.Err)
			continue
		}
		fmt.Print(r.Value)
	}
	if failed := batch.Failed(results); len(failed) > 0 {
		return errors.Errorf("%d of %d files failed", len(failed), len(args))
	}
	return nil
}

func dumpSequ(cfg *config.Config, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	c, err := container.Read(data)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s container, %d chunks\n", c.Kind, len(c.Order))
	chunks := newTable("id", "offset", "size")
	for _, ch := range c.Order {
		chunks.Row(ch.ID.String(), strconv.Itoa(ch.Offset), strconv.Itoa(len(ch.Payload)))
	}
	b.WriteString(chunks.String() + "\n")

	if c.Kind == container.KindCAF {
		if payload, err := c.Chunk(container.ChunkCAFInfo); err == nil {
			entries, err := container.DecodeInfo(payload)
			if err != nil {
				fmt.Fprintf(&b, "info chunk: %v\n", err)
			}
			for _, e := range entries {
				fmt.Fprintf(&b, "  %s: %s\n", e.Key, e.Value)
			}
		}
	}

	payload, err := c.Chunk(container.ChunkSequence)
	if err != nil {
		b.WriteString(warnStyle.Render("  !! No Sequ chunk found") + "\n")
		return b.String(), nil
	}

	division := defaultDivision
	var groups []sequ.ChordGroup
	if mid, err := c.MIDI(); err == nil {
		events, div, err := smf.ReadEvents(mid)
		if err != nil {
			fmt.Fprintf(&b, "MIDI parse error: %v\n", err)
		} else {
			if div > 0 {
				division = div
			}
			tolerance := uint64(division.Ticks4th()) / uint64(cfg.ChordToleranceDivisor)
			groups = sequ.GroupChords(smf.AssembleNotes(events), tolerance)
			fmt.Fprintf(&b, "MIDI: %d ticks/beat, %d note groups\n", division.Ticks4th(), len(groups))
		}
	} else {
		b.WriteString(dimStyle.Render("  (no MIDI chunk)") + "\n")
	}

	if basc, err := c.Chunk(container.ChunkLoop); err == nil {
		loop := container.DecodeLoop(basc)
		fmt.Fprintf(&b, "basc: length=%d, beats=%.3f, key_sig_byte=%d\n", loop.Length, loop.Beats, loop.KeySignature)
		for _, cand := range loop.Candidates {
			if cand.Tempo {
				fmt.Fprintf(&b, "  basc[%d] as float32 BE = %.3f (tempo or beat count?)\n", cand.Offset, cand.Float)
			}
			if cand.Bars {
				fmt.Fprintf(&b, "  basc[%d] as uint32 BE = %d (bar count?)\n", cand.Offset, cand.Uint)
			}
		}
	}

	records := sequ.Scan(payload, cfg.RecordType)
	fmt.Fprintf(&b, "\nSequ chunk: %d bytes\n  %d type-%d records found\n\n", len(payload), len(records), cfg.RecordType)

	t := newTable("#", "offset", "composite", "hi16", "lo16", "b8", "b9", "mask", "MIDI beat", "MIDI tick", "notes")
	for _, m := range sequ.Correlate(records, groups, division) {
		f := m.Record.Fields()
		tick := "-1"
		if m.Group != nil {
			tick = strconv.FormatUint(m.Group.Tick, 10)
		}
		t.Row(
			strconv.Itoa(m.Index),
			strconv.Itoa(m.Record.Offset),
			fmt.Sprintf("0x%08x", uint32(f.Composite)),
			fmt.Sprintf("0x%04x", f.Composite.High()),
			fmt.Sprintf("0x%04x", f.Composite.Low()),
			strconv.Itoa(int(f.B8)),
			strconv.Itoa(int(f.B9)),
			fmt.Sprintf("0x%04x", f.Mask),
			fmt.Sprintf("%.4f", m.Beat),
			tick,
			m.Notes(),
		)
	}
	b.WriteString(t.String() + "\n")

	b.WriteString("\n--- Raw record bytes (hex) ---\n")
	for i, r := range records {
		fmt.Fprintf(&b, "[%2d] offset=%5d: %s\n", i, r.Offset, r.Hex())
	}

	if len(records) > 1 {
		b.WriteString("\n--- Per-byte-offset variation across records ---\n")
		v := newTable("offset", "dec", "values (hex)", "")
		for _, row := range sequ.Variance(records) {
			class := row.Class.String()
			if row.Class == sequ.Varies {
				class = warnStyle.Render("<-- " + class)
			}
			v.Row(fmt.Sprintf("[%02x]", row.Offset), strconv.Itoa(row.Offset), fmt.Sprintf("% x", row.Values), class)
		}
		b.WriteString(v.String() + "\n")
	}

	if len(groups) > 0 {
		b.WriteString("\n--- MIDI note groups (beat, tick, pitches) ---\n")
		for _, g := range groups {
			beat := float64(g.Tick) / float64(division.Ticks4th())
			fmt.Fprintf(&b, "  beat %6.3f  tick %6d  %s\n", beat, g.Tick, strings.Join(g.Names(), " "))
		}
	}
	return b.String(), nil
}
