// Package classify derives loop metadata from file names.
package classify

import (
	"regexp"
	"strconv"

	"github.com/pkg/errors"
)

var ErrUnparsableFilename = errors.New("unparsable filename")

// Intensities lists the intensity variants in ascending order.
var Intensities = []string{"1", "3", "5", "6", "8", "10", "10a"}

// Match is what a classifier extracts from a file name stem.
type Match struct {
	Source    string
	BPM       int
	Pattern   string
	Intensity string
}

// Classifier maps a file name stem (no directory, no extension) to a Match.
type Classifier interface {
	Classify(stem string) (Match, error)
}

const intensityPattern = `(1|3|5|6|8|10|10a)`

var (
	gritRE = regexp.MustCompile(`^VP-GRIT - (\d+) bpm - (.+?) - ` + intensityPattern + ` - \d+$`)
	vibeRE = regexp.MustCompile(`^VP-VIBE - (Advanced|Basic)[：:] (\d+) bpm - (.+?) - ` + intensityPattern + ` - \d+$`)
)

// VP classifies Virtual Pianist GRIT and VIBE pattern exports.
type VP struct{}

func (VP) Classify(stem string) (Match, error) {
	if m := gritRE.FindStringSubmatch(stem); m != nil {
		return newMatch("VP-GRIT", m[1], m[2], m[3])
	}
	if m := vibeRE.FindStringSubmatch(stem); m != nil {
		return newMatch("VP-VIBE-"+m[1], m[2], m[3], m[4])
	}
	return Match{}, errors.Wrapf(ErrUnparsableFilename, "%q", stem)
}

func newMatch(source, bpm, pattern, intensity string) (Match, error) {
	n, err := strconv.Atoi(bpm)
	if err != nil {
		return Match{}, errors.Wrapf(ErrUnparsableFilename, "bpm %q", bpm)
	}
	return Match{Source: source, BPM: n, Pattern: pattern, Intensity: intensity}, nil
}

// IntensityRank returns the position of intensity in Intensities, or -1.
func IntensityRank(intensity string) int {
	for i, s := range Intensities {
		if s == intensity {
			return i
		}
	}
	return -1
}
