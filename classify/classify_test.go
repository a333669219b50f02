package classify

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestVPClassify(t *testing.T) {
	testCases := []struct {
		stem string
		want Match
	}{
		{
			"VP-GRIT - 92 bpm - Pop Rock 1 - 10a - 3",
			Match{Source: "VP-GRIT", BPM: 92, Pattern: "Pop Rock 1", Intensity: "10a"},
		},
		{
			"VP-GRIT - 120 bpm - Ballad - Slow - 1 - 12",
			Match{Source: "VP-GRIT", BPM: 120, Pattern: "Ballad - Slow", Intensity: "1"},
		},
		{
			"VP-VIBE - Advanced: 100 bpm - Neo Soul - 6 - 1",
			Match{Source: "VP-VIBE-Advanced", BPM: 100, Pattern: "Neo Soul", Intensity: "6"},
		},
		{
			"VP-VIBE - Basic： 80 bpm - Gospel - 10 - 2",
			Match{Source: "VP-VIBE-Basic", BPM: 80, Pattern: "Gospel", Intensity: "10"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.stem, func(t *testing.T) {
			got, err := VP{}.Classify(tc.stem)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestVPClassifyRejects(t *testing.T) {
	for _, stem := range []string{
		"",
		"loop",
		"VP-GRIT - 92 bpm - Pop Rock 1 - 7 - 3",
		"VP-GRIT - 92 bpm - Pop Rock 1 - 10a",
		"VP-VIBE - Expert: 100 bpm - Neo Soul - 6 - 1",
		"VP-GRIT - 92 bpm - Pop Rock 1 - 10a - 3.mid",
	} {
		_, err := VP{}.Classify(stem)
		require.Error(t, err, stem)
		require.True(t, errors.Is(err, ErrUnparsableFilename))
	}
}

func TestIntensityRank(t *testing.T) {
	require.Equal(t, 0, IntensityRank("1"))
	require.Equal(t, 6, IntensityRank("10a"))
	require.Equal(t, -1, IntensityRank("2"))
}
