package container

import (
	"encoding/binary"
	"math"
)

// Offsets inside the Apple Loop "basc" chunk. Only the key byte offset has
// been observed consistently; the beat count location is a working guess.
const (
	loopBeatsOffset = 0
	loopKeyOffset   = 48
	loopProbeLimit  = 40
)

// LoopInfo is the partially understood content of a "basc" chunk.
type LoopInfo struct {
	Length       int
	Beats        float32
	KeySignature byte
	Candidates   []LoopCandidate
}

// LoopCandidate flags a 4-byte-aligned field whose value looks like a tempo
// (float32 in 60..200) or a bar count (u32 in 1..16).
type LoopCandidate struct {
	Offset int
	Float  float32
	Uint   uint32
	Tempo  bool
	Bars   bool
}

func DecodeLoop(payload []byte) LoopInfo {
	info := LoopInfo{Length: len(payload)}
	if len(payload) >= loopBeatsOffset+4 {
		info.Beats = math.Float32frombits(binary.BigEndian.Uint32(payload[loopBeatsOffset:]))
	}
	if len(payload) > loopKeyOffset {
		info.KeySignature = payload[loopKeyOffset]
	}
	limit := min(len(payload), loopProbeLimit)
	for off := 0; off+4 <= limit; off += 4 {
		u := binary.BigEndian.Uint32(payload[off:])
		f := math.Float32frombits(u)
		cand := LoopCandidate{
			Offset: off,
			Float:  f,
			Uint:   u,
			Tempo:  f >= 60 && f <= 200,
			Bars:   u >= 1 && u <= 16,
		}
		if cand.Tempo || cand.Bars {
			info.Candidates = append(info.Candidates, cand)
		}
	}
	return info
}
