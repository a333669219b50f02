package container

// ID is a four-character chunk identifier.
type ID [4]byte

func NewID(str string) ID {
	if len(str) != 4 {
		panic("chunk ID must be 4 bytes")
	}
	res := ID{}
	for i := 0; i < 4; i++ {
		res[i] = str[i]
	}
	return res
}

func (id ID) String() string {
	return string(id[:])
}

var (
	MagicAIFF = NewID("FORM")
	MagicCAF  = NewID("caff")

	ChunkMIDI     = NewID(".mid")
	ChunkLoop     = NewID("basc")
	ChunkSequence = NewID("Sequ")
	ChunkCAFMIDI  = NewID("midi")
	ChunkCAFInfo  = NewID("info")
	ChunkCAFData  = NewID("data")
)
