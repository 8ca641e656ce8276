package detect

import (
	"encoding/binary"

	"github.com/x448/float16"
)

var f16LookupTable [65536]float32

func init() {
	// precompute float16 lookup table for faster conversion to float32
	for i := range f16LookupTable {
		f16 := float16.Frombits(uint16(i))
		f16LookupTable[i] = f16.Float32()
	}
}

// f16BytesToFloat32 converts a little endian raw float16 tensor buffer into
// float32 values using the precomputed lookup table
func f16BytesToFloat32(buf []byte) []float32 {

	out := make([]float32, len(buf)/2)

	for i := range out {
		bits := binary.LittleEndian.Uint16(buf[i*2:])
		out[i] = f16LookupTable[bits]
	}

	return out
}
