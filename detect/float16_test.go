package detect

import (
	"testing"
)

// TestF16BytesToFloat32 tests raw little endian float16 buffers convert via
// the lookup table
func TestF16BytesToFloat32(t *testing.T) {

	tests := []struct {
		name string
		in   []byte
		want []float32
	}{
		{"zero", []byte{0x00, 0x00}, []float32{0}},
		{"one", []byte{0x00, 0x3C}, []float32{1}},
		{"negative two", []byte{0x00, 0xC0}, []float32{-2}},
		{"half", []byte{0x00, 0x38}, []float32{0.5}},
		{"pair", []byte{0x00, 0x3C, 0x00, 0x40}, []float32{1, 2}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {

			got := f16BytesToFloat32(tc.in)

			if len(got) != len(tc.want) {
				t.Fatalf("got %d values, want %d", len(got), len(tc.want))
			}

			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("value %d = %f, want %f", i, got[i], tc.want[i])
				}
			}
		})
	}
}
