package bitutil

// BitWriter accumulates bits most significant first, the inverse of BitSource.
type BitWriter struct {
	bytes []byte
	size  int
}

// AppendBits appends the numBits least significant bits of value.
func (w *BitWriter) AppendBits(value uint32, numBits int) {
	if numBits < 0 || numBits > 32 {
		panic("bitwriter: num bits must be between 0 and 32")
	}
	for i := numBits - 1; i >= 0; i-- {
		w.AppendBit(value&(1<<uint(i)) != 0)
	}
}

// AppendBit appends a single bit.
func (w *BitWriter) AppendBit(bit bool) {
	if w.size%8 == 0 {
		w.bytes = append(w.bytes, 0)
	}
	if bit {
		w.bytes[w.size/8] |= 0x80 >> uint(w.size%8)
	}
	w.size++
}

// Size returns the number of bits written.
func (w *BitWriter) Size() int { return w.size }

// SizeInBytes returns the number of bytes needed to hold the bits.
func (w *BitWriter) SizeInBytes() int { return (w.size + 7) / 8 }

// Bytes returns the written bits, zero padded to a byte boundary.
func (w *BitWriter) Bytes() []byte { return w.bytes }
