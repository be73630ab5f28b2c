package decoder

// DecoderResult is the outcome of decoding one module matrix.
type DecoderResult struct {
	// RawBytes holds the corrected data codewords of all blocks in order.
	RawBytes []byte
	// Bytes is the payload. Byte segments are copied verbatim, numeric and
	// alphanumeric as ASCII, kanji and hanzi as UTF-8.
	Bytes []byte
	// Text is the payload as UTF-8.
	Text         string
	Segments     []Segment
	ByteSegments [][]byte
	// CharacterSet names the encoding used for the last byte segment.
	CharacterSet string

	Version         int
	ECLevel         ECLevel
	DataMask        int
	ErrorsCorrected int

	StructuredAppendSequence int
	StructuredAppendParity   int
	SymbologyModifier        int
}

// HasStructuredAppend reports whether the symbol is part of a sequence.
func (r *DecoderResult) HasStructuredAppend() bool {
	return r.StructuredAppendSequence >= 0 && r.StructuredAppendParity >= 0
}
