package gifenc

// byteStream is an append-only binary buffer. Writes never fail: numeric
// inputs are masked to their field width rather than rejected, which keeps
// the assembler a straight-line pipeline.
type byteStream struct {
	buf []byte
}

func newByteStream(capacity int) *byteStream {
	return &byteStream{buf: make([]byte, 0, capacity)}
}

func (s *byteStream) writeByte(v int) {
	s.buf = append(s.buf, byte(v&0xFF))
}

// writeUint16 writes v little-endian, the byte order GIF uses for all words.
func (s *byteStream) writeUint16(v int) {
	s.buf = append(s.buf, byte(v&0xFF), byte((v>>8)&0xFF))
}

func (s *byteStream) writeBytes(p []byte) {
	s.buf = append(s.buf, p...)
}

func (s *byteStream) writeString(str string) {
	s.buf = append(s.buf, str...)
}

func (s *byteStream) bytes() []byte {
	return s.buf
}
