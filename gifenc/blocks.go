package gifenc

// maxBlockSize is the largest data sub-block a GIF stream allows.
const maxBlockSize = 255

// writeSubBlocks frames data into GIF's length-prefixed sub-blocks: chunks
// of at most 255 bytes, each preceded by a one-byte length, followed by a
// zero-length terminator. Both extension payloads and compressed image data
// use this framing; empty input still gets the terminator.
func writeSubBlocks(s *byteStream, data []byte) {
	for len(data) > 0 {
		n := len(data)
		if n > maxBlockSize {
			n = maxBlockSize
		}
		s.writeByte(n)
		s.writeBytes(data[:n])
		data = data[n:]
	}
	s.writeByte(0x00)
}
