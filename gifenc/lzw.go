package gifenc

// GIF's LZW variant for a 4-entry palette. The minimum code size is fixed at
// 2 bits, which pins the clear and end-of-information codes and the initial
// code width for the whole stream.
const (
	minCodeSize = 2
	numSymbols  = 1 << minCodeSize // palette indices are 0..3
	clearCode   = numSymbols
	eoiCode     = clearCode + 1
	maxWidth    = 12
	maxCodes    = 1 << maxWidth
)

// bitPacker accumulates variable-width codes least-significant-bit first and
// drains completed bytes as they fill up.
type bitPacker struct {
	out  []byte
	acc  uint32
	nbit uint
}

func (p *bitPacker) emit(code, width int) {
	p.acc |= uint32(code) << p.nbit
	p.nbit += uint(width)
	for p.nbit >= 8 {
		p.out = append(p.out, byte(p.acc))
		p.acc >>= 8
		p.nbit -= 8
	}
}

func (p *bitPacker) flush() {
	if p.nbit > 0 {
		p.out = append(p.out, byte(p.acc))
		p.acc = 0
		p.nbit = 0
	}
}

// compress turns a flat sequence of palette indices (each < numSymbols) into
// a GIF-conformant LZW bitstream, before sub-block framing. The code table
// maps (prefix code, next symbol) to the next free code; the pair is packed
// into the integer index prefix*numSymbols+symbol so the hot loop is a single
// slice lookup. Literal codes 0..3 are implicitly their own entries, so the
// table only ever stores codes >= eoiCode+1 and -1 marks an empty slot.
//
// When the table tops out at 4096 entries the compressor emits a clear code
// and starts over from a fresh table and the initial 3-bit width, rather than
// coasting at 12 bits. Decoders accept either; Go's compress/lzw writer uses
// the same reset policy.
func compress(indices []byte) []byte {
	p := &bitPacker{out: make([]byte, 0, len(indices)/4+16)}

	table := make([]int16, maxCodes*numSymbols)
	reset := func() {
		for i := range table {
			table[i] = -1
		}
	}
	reset()

	nextCode := eoiCode + 1
	width := minCodeSize + 1

	p.emit(clearCode, width)

	if len(indices) == 0 {
		p.emit(eoiCode, width)
		p.flush()
		return p.out
	}

	prefix := int(indices[0])
	for _, sym := range indices[1:] {
		k := prefix*numSymbols + int(sym)
		if code := table[k]; code >= 0 {
			// Longest match so far; keep accumulating.
			prefix = int(code)
			continue
		}

		p.emit(prefix, width)
		if nextCode < maxCodes {
			table[k] = int16(nextCode)
			nextCode++
			if nextCode > 1<<width && width < maxWidth {
				width++
			}
		} else {
			p.emit(clearCode, width)
			reset()
			nextCode = eoiCode + 1
			width = minCodeSize + 1
		}
		prefix = int(sym)
	}

	p.emit(prefix, width)
	p.emit(eoiCode, width)
	p.flush()
	return p.out
}
