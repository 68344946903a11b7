package vm

import "vc8/bitbyte"

// ramSize is the full address space: a program and its variables share these
// 256 bytes, addressed by a single byte-wide cursor.
const ramSize = 256

// RAM is the machine's flat byte-addressable memory plus the cursor that
// tracks the next instruction to fetch.
type RAM struct {
	cells  [ramSize]bitbyte.Byte
	cursor bitbyte.Byte
}

// Load copies a program image into RAM starting at address 0 and resets the
// cursor.
func (r *RAM) Load(image []byte) error {
	if len(image) > ramSize {
		return errImageTooLarge
	}
	for i, b := range image {
		r.cells[i] = bitbyte.FromUint8(b)
	}
	r.cursor = bitbyte.Zero
	return nil
}

// Get reads the byte at an address.
func (r *RAM) Get(addr uint8) bitbyte.Byte {
	return r.cells[addr]
}

// Set writes the byte at an address.
func (r *RAM) Set(addr uint8, v bitbyte.Byte) {
	r.cells[addr] = v
}

// Cursor returns the current fetch address.
func (r *RAM) Cursor() uint8 {
	return r.cursor.ToUint8()
}

// SetCursor overwrites the fetch address, used by jump instructions.
func (r *RAM) SetCursor(addr uint8) {
	r.cursor = bitbyte.FromUint8(addr)
}

// FetchStream always reads two bytes starting at the cursor and advances it
// by two; callers roll the cursor back by one afterward for instructions
// that turned out to occupy only one byte. Reading past the end of RAM wraps
// around, matching the fixed 256-byte address space.
func (r *RAM) FetchStream() [2]byte {
	a := r.cells[r.cursor.ToUint8()]
	next := r.cursor.Inc()
	b := r.cells[next.ToUint8()]
	r.cursor = next.Inc()
	return [2]byte{a.ToUint8(), b.ToUint8()}
}

// Rewind backs the cursor up by one byte, used after decoding a
// one-byte instruction out of a two-byte fetch window.
func (r *RAM) Rewind() {
	r.cursor = r.cursor.Dec()
}
