// Package legacycrc emulates the defective 32-bit checksum produced by the
// CRC peripheral in STM32F2/F4 series MCUs combined with the bugs in the
// legacy CRC driver. Resource packs written by old firmware carry values
// from this algorithm, so the emulation must be bit-exact, defects included.
//
// This is NOT an ordinary CRC-32 and must never be used where the standard
// checksum stamped on table entries is expected; see utils.StandardCRC32.
package legacycrc

// lookupTable is the nybble-wide CRC table generated from the 0x04C11DB7
// polynomial, matching the table in the legacy C driver.
var lookupTable = [16]uint32{
	0x00000000, 0x04c11db7, 0x09823b6e, 0x0d4326d9,
	0x130476dc, 0x17c56b6b, 0x1a864db2, 0x1e475005,
	0x2608edb8, 0x22c9f00f, 0x2f8ad6d6, 0x2b4bcb61,
	0x350c9b64, 0x31cd86d3, 0x3c8ea00a, 0x384fbdbd,
}

const seed = 0xFFFFFFFF

// checksumByte feeds one byte through the register, high nybble first.
func checksumByte(reg uint32, b byte) uint32 {
	reg = (reg << 4) ^ lookupTable[((reg>>28)^uint32(b>>4))&0x0F]
	reg = (reg << 4) ^ lookupTable[((reg>>28)^uint32(b))&0x0F]
	return reg
}

// Checksum computes the legacy defective checksum of data in one shot.
//
// Whole 4-byte groups are fed byte-reversed: the hardware register was
// written as one little-endian 32-bit word and then consumed MSB-first.
// A trailing 1-3 byte tail is fed in forward order instead, after the
// register is advanced by 4-n zero bytes (left padding). The asymmetry
// between the two phases is a driver bug that stored checksums depend on,
// so it is preserved here.
//
// Empty input still runs the padding phase, so Checksum(nil) is the
// checksum of a single zero word, 0xC704DD7B.
func Checksum(data []byte) uint32 {
	reg := uint32(seed)
	empty := len(data) == 0

	for len(data) >= 4 {
		reg = checksumByte(reg, data[3])
		reg = checksumByte(reg, data[2])
		reg = checksumByte(reg, data[1])
		reg = checksumByte(reg, data[0])
		data = data[4:]
	}

	if len(data) == 0 && !empty {
		return reg
	}
	for i := len(data); i < 4; i++ {
		reg = checksumByte(reg, 0)
	}
	for _, b := range data {
		reg = checksumByte(reg, b)
	}
	return reg
}

// Calculator computes the legacy defective checksum incrementally. Bytes
// may be split across Update calls at any boundary; the result always
// matches the single-shot Checksum of the concatenated input.
//
// The legacy driver carried a similar accumulator but reset it on every
// call, so its cross-call path never ran. Calculator is the explicit
// stateful construction that path was apparently meant to be.
type Calculator struct {
	reg      uint32
	acc      [3]byte
	accLen   int
	consumed bool
}

// New returns a Calculator ready to accept data.
func New() *Calculator {
	return &Calculator{reg: seed}
}

// Reset returns the calculator to its initial state.
func (c *Calculator) Reset() {
	c.reg = seed
	c.accLen = 0
	c.consumed = false
}

// Update feeds data into the checksum.
func (c *Calculator) Update(data []byte) {
	if len(data) > 0 {
		c.consumed = true
	}

	if c.accLen > 0 {
		for c.accLen < 3 && len(data) > 0 {
			c.acc[c.accLen] = data[0]
			c.accLen++
			data = data[1:]
		}
		if c.accLen == 3 && len(data) > 0 {
			// Completes a 4-byte group: newest byte first, then the
			// accumulated bytes newest to oldest, same order the bulk
			// phase would have used.
			c.reg = checksumByte(c.reg, data[0])
			data = data[1:]
			c.reg = checksumByte(c.reg, c.acc[2])
			c.reg = checksumByte(c.reg, c.acc[1])
			c.reg = checksumByte(c.reg, c.acc[0])
			c.accLen = 0
		}
	}

	for len(data) >= 4 {
		c.reg = checksumByte(c.reg, data[3])
		c.reg = checksumByte(c.reg, data[2])
		c.reg = checksumByte(c.reg, data[1])
		c.reg = checksumByte(c.reg, data[0])
		data = data[4:]
	}

	for _, b := range data {
		c.acc[c.accLen] = b
		c.accLen++
	}
}

// Sum32 returns the checksum of all bytes fed so far. It does not mutate
// the calculator; Update may be called again afterwards.
func (c *Calculator) Sum32() uint32 {
	reg := c.reg
	if c.accLen == 0 && c.consumed {
		return reg
	}
	for i := c.accLen; i < 4; i++ {
		reg = checksumByte(reg, 0)
	}
	for i := 0; i < c.accLen; i++ {
		reg = checksumByte(reg, c.acc[i])
	}
	return reg
}
