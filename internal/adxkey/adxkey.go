// Package adxkey holds the built-in CRI ADX encryption key table and the
// detector that matches an encrypted stream's observed frame scales
// against it. It is a self-contained, pure package (no dependency on
// spore's Stream/ChannelState) in the same spirit as a leaf codec package:
// given bytes, it returns a candidate key.
package adxkey

// Key is an ADX encryption triple: a 15-bit XOR seed plus the 15-bit LCG
// multiplier/adder that roll it forward once per 32-sample frame.
type Key struct {
	Name string
	Xor  uint16
	Mult uint16
	Add  uint16
}

// Table lists the known (xor, mult, add) triples shipped with this build.
// A caller-supplied key always takes priority over this table.
var Table = []Key{
	{Name: "karaage", Xor: 0x49E1, Mult: 0x4A57, Add: 0x553D},
	{Name: "warau_jikan", Xor: 0x7A30, Mult: 0x6539, Add: 0x3353},
	{Name: "kuroneko", Xor: 0x3F78, Mult: 0x4A11, Add: 0x2037},
}

const scaleMask15 = 0x7FFF

// next advances an XOR seed by one frame using the type-8/9 LCG.
func next(xor, mult, add uint16) uint16 {
	return uint16((uint32(xor)*uint32(mult) + uint32(add)) & scaleMask15)
}

// Detect tries every key in Table (tried in order, first match wins)
// against a run of observed masked scale values from consecutive
// non-EOF frames, returning the key whose predicted XOR sequence agrees
// with every observed value. mask is 0x6000 for type 8, 0x1000 for type 9
// per spec.md §4.B.
func Detect(observed []uint16, mask uint16) (Key, bool) {
	for _, k := range Table {
		if matches(k, observed, mask) {
			return k, true
		}
	}

	return Key{}, false
}

func matches(k Key, observed []uint16, mask uint16) bool {
	xor := k.Xor

	for _, scale := range observed {
		if scale&mask != xor&mask {
			return false
		}

		xor = next(xor, k.Mult, k.Add)
	}

	return true
}

// Roll advances the key's XOR seed by one frame, used by the decoder once
// the key has been selected (the decoder does not reuse this package's
// Table after detection — it carries the rolled xor forward itself).
func (k Key) Roll() Key {
	k.Xor = next(k.Xor, k.Mult, k.Add)

	return k
}
