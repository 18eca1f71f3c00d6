package g711

// Silence is the mu-law code for a zero-amplitude sample. Telephony
// transports expect frames padded with this byte, not with zeros.
const Silence byte = 0xFF

const (
	// encodeBias is the companding bias: 33 in the 14-bit mu-law domain,
	// scaled into the 16-bit sample range.
	encodeBias = 33 << 2
	// encodeClip keeps the biased magnitude inside int16 range.
	encodeClip = 0x7FFF - encodeBias
)

// segTable maps the top 8 bits of a biased magnitude to its segment
// exponent. segTable[i] == floor(log2(i)) for i >= 1.
var segTable = func() (t [256]byte) {
	for seg := byte(1); seg <= 7; seg++ {
		for i := 1 << seg; i < 1<<(seg+1); i++ {
			t[i] = seg
		}
	}
	return
}()

// EncodeSample compresses one 16-bit linear PCM sample to a mu-law byte.
func EncodeSample(s int16) byte {
	x := int32(s)
	var sign byte
	if x < 0 {
		// One's-complement negation keeps zero distinct from negative
		// zero, which is what makes the codec byte-exact under
		// decode-then-encode.
		x = ^x
		sign = 0x80
	}
	if x > encodeClip {
		x = encodeClip
	}
	x += encodeBias
	seg := segTable[(x>>7)&0xFF]
	mant := byte((x >> (uint(seg) + 3)) & 0x0F)
	return ^(sign | seg<<4 | mant)
}

// DecodeSample expands one mu-law byte to a 16-bit linear PCM sample.
func DecodeSample(u byte) int16 {
	u = ^u
	seg := (u >> 4) & 0x07
	mant := int32(u & 0x0F)
	v := ((mant<<3 + encodeBias) << seg) - encodeBias
	if u&0x80 != 0 {
		return int16(^v)
	}
	return int16(v)
}

// Decode expands a mu-law buffer to 16-bit linear PCM samples.
func Decode(data []byte) []int16 {
	out := make([]int16, len(data))
	for i, b := range data {
		out[i] = DecodeSample(b)
	}
	return out
}

// Encode compresses 16-bit linear PCM samples to a mu-law buffer.
func Encode(samples []int16) []byte {
	out := make([]byte, len(samples))
	for i, s := range samples {
		out[i] = EncodeSample(s)
	}
	return out
}

// SilenceFill overwrites p with mu-law silence and returns it.
func SilenceFill(p []byte) []byte {
	for i := range p {
		p[i] = Silence
	}
	return p
}
