package g711

import "testing"

func TestRoundTripAllBytes(t *testing.T) {
	for b := 0; b < 256; b++ {
		decoded := DecodeSample(byte(b))
		got := EncodeSample(decoded)
		if got != byte(b) {
			t.Errorf("EncodeSample(DecodeSample(%#02x)) = %#02x, decoded %d", b, got, decoded)
		}
	}
}

func TestSilence(t *testing.T) {
	if got := DecodeSample(Silence); got != 0 {
		t.Fatalf("DecodeSample(Silence) = %d, want 0", got)
	}
	if got := EncodeSample(0); got != Silence {
		t.Fatalf("EncodeSample(0) = %#02x, want %#02x", got, Silence)
	}
}

func TestEncodeMonotonicSign(t *testing.T) {
	// Positive samples keep the sign bit clear after inversion, negative
	// samples keep it set.
	for _, s := range []int16{1, 100, 1000, 32767} {
		if b := ^EncodeSample(s); b&0x80 != 0 {
			t.Errorf("EncodeSample(%d): sign bit set", s)
		}
	}
	for _, s := range []int16{-1, -100, -1000, -32768} {
		if b := ^EncodeSample(s); b&0x80 == 0 {
			t.Errorf("EncodeSample(%d): sign bit clear", s)
		}
	}
}

func TestEncodeClipping(t *testing.T) {
	// Extremes land in the top segment with a full mantissa instead of
	// wrapping.
	if EncodeSample(32767) != EncodeSample(32700) {
		t.Error("clipped positive extremes should encode identically")
	}
	if EncodeSample(-32768) != EncodeSample(-32701) {
		t.Error("clipped negative extremes should encode identically")
	}
}

func TestDecodeQuantizationError(t *testing.T) {
	// Lossy by design: any sample must decode back within its segment's
	// quantization step.
	for _, s := range []int16{0, 7, 96, 500, -500, 8000, -8000, 30000} {
		got := DecodeSample(EncodeSample(s))
		diff := int32(got) - int32(s)
		if diff < 0 {
			diff = -diff
		}
		if diff > 2048 {
			t.Errorf("round trip of %d drifted by %d", s, diff)
		}
	}
}

func TestBuffers(t *testing.T) {
	in := []int16{0, 1000, -1000, 32767, -32768}
	encoded := Encode(in)
	if len(encoded) != len(in) {
		t.Fatalf("Encode length = %d, want %d", len(encoded), len(in))
	}
	decoded := Decode(encoded)
	if len(decoded) != len(in) {
		t.Fatalf("Decode length = %d, want %d", len(decoded), len(in))
	}
	// Re-encoding the decoded buffer must reproduce the bytes exactly.
	for i, b := range Encode(decoded) {
		if b != encoded[i] {
			t.Fatalf("re-encode[%d] = %#02x, want %#02x", i, b, encoded[i])
		}
	}
}

func TestSilenceFill(t *testing.T) {
	p := make([]byte, 160)
	SilenceFill(p)
	for i, b := range p {
		if b != Silence {
			t.Fatalf("SilenceFill[%d] = %#02x, want %#02x", i, b, Silence)
		}
	}
}
