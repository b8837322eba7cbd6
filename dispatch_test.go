package spore

import (
	"testing"

	"github.com/mycophonic/spore/internal/adxkey"
)

// TestOpenADXExpStereo builds a minimal CRI ADX (encoding type 4, "exp"
// scale) stereo stream and checks that parseADX recognizes it and that
// Render decodes a full frame per channel without error.
func TestOpenADXExpStereo(t *testing.T) {
	t.Parallel()

	const channels = 2

	b := &byteBuilder{}
	b.u16BE(0, 0x8000)           // sync
	b.u16BE(2, 0x20)             // copyright offset -> data starts at 0x20+4=0x24
	b.u8(4, 4)                   // encoding type: exp
	b.u8(7, channels)
	b.u32BE(8, 44100)            // sample rate
	b.u32BE(12, adxFrameSmpls)   // num samples: one frame
	b.u16BE(16, 500)             // cutoff
	b.u32BE(24, 0)               // no loop
	b.tag(0x20, "(c)CR")
	b.u8(0x25, 'I')

	dataStart := int64(0x24)
	for ch := range channels {
		off := dataStart + int64(ch)*adxFrameBytes
		b.u16BE(off, 0x0004) // raw scale (must not equal the 0x8001 EOF sentinel)

		frame := make([]byte, adxFrameBytes-2)
		for i := range frame {
			frame[i] = byte(0x12 * (i + 1))
		}

		b.putBytes(off+2, frame)
	}

	r := newMemReader(t, "test.adx", b.buf)

	s, err := parseADX(r)
	if err != nil {
		t.Fatalf("parseADX: %v", err)
	}

	if s.Channels != channels {
		t.Fatalf("channels = %d, want %d", s.Channels, channels)
	}

	if s.Codec != CodecADXExp {
		t.Fatalf("codec = %v, want CodecADXExp", s.Codec)
	}

	out := make([]int16, adxFrameSmpls*channels)

	written, err := s.Render(out, adxFrameSmpls)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if written != adxFrameSmpls {
		t.Fatalf("written = %d, want %d", written, adxFrameSmpls)
	}
}

// TestOpenADXEnc8Karaage builds an encrypted (type 8) mono ADX stream
// whose frame scales follow the built-in "karaage" key's predicted
// sequence, and checks that parseADX auto-detects the key without
// requiring a caller-supplied key.
func TestOpenADXEnc8Karaage(t *testing.T) {
	t.Parallel()

	const (
		channels   = 1
		probeFrames = 8
	)

	key := adxkey.Table[0] // karaage
	if key.Name != "karaage" {
		t.Fatalf("unexpected table order: %s", key.Name)
	}

	b := &byteBuilder{}
	b.u16BE(0, 0x8000)
	b.u16BE(2, 0x20)
	b.u8(4, 8) // encoding type: enc8
	b.u8(7, channels)
	b.u32BE(8, 22050)
	b.u32BE(12, adxFrameSmpls*probeFrames)
	b.u16BE(16, 500)
	b.u32BE(24, 0)
	b.tag(0x20, "(c)CR")
	b.u8(0x25, 'I')

	dataStart := int64(0x24)
	xor := key.Xor

	for i := 0; i < probeFrames; i++ {
		off := dataStart + int64(i)*adxFrameBytes
		// The encrypted scale is masked to 13 bits and XORed with the
		// rolling key; the mask bits detectADXKey compares against are
		// 0x6000, so the low 13 bits are free to carry any plaintext
		// scale as long as they don't collide with the EOF sentinel.
		rawScale := xor ^ 0x0001
		b.u16BE(off, rawScale)

		frame := make([]byte, adxFrameBytes-2)
		b.putBytes(off+2, frame)

		xor = adxkey.Key{Xor: xor, Mult: key.Mult, Add: key.Add}.Roll().Xor
	}

	r := newMemReader(t, "test_enc8.adx", b.buf)

	s, err := parseADX(r)
	if err != nil {
		t.Fatalf("parseADX: %v", err)
	}

	if s.ChannelsState[0].XorKey != key.Xor {
		t.Fatalf("detected xor = %#x, want %#x", s.ChannelsState[0].XorKey, key.Xor)
	}
}

// TestOpenBRSTMDSPStereo builds a minimal Nintendo BRSTM container around
// DSP-ADPCM stereo data and checks parseBRSTM/Render.
func TestOpenBRSTMDSPStereo(t *testing.T) {
	t.Parallel()

	const (
		headOffset = 0x20
		dataOffset = 0x100
		interleave = 8
		channels   = 2
	)

	b := &byteBuilder{}
	b.tag(0, "RSTM")
	b.u32BE(4, 0xFEFF0100) // BOM/version
	b.u32BE(0x10, headOffset)
	b.u32BE(0x18, dataOffset)

	base := int64(headOffset) + 8
	b.tag(headOffset, "HEAD")
	b.u32BE(headOffset+4, 0)

	b.u8(base, 2) // codec: DSP-ADPCM
	b.u8(base+1, 0) // not looping
	b.u8(base+2, channels)
	b.u16BE(base+4, 32000)
	b.u32BE(base+0x20, 0)                // loop start
	b.u32BE(base+0x24, 14)               // num samples: one DSP frame
	b.u32BE(base+0x30, interleave)
	b.u32BE(base+0x40, 0) // short-last-block: none, whole stream is one block
	b.u32BE(base+0x50, 0xA0)   // channel 0 coef table offset
	b.u32BE(base+0x58, 0xC0)   // channel 1 coef table offset

	// Coefficient tables are left zeroed (predictor 0 decodes as a bare
	// nibble ramp), occupying [0xA0,0xC0) and [0xC0,0xE0).

	b.tag(dataOffset, "DATA")
	b.u32BE(dataOffset+4, 0)

	chanData := dataOffset + 8
	for ch := range channels {
		off := chanData + int64(ch)*interleave
		b.u8(off, 0x00) // header: predictor 0, scale 2^0
		for i := int64(1); i < 8; i++ {
			b.u8(off+i, byte(0x11*i))
		}
	}

	r := newMemReader(t, "test.brstm", b.buf)

	s, err := parseBRSTM(r)
	if err != nil {
		t.Fatalf("parseBRSTM: %v", err)
	}

	if s.Channels != channels || s.Codec != CodecDSP {
		t.Fatalf("unexpected stream: channels=%d codec=%v", s.Channels, s.Codec)
	}

	out := make([]int16, 14*channels)

	written, err := s.Render(out, 14)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if written != 14 {
		t.Fatalf("written = %d, want 14", written)
	}
}

// TestOpenBRSTMShortLastBlock builds a mono BRSTM whose final interleave
// block is shorter than every earlier block (spec.md §8 scenario 2's
// interleave/short-last-block convention) and checks that parseBRSTM
// reads InterleaveLast and that the full declared sample count renders,
// including the short final block.
func TestOpenBRSTMShortLastBlock(t *testing.T) {
	t.Parallel()

	const (
		headOffset     = 0x20
		dataOffset     = 0x100
		interleave     = 16 // two DSP frames per full block
		interleaveLast = 8  // one DSP frame in the short last block
		numSamples     = 42 // 28 (full block) + 14 (short last block)
	)

	b := &byteBuilder{}
	b.tag(0, "RSTM")
	b.u32BE(4, 0xFEFF0100)
	b.u32BE(0x10, headOffset)
	b.u32BE(0x18, dataOffset)

	base := int64(headOffset) + 8
	b.tag(headOffset, "HEAD")
	b.u32BE(headOffset+4, 0)

	b.u8(base, 2) // codec: DSP-ADPCM
	b.u8(base+1, 0)
	b.u8(base+2, 1) // mono
	b.u16BE(base+4, 32000)
	b.u32BE(base+0x20, 0)
	b.u32BE(base+0x24, numSamples)
	b.u32BE(base+0x30, interleave)
	b.u32BE(base+0x40, interleaveLast)
	b.u32BE(base+0x50, 0x60) // channel 0 coef table offset

	b.tag(dataOffset, "DATA")
	b.u32BE(dataOffset+4, 0)

	chanData := dataOffset + 8
	for i := int64(0); i < interleave+interleaveLast; i += 8 {
		off := chanData + i
		b.u8(off, 0x00)

		for j := int64(1); j < 8; j++ {
			b.u8(off+j, byte(0x07*j))
		}
	}

	r := newMemReader(t, "test_short_last.brstm", b.buf)

	s, err := parseBRSTM(r)
	if err != nil {
		t.Fatalf("parseBRSTM: %v", err)
	}

	if s.InterleaveLast != interleaveLast {
		t.Fatalf("interleaveLast = %d, want %d", s.InterleaveLast, interleaveLast)
	}

	out := make([]int16, numSamples)

	written, err := s.Render(out, numSamples)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if written != numSamples {
		t.Fatalf("written = %d, want %d", written, numSamples)
	}
}

// TestXVAGLoopFlagScan builds an XVAG container whose PSX-ADPCM channel 0
// carries explicit loop-start/loop-end flag bytes and checks that
// parseXVAG recovers the loop region via ScanPSXLoopFlags.
func TestXVAGLoopFlagScan(t *testing.T) {
	t.Parallel()

	const (
		channels      = 2
		framesPerChan = 3
		interleave    = framesPerChan * psxFrameBytes
	)

	b := &byteBuilder{}
	b.tag(0, "XVAG")

	fmtOff := int64(0x20)
	fmtBodyLen := int64(0x14)
	b.tag(fmtOff, "fmt ")
	b.u32BE(fmtOff+4, uint32(fmtBodyLen))
	b.u8(fmtOff+8, channels)
	b.u32BE(fmtOff+0xC, 44100)
	b.u32BE(fmtOff+0x10, framesPerChan*psxFrameSmpls)

	dataChunkOff := fmtOff + fmtBodyLen
	dataSize := int64(channels * interleave)
	b.tag(dataChunkOff, "data")
	b.u32BE(dataChunkOff+4, uint32(dataSize+8))

	dataOffset := dataChunkOff + 8

	// Channel 0: frame 0 flags loop-start, frame 2 flags loop-end.
	b.u8(dataOffset+1, 0x06)
	b.u8(dataOffset+2*psxFrameBytes+1, 0x03)

	r := newMemReader(t, "test.xvag", b.buf)

	s, err := parseXVAG(r)
	if err != nil {
		t.Fatalf("parseXVAG: %v", err)
	}

	if s.Loop == nil {
		t.Fatalf("expected a recovered loop region, got none")
	}

	wantStart := int64(0)
	wantEnd := int64(3 * psxFrameSmpls)

	if s.Loop.Start != wantStart || s.Loop.End != wantEnd {
		t.Fatalf("loop = [%d,%d), want [%d,%d)", s.Loop.Start, s.Loop.End, wantStart, wantEnd)
	}
}

// TestEASCHLBoundaryWalk builds an EA SCHl container with two SCDl data
// chunks followed by an SCEl end marker and checks that parseEASCHL sums
// the per-chunk sample counts and stops at the SCEl boundary.
func TestEASCHLBoundaryWalk(t *testing.T) {
	t.Parallel()

	const (
		channels        = 1
		firstChunkOff   = 0x20
		frameBytes      = eaxaFrameBytes
		framesPerChunk  = 1
	)

	b := &byteBuilder{}
	b.tag(0, "SCHl")
	b.u32BE(4, firstChunkOff)

	const ptHeaderOffset = 0x10
	b.u8(ptHeaderOffset, 0x07) // EA-XA v2
	b.u8(ptHeaderOffset+1, channels)
	b.u32BE(ptHeaderOffset+4, 22050)

	payload := int64(framesPerChunk * frameBytes * channels)
	chunkSize := payload + easchlChunkHeaderBytes

	chunk1 := int64(firstChunkOff)
	b.tag(chunk1, "SCDl")
	b.u32LE(chunk1+4, uint32(chunkSize))

	chunk2 := chunk1 + chunkSize
	b.tag(chunk2, "SCDl")
	b.u32LE(chunk2+4, uint32(chunkSize))

	scel := chunk2 + chunkSize
	b.tag(scel, "SCEl")
	b.u32LE(scel+4, easchlChunkHeaderBytes)

	r := newMemReader(t, "test.asf", b.buf)

	s, err := parseEASCHL(r)
	if err != nil {
		t.Fatalf("parseEASCHL: %v", err)
	}

	want := int64(2 * eaxaFrameSmpls)
	if s.NumSamples != want {
		t.Fatalf("numSamples = %d, want %d", s.NumSamples, want)
	}
}

// TestOpenASTMono builds a minimal Nintendo AST container (mono PCM16BE,
// one block) and checks parseAST/Render.
func TestOpenASTMono(t *testing.T) {
	t.Parallel()

	const channels = 1

	b := &byteBuilder{}
	b.tag(0, "STRM")
	b.u16BE(0x8, 16) // bit depth
	b.u16BE(0xA, channels)
	b.u32BE(0xC, 48000)
	b.u32BE(0x10, 4) // num samples
	b.u32BE(0x18, 0) // loop start
	b.u32BE(0x1C, 0) // loop end

	blockOff := int64(astFirstBlockOffset)
	b.u32BE(blockOff, 8)   // block size in bytes (4 PCM16 samples)
	b.u32BE(blockOff+4, 4) // block sample count

	dataOff := blockOff + astHeaderBytes
	for i := int64(0); i < 4; i++ {
		b.i16BE(dataOff+i*2, int16(i*100))
	}

	r := newMemReader(t, "test.ast", b.buf)

	s, err := parseAST(r)
	if err != nil {
		t.Fatalf("parseAST: %v", err)
	}

	if s.Channels != channels || s.Codec != CodecPCM16BE {
		t.Fatalf("unexpected stream: channels=%d codec=%v", s.Channels, s.Codec)
	}

	out := make([]int16, 4*channels)

	written, err := s.Render(out, 4)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if written != 4 {
		t.Fatalf("written = %d, want 4", written)
	}
}

// TestOpenXAMono builds a single raw CD-XA sector (mono, 37800Hz) and
// checks that parseXA identifies it by its sync pattern as a mono 37800Hz
// PSX-ADPCM-modeled stream with a non-zero sample count.
func TestOpenXAMono(t *testing.T) {
	t.Parallel()

	b := &byteBuilder{}
	b.grow(xaSectorBytes)

	sync := []byte{0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00}
	b.putBytes(0, sync)

	subOff := int64(xaSectorHeader)
	b.u8(subOff, 0)                  // file number
	b.u8(subOff+1, 0)                // channel number
	b.u8(subOff+2, xaSubmodeAudio)   // submode: audio sector
	b.u8(subOff+3, 0)                // coding_info: mono, 37800Hz

	r := newMemReader(t, "test.xa", b.buf)

	s, err := parseXA(r)
	if err != nil {
		t.Fatalf("parseXA: %v", err)
	}

	if s.Channels != 1 || s.Codec != CodecPSXADPCM || s.SampleRate != 37800 {
		t.Fatalf("unexpected stream: channels=%d codec=%v rate=%d", s.Channels, s.Codec, s.SampleRate)
	}

	if s.NumSamples <= 0 {
		t.Fatalf("numSamples = %d, want > 0", s.NumSamples)
	}
}

// TestSiren14RawDecode builds a bare Siren14 elementary stream (the
// container-less ".s14" form) and checks that parseSiren14Raw identifies
// it by extension and that Render decodes one 48kbit frame per channel.
func TestSiren14RawDecode(t *testing.T) {
	t.Parallel()

	const (
		channels  = 1
		frameSize = 120 // 48kbit/s @ 640 samples/frame, 32kHz-ish framing
	)

	b := &byteBuilder{}
	b.u32BE(0, 32000)
	b.u8(4, channels)
	b.u16BE(6, frameSize)

	frame := make([]byte, frameSize)
	for i := range frame {
		frame[i] = byte(i * 7)
	}

	b.putBytes(siren14RawHeaderBytes, frame)

	r := newMemReader(t, "test.s14", b.buf)

	s, err := parseSiren14Raw(r)
	if err != nil {
		t.Fatalf("parseSiren14Raw: %v", err)
	}

	if s.Codec != CodecSiren14 {
		t.Fatalf("codec = %v, want CodecSiren14", s.Codec)
	}

	out := make([]int16, 640*channels)

	written, err := s.Render(out, 640)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if written != 640 {
		t.Fatalf("written = %d, want 640", written)
	}
}

// TestOpenWAVMSADPCMStereo builds a one-block stereo RIFF/WAVE MS-ADPCM
// file and checks that the block's two header-seeded samples (Hist2 then
// Hist1) come out first on each channel, ahead of any nibble-decoded
// sample, and that the shared data region's nibbles round-robin across
// channels rather than each channel owning its own region.
func TestOpenWAVMSADPCMStereo(t *testing.T) {
	t.Parallel()

	const (
		fmtOffset  = 12
		fmtSize    = 48
		dataOffset = fmtOffset + 8 + fmtSize + 8 // "data" tag + size
		blockAlign = 18                          // 2*7-byte headers + 4 bytes shared nibble data
	)

	b := &byteBuilder{}
	b.tag(0, "RIFF")
	b.tag(8, "WAVE")

	b.tag(fmtOffset, "fmt ")
	b.u32LE(fmtOffset+4, fmtSize)
	b.u16LE(fmtOffset+8, wavFormatMSADPCM)
	b.u16LE(fmtOffset+10, 2) // stereo
	b.u32LE(fmtOffset+12, 22050)
	b.u16LE(fmtOffset+20, blockAlign)
	b.u16LE(fmtOffset+8+18, 6) // samples per block (2 seeds + 4 decoded)
	b.u16LE(fmtOffset+8+18+2, 7)
	b.i16LE(fmtOffset+8+22, 256) // coefPairs[0] = {256, 0}, identity predictor
	b.i16LE(fmtOffset+8+24, 0)

	b.tag(dataOffset-8, "data")
	b.u32LE(dataOffset-4, blockAlign)

	// channel 0 header: delta 16, seed samples 100 then 50
	b.u8(dataOffset, 0)
	b.i16LE(dataOffset+1, 16)
	b.i16LE(dataOffset+3, 100)
	b.i16LE(dataOffset+5, 50)

	// channel 1 header: delta 20, seed samples 300 then 200
	b.u8(dataOffset+7, 0)
	b.i16LE(dataOffset+8, 20)
	b.i16LE(dataOffset+10, 300)
	b.i16LE(dataOffset+12, 200)

	// shared nibble data: all-zero nibbles decode to a flat run at the
	// identity predictor's last seed sample on each channel.
	b.u8(dataOffset+14, 0)
	b.u8(dataOffset+15, 0)
	b.u8(dataOffset+16, 0)
	b.u8(dataOffset+17, 0)

	r := newMemReader(t, "test.wav", b.buf)

	s, err := parseWAVMSADPCM(r)
	if err != nil {
		t.Fatalf("parseWAVMSADPCM: %v", err)
	}

	if s.Channels != 2 {
		t.Fatalf("channels = %d, want 2", s.Channels)
	}

	if s.NumSamples != 6 {
		t.Fatalf("numSamples = %d, want 6", s.NumSamples)
	}

	out := make([]int16, 6*2)

	written, err := s.Render(out, 6)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if written != 6 {
		t.Fatalf("written = %d, want 6", written)
	}

	want := []int16{
		50, 200, // sample 0: Hist2 per channel
		100, 300, // sample 1: Hist1 per channel
		100, 300, // samples 2-5: flat nibble-decoded run
		100, 300,
		100, 300,
		100, 300,
	}

	for i, w := range want {
		if out[i] != w {
			t.Fatalf("out[%d] = %d, want %d", i, out[i], w)
		}
	}
}
