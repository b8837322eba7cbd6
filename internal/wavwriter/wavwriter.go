// Package wavwriter writes decoded PCM to a RIFF/WAVE container. Encode-only:
// spore's codecs always decode to interleaved int16, so there is no format
// negotiation to do on the way out.
package wavwriter

import (
	"encoding/binary"
	"fmt"
	"io"
)

const wavFormatPCM = 1
const wavFormatExtensible = 0xFFFE

// GUID for PCM in WAVEFORMATEXTENSIBLE.
var wavGUIDPCM = [16]byte{
	0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x10, 0x00,
	0x80, 0x00, 0x00, 0xaa, 0x00, 0x38, 0x9b, 0x71,
}

// Write encodes interleaved 16-bit PCM samples (channels * frames values) as
// a WAV file. Channel counts above 2 use WAVEFORMATEXTENSIBLE so players
// have a channel mask to work with; mono/stereo use the plain WAVEFORMATEX
// header most tools expect.
func Write(w io.Writer, samples []int16, channels int, sampleRate int) error {
	if channels <= 0 {
		return fmt.Errorf("wavwriter: invalid channel count %d", channels)
	}

	const bitsPerSample = 16

	byteRate := uint32(sampleRate) * uint32(channels) * bitsPerSample / 8 //nolint:mnd
	blockAlign := uint16(channels) * bitsPerSample / 8                    //nolint:mnd
	dataSize := uint32(len(samples)) * 2                                  //nolint:mnd

	if channels > 2 { //nolint:mnd
		if err := writeExtensibleHeader(w, uint16(channels), uint32(sampleRate), byteRate, blockAlign, dataSize); err != nil { //nolint:gosec
			return err
		}
	} else {
		if err := writeSimpleHeader(w, uint16(channels), uint32(sampleRate), byteRate, blockAlign, dataSize); err != nil { //nolint:gosec
			return err
		}
	}

	return writeSamples(w, samples)
}

func writeSamples(w io.Writer, samples []int16) error {
	buf := make([]byte, len(samples)*2) //nolint:mnd

	for i, smp := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(smp)) //nolint:gosec,mnd
	}

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("wavwriter: writing PCM data: %w", err)
	}

	return nil
}

func writeSimpleHeader(w io.Writer, channels uint16, sampleRate, byteRate uint32, blockAlign uint16, dataSize uint32) error {
	var header [44]byte //nolint:mnd

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], dataSize+36) //nolint:mnd
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16) //nolint:mnd
	binary.LittleEndian.PutUint16(header[20:22], wavFormatPCM)
	binary.LittleEndian.PutUint16(header[22:24], channels)
	binary.LittleEndian.PutUint32(header[24:28], sampleRate)
	binary.LittleEndian.PutUint32(header[28:32], byteRate)
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], 16) //nolint:mnd
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("wavwriter: writing header: %w", err)
	}

	return nil
}

func writeExtensibleHeader(w io.Writer, channels uint16, sampleRate, byteRate uint32, blockAlign uint16, dataSize uint32) error {
	const fmtChunkSize = 40

	headerSize := uint32(12 + 8 + fmtChunkSize + 8) //nolint:mnd
	fileSize := headerSize + dataSize - 8           //nolint:mnd

	var header [68]byte //nolint:mnd

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], fileSize)
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], fmtChunkSize)

	binary.LittleEndian.PutUint16(header[20:22], wavFormatExtensible)
	binary.LittleEndian.PutUint16(header[22:24], channels)
	binary.LittleEndian.PutUint32(header[24:28], sampleRate)
	binary.LittleEndian.PutUint32(header[28:32], byteRate)
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], 16) //nolint:mnd
	binary.LittleEndian.PutUint16(header[36:38], 22) //nolint:mnd

	binary.LittleEndian.PutUint16(header[38:40], 16) //nolint:mnd
	binary.LittleEndian.PutUint32(header[40:44], channelMask(channels))
	copy(header[44:60], wavGUIDPCM[:])

	copy(header[60:64], "data")
	binary.LittleEndian.PutUint32(header[64:68], dataSize)

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("wavwriter: writing header: %w", err)
	}

	return nil
}

// channelMask returns the standard channel mask for common speaker layouts;
// anything unrecognised gets an unspecified (0) mask rather than a guess.
func channelMask(channels uint16) uint32 {
	switch channels {
	case 1:
		return 0x4 //nolint:mnd // FC
	case 2:
		return 0x3 //nolint:mnd // FL | FR
	case 4:
		return 0x33 //nolint:mnd // FL | FR | BL | BR
	case 6:
		return 0x3F //nolint:mnd // 5.1
	case 8:
		return 0x63F //nolint:mnd // 7.1
	default:
		return 0
	}
}
