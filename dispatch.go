package spore

import (
	"errors"
	"fmt"

	"github.com/mycophonic/spore/ioreader"
)

// metaParser is the signature every container parser shares: try to
// recognize the stream at r's current contents, returning errNotThisFormat
// (never surfaced past Open) on any signature mismatch.
type metaParser func(r *ioreader.Reader) (*Stream, error)

// parsers is the dispatcher's ordered try-list. Order matters only where
// two formats could plausibly both fail to reject a given input; container
// magics are otherwise distinct enough that order is cosmetic.
var parsers = []metaParser{
	parseADX,
	parseBRSTM,
	parseHALPST,
	parseDSP,
	parseXVAG,
	parseEASCHL,
	parseWAVMSADPCM,
	parseAST,
	parseIVAud,
	parseXA,
	parseSiren14Raw,
}

const (
	minSampleRate = 300
	maxSampleRate = 96000
)

// Open detects and opens a stream from io, trying every registered parser
// in order and returning ErrUnrecognized if none matched.
func Open(io ioreader.Io) (*Stream, error) {
	r, err := ioreader.New(io)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	s, err := tryParsers(r)
	if err != nil {
		_ = r.Close()

		return nil, err
	}

	return s, nil
}

// OpenSubsong opens the index'th subsong of a multi-stream container. A
// subsong-unaware parser always reports exactly one subsong at index 0;
// requesting any other index returns ErrInvalid.
func OpenSubsong(io ioreader.Io, index int) (*Stream, error) {
	r, err := ioreader.New(io)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	s, err := tryParsers(r)
	if err != nil {
		_ = r.Close()

		return nil, err
	}

	if uint32(index) >= s.NumSubsongs+1 { //nolint:gosec // index is caller-supplied, bounded below
		_ = s.Close()

		return nil, fmt.Errorf("%w: subsong index %d out of range", ErrInvalid, index)
	}

	s.StreamIndex = uint32(index) //nolint:gosec // bounds-checked above

	return s, nil
}

func tryParsers(r *ioreader.Reader) (*Stream, error) {
	for _, parse := range parsers {
		s, err := parse(r)

		switch {
		case err == nil:
			if s.SampleRate < minSampleRate || s.SampleRate > maxSampleRate {
				return nil, fmt.Errorf("%w: sample rate %d out of sane range", ErrInvalid, s.SampleRate)
			}

			return s, nil

		case errors.Is(err, errNotThisFormat):
			continue

		default:
			return nil, err
		}
	}

	return nil, ErrUnrecognized
}

// Extensions lists every filename extension a registered parser can gate
// on, for hosts that want to pre-filter a directory listing before calling
// Open. Parsers that sniff purely on content contribute nothing here.
func Extensions() []string {
	exts := make([]string, 0, len(siren14RawExtensions))
	exts = append(exts, siren14RawExtensions...)

	return exts
}
