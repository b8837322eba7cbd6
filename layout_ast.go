package spore

import "fmt"

// astBlocks drives Nintendo AST's block layout: each block starts with an
// 8-byte header (big-endian block size in bytes, then block sample count)
// shared by every channel, followed by each channel's block-size bytes of
// data back to back.
type astBlocks struct{}

const astHeaderBytes = 8

func (astBlocks) initBlock(s *Stream) error {
	s.Playback.CurrentBlockOffset = 0

	return astBlocks{}.nextBlock(s)
}

func (astBlocks) nextBlock(s *Stream) error {
	off := s.Playback.NextBlockOffset

	header := make([]byte, astHeaderBytes)
	if _, err := s.Source.Read(header, off); err != nil {
		return fmt.Errorf("ast: block header: %w", err)
	}

	blockSize := int64(be32(header[0:4]))
	blockSamples := int64(be32(header[4:8]))

	dataStart := off + astHeaderBytes

	for i := range s.ChannelsState {
		s.ChannelsState[i].Offset = dataStart + int64(i)*blockSize
	}

	s.Playback.CurrentBlockOffset = off
	s.Playback.CurrentBlockSize = blockSize
	s.Playback.CurrentBlockSamples = blockSamples
	s.Playback.NextBlockOffset = dataStart + blockSize*int64(len(s.ChannelsState))

	return nil
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
