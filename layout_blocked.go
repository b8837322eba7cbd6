package spore

// blockedDriver generalizes every "variable blocked with in-band block
// headers" layout flavour through one blockUpdater implementation per
// container. The render loop never knows which flavour it is driving.
type blockedDriver struct{}

func (blockedDriver) blockSamples(s *Stream) (int64, error) {
	if s.Playback.CurrentBlockSamples == 0 {
		if err := s.block.initBlock(s); err != nil {
			return 0, err
		}
	}

	return s.Playback.CurrentBlockSamples, nil
}

func (blockedDriver) advance(s *Stream) error {
	return s.block.nextBlock(s)
}
