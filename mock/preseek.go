package mock

import "github.com/ebarkan/edgarseg"

var _ edgarseg.PreSeeker = (*PreSeeker)(nil)

// PreSeeker is a mock implementation of edgarseg.PreSeeker.
type PreSeeker struct {
	SeekFn func(text string, form edgarseg.FormType, item edgarseg.Item) (edgarseg.Anchor, bool)
}

func (s *PreSeeker) Seek(text string, form edgarseg.FormType, item edgarseg.Item) (edgarseg.Anchor, bool) {
	return s.SeekFn(text, form, item)
}
