package nxinflate

import (
	"fmt"

	"github.com/klauspost/nxinflate/internal/checksum"
)

// SetDictionary supplies the preset dictionary a ZLIB header's FDICT bit
// requested (CodeNeedDict), the only dictionary mechanism this package
// supports (§1's Non-goals explicitly excludes arbitrary dictionary
// injection beyond ZLIB DICTID). dict's Adler-32 must match the DICTID the
// header carried.
func (s *Stream) SetDictionary(dict []byte) error {
	id := checksum.UpdateAdler32(checksum.InitAdler32, dict)
	if err := s.st.AcceptDictionary(id); err != nil {
		return fmt.Errorf("%w: %v", ErrDictionary, err)
	}
	s.st.SeedHistory(dict)
	return nil
}
