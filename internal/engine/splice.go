package engine

// spliceOut is the C6 Output Splicer: deliver whatever fifoOut backlog
// exists into the caller's buffer, then compact the buffer pair so it
// never grows past the trailing window plus one job's worth of backlog
// (§4.7's three overflow cases all reduce to "copy what fits, keep the
// rest, compact").
func (s *State) spliceOut(out []byte) int {
	n := s.deliver(out)
	s.compact()
	return n
}
