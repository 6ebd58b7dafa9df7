package accel

// ddlWriter writes bytes into a DDL's entries in order, reporting
// overflow instead of panicking once every entry is full — the software
// equivalent of the accelerator discovering its target descriptor list is
// too small (§4.5 TARGET_SPACE). It also mirrors every byte written into
// an internal accumulator so the checksum update in device.go can see the
// job's output as one contiguous slice regardless of how it was split
// across next_out and the fifo_out overflow tail.
type ddlWriter struct {
	entries []DDE
	ei, eo  int
	out     []byte
}

func newDDLWriter(d *DDL) *ddlWriter {
	cap := d.PhysicalLen()
	return &ddlWriter{entries: d.Entries, out: make([]byte, 0, cap)}
}

// WriteByte writes one byte, returning false if every descriptor is full.
func (w *ddlWriter) WriteByte(c byte) bool {
	for w.ei < len(w.entries) && w.eo >= len(w.entries[w.ei].Data) {
		w.ei++
		w.eo = 0
	}
	if w.ei >= len(w.entries) {
		return false
	}
	w.entries[w.ei].Data[w.eo] = c
	w.eo++
	w.out = append(w.out, c)
	return true
}

// Written returns how many bytes have been written so far.
func (w *ddlWriter) Written() int { return len(w.out) }

// Produced returns every byte written this job, in order.
func (w *ddlWriter) Produced() []byte { return w.out }
