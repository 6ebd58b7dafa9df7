package accel

import (
	"testing"

	"github.com/klauspost/nxinflate/internal/refencode"
	"github.com/stretchr/testify/require"
)

func TestSubmitSingleJobWholeStream(t *testing.T) {
	payload := []byte("this is a small payload, compressed and decompressed in one accelerator job")
	enc, err := refencode.Raw(payload, 6)
	require.NoError(t, err)

	h, err := Open(-1)
	require.NoError(t, err)
	defer h.Close()

	src := &DDL{}
	src.Append(enc)
	dst := &DDL{}
	dst.Append(make([]byte, len(payload)*2))

	job := &Job{
		Src: src,
		Dst: dst,
		CRB: &CRB{FuncCode: FuncDecompress},
		CPB: &CPB{InCRC: 0, InAdler: 1},
	}

	code, err := h.Submit(job)
	require.NoError(t, err)
	require.Equal(t, CodeDataLength, code)
	require.True(t, IsTerminalSFBT(job.CPB.OutSFBT), "expected terminal SFBT, got %#b", job.CPB.OutSFBT)
	require.Equal(t, payload, dst.Entries[0].Data[:job.CRB.CSB.TPBC])
}

func TestSubmitResumesAcrossSplitJobs(t *testing.T) {
	payload := make([]byte, 4000)
	for i := range payload {
		payload[i] = byte(i % 17)
	}
	enc, err := refencode.Raw(payload, 6)
	require.NoError(t, err)

	h, err := Open(-1)
	require.NoError(t, err)
	defer h.Close()

	var out []byte
	var history []byte
	var cpb *CPB
	pos := 0
	const chunk = 97
	const maxIterations = 1000

	for iter := 0; ; iter++ {
		require.Less(t, iter, maxIterations, "did not reach the terminal SFBT in a bounded number of jobs")
		end := pos + chunk
		if end > len(enc) {
			end = len(enc)
		}
		src := &DDL{}
		src.Append(history)
		src.Append(enc[pos:end])
		src.SetAdvertised(len(history) + (end - pos))

		dst := &DDL{}
		dst.Append(make([]byte, 4096))

		crb := &CRB{FuncCode: FuncDecompress}
		newCPB := &CPB{InHistLen: uint32(len(history))}
		if cpb != nil {
			crb.FuncCode = FuncDecompressResume
			newCPB.InSUBC = cpb.OutSUBC
			newCPB.InSFBT = cpb.OutSFBT
			newCPB.InRemByteCnt = cpb.OutRemByteCnt
			newCPB.InDHT = cpb.OutDHT
			newCPB.InDHTLen = cpb.OutDHTLen
			newCPB.InCRC = cpb.OutCRC
			newCPB.InAdler = cpb.OutAdler
		} else {
			newCPB.InAdler = 1
		}

		job := &Job{Src: src, Dst: dst, CRB: crb, CPB: newCPB}
		code, err := h.Submit(job)
		require.NoError(t, err)
		require.Equal(t, CodeDataLength, code)

		produced := dst.Entries[0].Data[:job.CRB.CSB.TPBC]
		out = append(out, produced...)

		history = append(history, produced...)
		if len(history) > (1 << 15) {
			history = history[len(history)-(1<<15):]
		}

		pos = end
		cpb = job.CPB

		if IsTerminalSFBT(job.CPB.OutSFBT) {
			break
		}
		// The trailing byte(s) holding OutSUBC unprocessed bits must be
		// re-fed to the next job rather than treated as consumed.
		pos -= (int(cpb.OutSUBC) + 7) / 8
		require.Less(t, pos, len(enc)+1, "ran out of input before reaching the terminal SFBT")
	}

	require.Equal(t, payload, out)
}
