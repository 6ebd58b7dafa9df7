package engine

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func newBufferTestState(windowMax int) *State {
	s := newTestState(WrapRaw)
	s.Cfg.WindowMax = windowMax
	return s
}

func TestDeliverAndPendingOut(t *testing.T) {
	s := newBufferTestState(16)
	dst := s.reserveOutputSpace(8)
	copy(dst, []byte("abcdefgh"))
	s.commitProduced(8)

	require.Equal(t, 8, s.pendingOut())

	out := make([]byte, 3)
	n := s.deliver(out)
	require.Equal(t, 3, n)
	require.Equal(t, "abc", string(out))
	require.Equal(t, 5, s.pendingOut())

	out2 := make([]byte, 10)
	n2 := s.deliver(out2)
	require.Equal(t, 5, n2)
	require.Equal(t, "defgh", string(out2[:n2]))
	require.Equal(t, 0, s.pendingOut())
}

func TestCompactDropsOnlyDeliveredAndStale(t *testing.T) {
	s := newBufferTestState(4)
	dst := s.reserveOutputSpace(10)
	copy(dst, []byte("0123456789"))
	s.commitProduced(10)

	// Deliver all of it, so every byte is a compaction candidate except
	// the trailing WindowMax=4 bytes that must remain for history.
	out := make([]byte, 10)
	s.deliver(out)
	require.Equal(t, "0123456789", string(out))

	s.compact()
	require.Equal(t, []byte("6789"), s.historyWindow())
	require.Equal(t, 4, s.fifoOutLen)
	require.Equal(t, 4, s.outDelivered)
}

func TestCompactNeverDropsUndeliveredBytes(t *testing.T) {
	s := newBufferTestState(2)
	dst := s.reserveOutputSpace(10)
	copy(dst, []byte("0123456789"))
	s.commitProduced(10)

	out := make([]byte, 3)
	s.deliver(out) // delivered = 3, undelivered tail is "3456789"

	s.compact()
	// safeToDrop = min(fifoOutLen-WindowMax, outDelivered) = min(8, 3) = 3;
	// all 3 dropped bytes were delivered, so outDelivered falls to 0.
	require.Equal(t, 0, s.outDelivered)
	require.Equal(t, 7, s.fifoOutLen)
	require.Equal(t, "3456789", string(s.fifoOut[:s.fifoOutLen]))
}

func TestHistoryWindowClampsToAvailable(t *testing.T) {
	s := newBufferTestState(32)
	dst := s.reserveOutputSpace(5)
	copy(dst, []byte("abcde"))
	s.commitProduced(5)

	require.Equal(t, []byte("abcde"), s.historyWindow())
}

func TestSeedHistoryMarksDictionaryAsDelivered(t *testing.T) {
	s := newBufferTestState(32)
	dict := []byte("preset dictionary bytes")
	s.SeedHistory(dict)

	require.Equal(t, 0, s.pendingOut())
	require.Equal(t, dict, s.historyWindow())

	out := make([]byte, 4)
	n := s.deliver(out)
	require.Equal(t, 0, n, "dictionary bytes must never be handed to a caller")
}

func TestStageInputSmallChunksCoalesce(t *testing.T) {
	s := newBufferTestState(32)
	s.Cfg.SoftCopyThreshold = 1 << 20

	src, staged := s.stageInput([]byte("ab"))
	require.True(t, staged)
	require.Equal(t, []byte("ab"), src)

	src2, staged2 := s.stageInput([]byte("cd"))
	require.True(t, staged2)
	require.Equal(t, []byte("abcd"), src2)

	s.consumeStaged(staged2, 3)
	require.Equal(t, 1, s.fifoInLen)
	require.Equal(t, "d", string(s.fifoIn[:s.fifoInLen]))
}

func TestStageInputLargeChunkPassesThrough(t *testing.T) {
	s := newBufferTestState(32)
	s.Cfg.SoftCopyThreshold = 4

	big := bytes.Repeat([]byte("x"), 16)
	src, staged := s.stageInput(big)
	require.False(t, staged)
	require.Equal(t, big, src)
}
