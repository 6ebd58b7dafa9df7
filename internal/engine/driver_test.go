package engine

import (
	"testing"

	"github.com/klauspost/nxinflate/internal/accel"
	"github.com/klauspost/nxinflate/internal/refencode"
	"github.com/klauspost/nxinflate/internal/stats"
	"github.com/stretchr/testify/require"
)

func newDriverTestState(t *testing.T, h *accel.Handle) *State {
	t.Helper()
	return NewState(WrapRaw, newTestState(WrapRaw).Cfg, h, &stats.Collector{})
}

func TestRunJobSucceedsOnFirstAttempt(t *testing.T) {
	payload := []byte("a payload big enough to exercise one accelerator job cleanly")
	enc, err := refencode.Raw(payload, 6)
	require.NoError(t, err)

	h, err := accel.Open(-1)
	require.NoError(t, err)
	defer h.Close()

	s := newDriverTestState(t, h)
	bj := s.buildJob(enc, len(payload)+16)
	// Advertise the whole encoded stream: the seed 10:1 ratio would
	// otherwise throttle the job to a few source bytes.
	bj.srcAdvert = len(enc)
	bj.job.Src.SetAdvertised(len(enc))

	outcome, err := s.runJob(bj, 0)
	require.NoError(t, err)
	require.True(t, outcome.streamEnd)
	require.Equal(t, len(payload), outcome.produced)
}

func TestRunJobRetriesThroughTranslationFaults(t *testing.T) {
	payload := []byte("another payload decoded after two simulated translation faults")
	enc, err := refencode.Raw(payload, 6)
	require.NoError(t, err)

	h, err := accel.Open(-1)
	require.NoError(t, err)
	defer h.Close()
	h.InjectTranslationFaults = 2

	s := newDriverTestState(t, h)
	bj := s.buildJob(enc, len(payload)+16)
	// Advertise the whole encoded stream: the seed 10:1 ratio would
	// otherwise throttle the job to a few source bytes.
	bj.srcAdvert = len(enc)
	bj.job.Src.SetAdvertised(len(enc))

	outcome, err := s.runJob(bj, 0)
	require.NoError(t, err)
	require.True(t, outcome.streamEnd)
	require.Equal(t, len(payload), outcome.produced)
}

func TestRunJobGivesUpAfterRetryBudgetExhausted(t *testing.T) {
	payload := []byte("payload that will never decode because faults never stop")
	enc, err := refencode.Raw(payload, 6)
	require.NoError(t, err)

	h, err := accel.Open(-1)
	require.NoError(t, err)
	defer h.Close()
	h.InjectTranslationFaults = 1_000_000

	s := newDriverTestState(t, h)
	s.Cfg.RetryMax = 3
	bj := s.buildJob(enc, len(payload)+16)

	_, err = s.runJob(bj, 0)
	require.Error(t, err)
	var accErr *ErrAccelerator
	require.ErrorAs(t, err, &accErr)
	require.Equal(t, accel.CodeTranslation, accErr.Code)
}

func TestRunJobShrinksSourceOnTargetSpace(t *testing.T) {
	payload := make([]byte, 3000)
	for i := range payload {
		payload[i] = byte(i % 251)
	}
	enc, err := refencode.Raw(payload, 6)
	require.NoError(t, err)

	h, err := accel.Open(-1)
	require.NoError(t, err)
	defer h.Close()

	s := newDriverTestState(t, h)
	s.Cfg.RetryMax = 20
	// A target far smaller than the decoded payload forces at least one
	// CodeTargetSpace before shrinkSource narrows the advertised source
	// enough to fit.
	bj := s.buildJob(enc, 64)
	// Advertising the whole stream, not the few bytes the seed ratio
	// allows, is what makes the first attempt overflow the target.
	bj.srcAdvert = len(enc)
	bj.job.Src.SetAdvertised(len(enc))

	outcome, err := s.runJob(bj, 0)
	require.NoError(t, err)
	require.LessOrEqual(t, outcome.produced, 64)
	require.Greater(t, s.Stats.Snapshot().RetriesTargetSpace, uint64(0))
}

func TestShrinkSourceHalvesUntilExhausted(t *testing.T) {
	bj := &builtJob{
		srcAdvert: 8,
		job:       &accel.Job{Src: &accel.DDL{}},
	}
	bj.job.Src.Append(make([]byte, 8))

	require.True(t, bj.shrinkSource(0))
	require.Equal(t, 4, bj.srcAdvert)
	require.True(t, bj.shrinkSource(0))
	require.Equal(t, 2, bj.srcAdvert)
	require.True(t, bj.shrinkSource(0))
	require.Equal(t, 1, bj.srcAdvert)
	require.False(t, bj.shrinkSource(0))
}
