package gbn

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/RenSan888/compnetproject/pkg/packet"
)

// windowedSender builds a sender with frames base..nextSeq-1 in flight,
// the state Send would have mid-transfer.
func windowedSender(base, nextSeq uint32) *Sender {
	ch, _ := newChannelPair()
	s := NewSender(fastConfig(), ch, nil)

	s.base = base
	s.nextSeq = nextSeq

	for seq := base; seq < nextSeq; seq++ {
		s.inFlight[seq] = packet.NewDataPacket(seq, []byte("AAAA"))
	}

	return s
}

func TestCumulativeAckClearsEverythingBelow(t *testing.T) {
	s := windowedSender(0, 4)

	done := s.handleAck(2)

	require.False(t, done)
	require.Equal(t, uint32(3), s.base)
	require.Len(t, s.inFlight, 1)
	require.Contains(t, s.inFlight, uint32(3))
	require.NotNil(t, s.timer, "timer must track the remaining frame")
}

func TestStaleAckNeverRegressesWindow(t *testing.T) {
	s := windowedSender(3, 5)

	done := s.handleAck(1)

	require.False(t, done)
	require.Equal(t, uint32(3), s.base)
	require.Len(t, s.inFlight, 2)
}

func TestAckForUnsentFrameIsDropped(t *testing.T) {
	s := windowedSender(0, 2)

	done := s.handleAck(99)

	require.False(t, done)
	require.Equal(t, uint32(0), s.base)
	require.Len(t, s.inFlight, 2)
}

func TestDrainedWindowWithoutTerminatorStaysOpen(t *testing.T) {
	s := windowedSender(0, 2)

	// All outstanding frames acked, but the send loop has more coming
	done := s.handleAck(1)

	require.False(t, done)
	require.Equal(t, uint32(2), s.base)
	require.Empty(t, s.inFlight)
	require.False(t, s.complete)
	require.Nil(t, s.timer, "nothing outstanding, nothing to time")
}

func TestDrainedWindowBehindTerminatorCompletes(t *testing.T) {
	s := windowedSender(0, 3)
	s.eotQueued = true

	done := s.handleAck(2)

	require.True(t, done)
	require.Equal(t, uint32(3), s.base)
	require.Empty(t, s.inFlight)
	require.True(t, s.complete)
	require.Nil(t, s.timer)
}

func TestDuplicateAckDoesNotAdvanceTwice(t *testing.T) {
	s := windowedSender(0, 4)

	require.False(t, s.handleAck(1))
	base := s.base
	inFlight := len(s.inFlight)

	require.False(t, s.handleAck(1))
	require.Equal(t, base, s.base)
	require.Len(t, s.inFlight, inFlight)
}
