package gbn

import (
	"net"
	"time"

	"github.com/pkg/errors"
)

// Channel is the unreliable datagram hop the protocol runs over. The
// caller supplies it; pkg/netio has the UDP one, tests use an in-memory
// pair with scripted loss.
type Channel interface {
	Send(data []byte, addr net.Addr) error
	Recv(maxSize int, timeout time.Duration) ([]byte, net.Addr, error)
}

// ErrDeadline is what a Channel returns when Recv saw nothing within its
// timeout. Any other error from the channel is fatal for the operation.
var ErrDeadline = errors.New("recv deadline elapsed")

// ErrPeerStalled means no valid frame arrived within the inactivity
// window. Whatever reached the sink before the stall stays there.
var ErrPeerStalled = errors.New("peer stalled: no frame within the inactivity window")

// ErrPeerUnresponsive means the retransmit ceiling was hit with no
// window movement in between.
var ErrPeerUnresponsive = errors.New("peer unresponsive: retransmit ceiling reached")

// sameAddr reports whether a datagram origin matches the transfer peer.
// A nil on either side disables the filter (connected or in-memory
// channels don't carry addresses).
func sameAddr(got, want net.Addr) bool {
	if got == nil || want == nil {
		return true
	}

	return got.String() == want.String()
}
