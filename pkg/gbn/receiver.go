package gbn

import (
	"io"
	"net"
	"time"

	"github.com/pkg/errors"

	"github.com/RenSan888/compnetproject/pkg/packet"
)

// Receiver accepts frames strictly in sequence order and appends their
// payload to the sink. Single-threaded, blocking on the channel.
type Receiver struct {
	cfg  Config
	ch   Channel
	addr net.Addr
}

func NewReceiver(cfg Config, ch Channel, addr net.Addr) *Receiver {
	return &Receiver{
		cfg.WithDefaults(),
		ch,
		addr,
	}
}

// Receive runs until the terminator frame arrives in order or the peer
// goes quiet for the configured inactivity window. The sink keeps
// whatever was accepted before a stall.
func (r *Receiver) Receive(sink io.Writer) error {
	expected := uint32(0)
	lastFrame := time.Now()
	// Read buffer takes at least one full default frame regardless of
	// the local chunk setting, a peer may chunk larger.
	maxSize := max(packet.OVERHEAD+r.cfg.ChunkSize, 4096)

	for {
		// The inactivity clock runs from the last processed frame,
		// not from session start, so the deadline shrinks as we wait.
		remaining := r.cfg.IdleTimeout - time.Since(lastFrame)

		if remaining <= 0 {
			return ErrPeerStalled
		}

		data, from, err := r.ch.Recv(maxSize, remaining)

		if err != nil {
			if errors.Is(err, ErrDeadline) {
				return ErrPeerStalled
			}

			return errors.Wrap(err, "recv frame")
		}

		if !sameAddr(from, r.addr) {
			continue
		}

		pkt, err := packet.ParsePacket(data)

		// Undecodable bytes get no ack and don't feed the clock
		if err != nil || !packet.Recognized(pkt.Flag) {
			continue
		}

		lastFrame = time.Now()

		if pkt.Seq == expected {
			if pkt.Flag == packet.EOT {
				return r.sendAck(pkt.Seq)
			}

			if pkt.Flag == packet.DATA {
				if _, err := sink.Write(pkt.Payload); err != nil {
					return errors.Wrap(err, "append payload to sink")
				}
				expected++
			}
		}

		// Duplicates get re-acked with their own sequence, the lost
		// ack they imply needs repairing. Frames ahead of the cursor
		// only get the highest in-order sequence back: acking their
		// own number would let a cumulative sender slide past a lost
		// frame.
		switch {
		case pkt.Seq < expected:
			if err := r.sendAck(pkt.Seq); err != nil {
				return err
			}
		case expected > 0:
			if err := r.sendAck(expected - 1); err != nil {
				return err
			}
		}
	}
}

func (r *Receiver) sendAck(ack uint32) error {
	pkt := packet.NewAckPacket(ack)

	if err := r.ch.Send(pkt.AsBytes(), r.addr); err != nil {
		return errors.Wrapf(err, "send ack %v", ack)
	}

	return nil
}
