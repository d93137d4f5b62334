package gbn

import (
	"log"
	"net"
	"slices"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/RenSan888/compnetproject/pkg/packet"
)

// Sender pushes an ordered list of chunks through the channel with a
// Go-Back-N window. One goroutine drives the send loop, a second one
// consumes cumulative acks; both mutate the window under one lock.
type Sender struct {
	cfg  Config
	ch   Channel
	addr net.Addr

	mu        sync.Mutex
	base      uint32
	nextSeq   uint32
	inFlight  map[uint32]packet.Packet
	timer     *time.Timer
	retries   int
	eotQueued bool
	complete  bool
	err       error
}

func NewSender(cfg Config, ch Channel, addr net.Addr) *Sender {
	return &Sender{
		cfg:      cfg.WithDefaults(),
		ch:       ch,
		addr:     addr,
		inFlight: make(map[uint32]packet.Packet),
	}
}

// Send blocks until every chunk plus the EOT terminator has been
// cumulatively acknowledged, or until the transfer fails.
func (s *Sender) Send(chunks [][]byte) error {
	var wg sync.WaitGroup

	wg.Add(1)
	go s.recvAcks(&wg)

	for _, chunk := range chunks {
		if err := s.enqueue(packet.DATA, chunk); err != nil {
			wg.Wait()
			return err
		}
	}

	// The terminator takes a sequence number and rides the window
	// like any data frame.
	if err := s.enqueue(packet.EOT, nil); err != nil {
		wg.Wait()
		return err
	}

	s.mu.Lock()
	s.eotQueued = true
	queuedComplete := s.base == s.nextSeq
	if queuedComplete {
		// Everything before the flag flip was already acked
		s.complete = true
		s.stopTimerLocked()
	}
	s.mu.Unlock()

	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// enqueue admits one frame into the window, blocking while the window
// is full. Transmit, bookkeeping, and timer arming happen in one
// critical section so a concurrent ack can't observe a half state.
func (s *Sender) enqueue(flag uint16, payload []byte) error {
	for {
		s.mu.Lock()

		if s.err != nil {
			err := s.err
			s.mu.Unlock()
			return err
		}

		if s.nextSeq < s.base+uint32(s.cfg.WindowSize) {
			break
		}

		s.mu.Unlock()
		time.Sleep(windowPollInterval)
	}

	pkt := packet.NewPacket(s.nextSeq, 0, flag, payload)

	if err := s.ch.Send(pkt.AsBytes(), s.addr); err != nil {
		wrapped := errors.Wrapf(err, "send frame %v", s.nextSeq)
		s.err = wrapped
		s.stopTimerLocked()
		s.mu.Unlock()
		return wrapped
	}

	s.inFlight[s.nextSeq] = pkt

	// The timer always tracks the oldest outstanding frame, so it only
	// (re)starts when this frame became the sole occupant.
	if s.base == s.nextSeq {
		s.startTimerLocked()
	}

	s.nextSeq++
	s.mu.Unlock()

	return nil
}

func (s *Sender) recvAcks(wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		data, from, err := s.ch.Recv(2048, ackPollTimeout)

		if err != nil {
			if errors.Is(err, ErrDeadline) {
				if s.finished() {
					return
				}
				continue
			}

			s.fail(errors.Wrap(err, "recv ack"))
			return
		}

		if !sameAddr(from, s.addr) {
			continue
		}

		pkt, err := packet.ParsePacket(data)

		// Malformed frames and non-ack traffic are expected noise on
		// an unreliable channel, not errors.
		if err != nil || pkt.Flag != packet.ACK {
			continue
		}

		if s.handleAck(pkt.Ack) {
			return
		}
	}
}

// handleAck applies one cumulative acknowledgment. Returns true once
// the window has fully drained behind the queued terminator.
func (s *Sender) handleAck(ack uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Stale or duplicate ack, the window never regresses
	if ack < s.base {
		return false
	}

	if ack >= s.nextSeq {
		// Ack for a frame never sent. Anomalous but harmless.
		log.Printf(
			"gbn: ack %v outside window [%v, %v), dropped",
			ack,
			s.base,
			s.nextSeq,
		)
		return false
	}

	for seq := range s.inFlight {
		if seq <= ack {
			delete(s.inFlight, seq)
		}
	}

	s.base = ack + 1
	s.retries = 0

	if s.base == s.nextSeq {
		s.stopTimerLocked()

		// Only the terminator's ack ends the session; a window that
		// merely caught up with the send loop stays open.
		if s.eotQueued {
			s.complete = true
			return true
		}

		return false
	}

	s.startTimerLocked()
	return false
}

// timeout fires without the lock held; it re-checks the window state
// because a concurrent ack may have drained it first.
func (s *Sender) timeout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.inFlight) == 0 || s.err != nil || s.complete {
		return
	}

	if s.cfg.MaxRetries > 0 {
		s.retries++
		if s.retries > s.cfg.MaxRetries {
			s.err = ErrPeerUnresponsive
			s.stopTimerLocked()
			return
		}
	}

	log.Printf(
		"gbn: timeout, resending %v frame(s) from %v",
		len(s.inFlight),
		s.base,
	)

	for _, seq := range s.outstandingLocked() {
		pkt := s.inFlight[seq]

		if err := s.ch.Send(pkt.AsBytes(), s.addr); err != nil {
			s.err = errors.Wrapf(err, "resend frame %v", seq)
			s.stopTimerLocked()
			return
		}
	}

	s.startTimerLocked()
}

// outstandingLocked lists the in-flight sequences in ascending order.
func (s *Sender) outstandingLocked() []uint32 {
	seqs := make([]uint32, 0, len(s.inFlight))

	for seq := range s.inFlight {
		seqs = append(seqs, seq)
	}

	slices.Sort(seqs)
	return seqs
}

func (s *Sender) startTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}

	s.timer = time.AfterFunc(s.cfg.RetransmitTimeout, s.timeout)
}

func (s *Sender) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Sender) finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.complete || s.err != nil
}

func (s *Sender) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err == nil {
		s.err = err
	}

	s.stopTimerLocked()
}
