package netio

import (
	"net"
	"time"

	"github.com/pkg/errors"

	"github.com/RenSan888/compnetproject/pkg/gbn"
)

// Generic function that writes all data over a datagram socket
func writeAll(writeFunc func([]byte) (int, error), data []byte) error {
	written := 0
	stop := len(data)

	for written < stop {
		n, err := writeFunc(data[written:])

		if err != nil {
			return err
		}

		written += n
	}

	return nil
}

// Write all the data to the given UDP addr
func WriteUDPAddr(conn *net.UDPConn, addr *net.UDPAddr, data []byte) error {
	writeFunc := func(b []byte) (int, error) {
		return conn.WriteToUDP(b, addr)
	}

	return writeAll(writeFunc, data)
}

// UDPChannel adapts an unconnected UDP socket to the datagram channel
// the protocol core runs over.
type UDPChannel struct {
	conn *net.UDPConn
}

func NewUDPChannel(conn *net.UDPConn) *UDPChannel {
	return &UDPChannel{conn}
}

func (uc *UDPChannel) Send(data []byte, addr net.Addr) error {
	udpAddr, ok := addr.(*net.UDPAddr)

	if !ok {
		return errors.Errorf("want a *net.UDPAddr, got %T", addr)
	}

	return WriteUDPAddr(uc.conn, udpAddr, data)
}

func (uc *UDPChannel) Recv(
	maxSize int,
	timeout time.Duration,
) ([]byte, net.Addr, error) {
	if err := uc.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, nil, errors.Wrap(err, "set read deadline")
	}

	buf := make([]byte, maxSize)
	n, raddr, err := uc.conn.ReadFromUDP(buf)

	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, nil, gbn.ErrDeadline
		}

		return nil, nil, err
	}

	// Needs to deep copy, callers hold the slice across reads
	data := make([]byte, 0, n)
	data = append(data, buf[:n]...)

	return data, raddr, nil
}
