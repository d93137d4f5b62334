package packet

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/pkg/errors"
)

// Frame flags
const (
	DATA uint16 = 0
	ACK  uint16 = 1
	EOT  uint16 = 0xFF
)

// Header past the checksum: Seq(4) + Ack(4) + Flag(2) + PayloadSize(2)
const HEADER int = 4 + 4 + 2 + 2

// Checksum(4) + header, the bytes every frame carries before its payload
const OVERHEAD int = 4 + HEADER

// Default ceiling for a single payload. The length field itself allows
// more; this is the chunk size the callers use unless configured.
const PAYLOAD int = 1024

var ErrMalformed = errors.New("malformed frame")

type Packet struct {
	Seq     uint32
	Ack     uint32
	Flag    uint16
	Payload []byte
}

func NewPacket(seq, ack uint32, flag uint16, payload []byte) Packet {
	payloadCopy := make([]byte, 0, len(payload))
	payloadCopy = append(payloadCopy, payload...)

	return Packet{
		seq,
		ack,
		flag,
		payloadCopy,
	}
}

func NewDataPacket(seq uint32, payload []byte) Packet {
	return NewPacket(seq, 0, DATA, payload)
}

func NewAckPacket(ack uint32) Packet {
	return NewPacket(0, ack, ACK, nil)
}

func NewEotPacket(seq uint32) Packet {
	return NewPacket(seq, 0, EOT, nil)
}

// Recognized reports whether the flag is one of the three known tags.
// Parsing leaves unknown flags alone, callers filter with this.
func Recognized(flag uint16) bool {
	return flag == DATA || flag == ACK || flag == EOT
}

func (pkt Packet) AsBytes() []byte {
	body := make([]byte, 0, HEADER+len(pkt.Payload))

	// Seq
	body, _ = binary.Append(body, binary.BigEndian, pkt.Seq)

	// Ack
	body, _ = binary.Append(body, binary.BigEndian, pkt.Ack)

	// Flag
	body, _ = binary.Append(body, binary.BigEndian, pkt.Flag)

	// Payload
	body, _ = binary.Append(body, binary.BigEndian, uint16(len(pkt.Payload)))
	body = append(body, pkt.Payload...)

	// Checksum goes first on the wire and covers everything after itself
	data := make([]byte, 0, 4+len(body))
	data, _ = binary.Append(data, binary.BigEndian, crc32.ChecksumIEEE(body))
	data = append(data, body...)

	return data
}

func ParsePacket(data []byte) (Packet, error) {
	if len(data) < OVERHEAD {
		return Packet{}, errors.Wrapf(
			ErrMalformed,
			"short frame: got %v bytes, want at least %v",
			len(data),
			OVERHEAD,
		)
	}

	payloadSize := int(binary.BigEndian.Uint16(data[14:16]))

	if len(data[16:]) != payloadSize {
		return Packet{}, errors.Wrapf(
			ErrMalformed,
			"payload size mismatch: header says %v, trailing bytes %v",
			payloadSize,
			len(data[16:]),
		)
	}

	wantSum := binary.BigEndian.Uint32(data[0:4])
	gotSum := crc32.ChecksumIEEE(data[4:])

	if wantSum != gotSum {
		return Packet{}, errors.Wrapf(
			ErrMalformed,
			"checksum mismatch: frame says %08x, computed %08x",
			wantSum,
			gotSum,
		)
	}

	seq := binary.BigEndian.Uint32(data[4:8])
	ack := binary.BigEndian.Uint32(data[8:12])
	flag := binary.BigEndian.Uint16(data[12:14])

	payload := make([]byte, 0, payloadSize)
	payload = append(payload, data[16:]...)

	return Packet{
		seq,
		ack,
		flag,
		payload,
	}, nil
}
