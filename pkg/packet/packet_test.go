package packet

import (
	"crypto/rand"
	mrand "math/rand"
	"slices"
	"testing"

	"github.com/pkg/errors"
)

func TestPacketRoundTrip(t *testing.T) {
	payload := make([]byte, 1+mrand.Intn(PAYLOAD))
	rand.Read(payload)

	want := NewDataPacket(42, payload)
	got, err := ParsePacket(want.AsBytes())

	if err != nil {
		t.Fatalf("Err parse packet: %s", err)
	}

	comparePackets(t, want, got)
}

func TestEotRoundTrip(t *testing.T) {
	want := NewEotPacket(7)

	if len(want.Payload) != 0 {
		t.Fatalf("EOT payload must be empty, got %v bytes", len(want.Payload))
	}

	got, err := ParsePacket(want.AsBytes())

	if err != nil {
		t.Fatalf("Err parse EOT packet: %s", err)
	}

	comparePackets(t, want, got)
}

func TestAckEncoding(t *testing.T) {
	want := NewAckPacket(13)
	got, err := ParsePacket(want.AsBytes())

	if err != nil {
		t.Fatalf("Err parse ACK packet: %s", err)
	}

	if got.Ack != 13 || got.Flag != ACK || got.Seq != 0 {
		t.Fatalf(
			"unmatched ACK fields: seq %v ack %v flag %v",
			got.Seq,
			got.Ack,
			got.Flag,
		)
	}
}

func TestEncodeFromConstructorReturn(t *testing.T) {
	// Constructors return values; encoding must work straight off the
	// return, without binding to an addressable variable first.
	got, err := ParsePacket(NewEotPacket(3).AsBytes())

	if err != nil {
		t.Fatalf("Err parse packet: %s", err)
	}

	if got.Seq != 3 || got.Flag != EOT {
		t.Fatalf("unmatched fields: seq %v flag %v", got.Seq, got.Flag)
	}
}

func TestDeterministicEncoding(t *testing.T) {
	pkt := NewDataPacket(3, []byte("AAAA"))

	if !slices.Equal(pkt.AsBytes(), pkt.AsBytes()) {
		t.Fatal("same packet encoded to different bytes")
	}
}

func TestShortFrame(t *testing.T) {
	data := NewDataPacket(0, []byte("AAAA")).AsBytes()

	for size := 0; size < OVERHEAD; size++ {
		if _, err := ParsePacket(data[:size]); !errors.Is(err, ErrMalformed) {
			t.Fatalf("short frame of %v bytes parsed, want ErrMalformed", size)
		}
	}
}

func TestTruncatedPayload(t *testing.T) {
	data := NewDataPacket(0, []byte("AAAABBBB")).AsBytes()

	// Header intact, trailing bytes no longer match the declared size
	_, err := ParsePacket(data[:len(data)-3])

	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("truncated payload parsed, want ErrMalformed, got %v", err)
	}
}

func TestBitFlipDetected(t *testing.T) {
	payload := make([]byte, 256)
	rand.Read(payload)
	data := NewDataPacket(9, payload).AsBytes()

	for i := 0; i < 200; i++ {
		corrupted := slices.Clone(data)
		pos := mrand.Intn(len(corrupted))
		corrupted[pos] ^= 1 << uint(mrand.Intn(8))

		if _, err := ParsePacket(corrupted); !errors.Is(err, ErrMalformed) {
			t.Fatalf(
				"bit flip at byte %v parsed cleanly, want ErrMalformed",
				pos,
			)
		}
	}
}

func TestUnknownFlagPassesThrough(t *testing.T) {
	pkt := NewPacket(1, 0, 0x7, []byte("AAAA"))
	got, err := ParsePacket(pkt.AsBytes())

	if err != nil {
		t.Fatalf("Err parse packet with unknown flag: %s", err)
	}

	if got.Flag != 0x7 {
		t.Fatalf("unknown flag coerced: want %v, got %v", 0x7, got.Flag)
	}

	if Recognized(got.Flag) {
		t.Fatalf("flag %v reported as recognized", got.Flag)
	}
}

func comparePackets(t *testing.T, want, got Packet) {
	t.Helper()

	if want.Seq != got.Seq {
		t.Fatalf("unmatched seq: want '%v', got '%v'", want.Seq, got.Seq)
	}

	if want.Ack != got.Ack {
		t.Fatalf("unmatched ack: want '%v', got '%v'", want.Ack, got.Ack)
	}

	if want.Flag != got.Flag {
		t.Fatalf("unmatched flag: want '%v', got '%v'", want.Flag, got.Flag)
	}

	if !slices.Equal(want.Payload, got.Payload) {
		t.Fatalf(
			"unmatched payload: want '%v', got '%v'",
			want.Payload,
			got.Payload,
		)
	}
}
