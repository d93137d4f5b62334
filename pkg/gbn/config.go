package gbn

import (
	"time"

	"github.com/RenSan888/compnetproject/pkg/packet"
)

const (
	DefaultWindowSize        = 5
	DefaultChunkSize         = packet.PAYLOAD
	DefaultRetransmitTimeout = 1 * time.Second
	DefaultIdleTimeout       = 3 * time.Second
)

// How long the ack listener parks on the channel before re-checking
// whether the session ended, and how often a full window is re-polled.
const (
	ackPollTimeout     = 200 * time.Millisecond
	windowPollInterval = 10 * time.Millisecond
)

type Config struct {
	// Outstanding frames allowed at once
	WindowSize int

	// Payload bytes per DATA frame
	ChunkSize int

	// Oldest-frame timer; expiry resends the whole window
	RetransmitTimeout time.Duration

	// Receiver aborts after this long without a processed frame
	IdleTimeout time.Duration

	// Consecutive expirations with no window movement before the
	// sender gives up. Zero keeps retrying forever.
	MaxRetries int
}

func (cfg Config) WithDefaults() Config {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = DefaultWindowSize
	}

	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}

	if cfg.RetransmitTimeout <= 0 {
		cfg.RetransmitTimeout = DefaultRetransmitTimeout
	}

	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}

	return cfg
}
