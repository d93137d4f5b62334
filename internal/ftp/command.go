package ftp

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Command plane verbs. Plain text datagrams on the same socket the
// transfer frames use, exchanged before any window opens.
const (
	CmdPut  = "PUT"
	CmdGet  = "GET"
	CmdList = "LIST"
)

const (
	respOk  = "OK"
	respErr = "ERR"
)

// parseCommand splits one command datagram into its verb and argument.
// The verb comes back empty for blank input.
func parseCommand(text string) (string, string) {
	fields := strings.Fields(strings.TrimSpace(text))

	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], fields[1]
	}
}

// safeName strips any path components a peer smuggled into a filename,
// so transfers never escape the configured directory.
func safeName(name string) string {
	return filepath.Base(filepath.Clean(name))
}

// chunkFile loads a file and slices it into payload-sized chunks. The
// whole message is buffered before a transfer begins; an empty file
// yields no chunks and the transfer is just the terminator.
func chunkFile(path string, size int) ([][]byte, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, errors.Wrapf(err, "read %q", path)
	}

	chunks := make([][]byte, 0, len(data)/size+1)

	for len(data) > 0 {
		n := min(len(data), size)
		chunks = append(chunks, data[:n])
		data = data[n:]
	}

	return chunks, nil
}
