package ftp

import (
	"bufio"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/RenSan888/compnetproject/pkg/gbn"
	"github.com/RenSan888/compnetproject/pkg/netio"
)

// How long the client waits for the server's OK/ERR answer to a command
const commandTimeout = 5 * time.Second

// Client drives an interactive ftp> prompt against one server.
type Client struct {
	raddr       *net.UDPAddr
	downloadDir string
	transfer    gbn.Config
}

func NewClient(
	raddr *net.UDPAddr,
	downloadDir string,
	transfer gbn.Config,
) Client {
	return Client{
		raddr,
		downloadDir,
		transfer,
	}
}

func (cl *Client) Run() {
	// Unconnected socket on an ephemeral port; the transfer frames and
	// the command plane share it, the protocol filters by peer address.
	conn, err := net.ListenUDP("udp", nil)

	if err != nil {
		log.Printf("Error opening UDP socket: %s\n", err)
		return
	}

	defer conn.Close()

	ch := netio.NewUDPChannel(conn)
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("ftp> ")

		if !scanner.Scan() {
			return
		}

		verb, arg := parseCommand(scanner.Text())

		switch verb {
		case CmdPut:
			if arg == "" {
				fmt.Println("usage: PUT <filename>")
				continue
			}
			if err := cl.Upload(ch, arg); err != nil {
				fmt.Printf("Upload failed: %s\n", err)
			}

		case CmdGet:
			if arg == "" {
				fmt.Println("usage: GET <filename>")
				continue
			}
			if err := cl.Download(ch, arg); err != nil {
				fmt.Printf("Download failed: %s\n", err)
			}

		case CmdList:
			if err := cl.List(ch); err != nil {
				fmt.Printf("List failed: %s\n", err)
			}

		case "exit", "quit":
			fmt.Println("Goodbye")
			return

		case "":
			// Empty line

		default:
			fmt.Println("commands: PUT <file>, GET <file>, LIST, exit")
		}
	}
}

// Upload pushes a local file to the server under its base name.
func (cl *Client) Upload(ch gbn.Channel, name string) error {
	chunks, err := chunkFile(name, cl.transfer.ChunkSize)

	if err != nil {
		return err
	}

	if _, err := cl.command(ch, CmdPut+" "+safeName(name)); err != nil {
		return err
	}

	snd := gbn.NewSender(cl.transfer, ch, cl.raddr)

	if err := snd.Send(chunks); err != nil {
		return err
	}

	fmt.Println("Upload complete.")
	return nil
}

// Download fetches a server file into the download directory.
func (cl *Client) Download(ch gbn.Channel, name string) error {
	if _, err := cl.command(ch, CmdGet+" "+safeName(name)); err != nil {
		return err
	}

	path := filepath.Join(cl.downloadDir, safeName(name))
	f, err := os.Create(path)

	if err != nil {
		return errors.Wrapf(err, "create %q", path)
	}

	defer f.Close()

	recv := gbn.NewReceiver(cl.transfer, ch, cl.raddr)

	if err := recv.Receive(f); err != nil {
		return err
	}

	fmt.Println("Download complete.")
	return nil
}

// List prints the server's directory listing.
func (cl *Client) List(ch gbn.Channel) error {
	resp, err := cl.command(ch, CmdList)

	if err != nil {
		return err
	}

	listing := strings.TrimPrefix(resp, respOk)
	fmt.Println(strings.TrimSpace(listing))
	return nil
}

// command sends one text command and waits for the server's answer.
// Anything not starting with OK is a refusal.
func (cl *Client) command(ch gbn.Channel, cmd string) (string, error) {
	if err := ch.Send([]byte(cmd), cl.raddr); err != nil {
		return "", errors.Wrapf(err, "send command %q", cmd)
	}

	data, _, err := ch.Recv(2048, commandTimeout)

	if err != nil {
		return "", errors.Wrap(err, "await server response")
	}

	resp := string(data)

	if !strings.HasPrefix(resp, respOk) {
		return "", errors.Errorf("server refused: %s", resp)
	}

	return resp, nil
}
