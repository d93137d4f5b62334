package ftp

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/RenSan888/compnetproject/pkg/gbn"
	"github.com/RenSan888/compnetproject/pkg/netio"
)

// Server answers PUT/GET/LIST commands on one UDP socket and runs one
// transfer at a time, returning to command-wait afterwards.
type Server struct {
	addr     *net.UDPAddr
	rootDir  string
	transfer gbn.Config
	wg       *sync.WaitGroup
}

func NewServer(
	addr *net.UDPAddr,
	rootDir string,
	transfer gbn.Config,
	wg *sync.WaitGroup,
) Server {
	return Server{
		addr,
		rootDir,
		transfer,
		wg,
	}
}

func (sv *Server) Run() {
	conn, err := net.ListenUDP("udp", sv.addr)

	// Return if something goes wrong during binding of address
	if err != nil {
		log.Printf("Error listen on UDP %s: %s\n", sv.addr, err)
		sv.wg.Done()
		return
	}

	defer conn.Close()
	log.Printf("Server listening on UDP %s\n", sv.addr)

	ch := netio.NewUDPChannel(conn)

	for {
		data, raddr, err := ch.Recv(2048, time.Minute)

		if err != nil {
			if errors.Is(err, gbn.ErrDeadline) {
				continue
			}

			log.Printf("Error receiving command: %s\n", err)
			continue
		}

		sv.handleCommand(ch, raddr, string(data))
	}
}

func (sv *Server) handleCommand(ch gbn.Channel, raddr net.Addr, text string) {
	verb, arg := parseCommand(text)

	switch verb {
	case CmdPut:
		if arg == "" {
			sv.reply(ch, raddr, respErr+" Missing filename")
			return
		}

		sv.reply(ch, raddr, respOk)
		sv.saveFile(ch, raddr, arg)
		log.Println("Ready for next command...")

	case CmdGet:
		if arg == "" {
			sv.reply(ch, raddr, respErr+" Missing filename")
			return
		}

		sv.sendFile(ch, raddr, arg)
		log.Println("Ready for next command...")

	case CmdList:
		sv.listDir(ch, raddr)

	case "":
		// Blank datagram, nothing to answer

	default:
		// Stray transfer frames from an aborted session also land
		// here; answering them is harmless noise to the peer.
		sv.reply(ch, raddr, respErr+" Unknown command")
	}
}

func (sv *Server) saveFile(ch gbn.Channel, raddr net.Addr, name string) {
	path := sv.rootPath(name)
	log.Printf("Receiving file: %s\n", path)

	f, err := os.Create(path)

	if err != nil {
		log.Printf("Error creating %q: %s\n", path, err)
		return
	}

	defer f.Close()

	recv := gbn.NewReceiver(sv.transfer, ch, raddr)

	if err := recv.Receive(f); err != nil {
		log.Printf("Transfer of %q aborted: %s\n", name, err)
		return
	}

	log.Println("File transfer complete.")
}

func (sv *Server) sendFile(ch gbn.Channel, raddr net.Addr, name string) {
	path := sv.rootPath(name)
	chunks, err := chunkFile(path, sv.transfer.ChunkSize)

	if err != nil {
		sv.reply(ch, raddr, respErr+" File not found")
		return
	}

	sv.reply(ch, raddr, respOk)

	snd := gbn.NewSender(sv.transfer, ch, raddr)

	if err := snd.Send(chunks); err != nil {
		log.Printf("Transfer of %q failed: %s\n", name, err)
		return
	}

	log.Printf("Sent %q\n", path)
}

func (sv *Server) listDir(ch gbn.Channel, raddr net.Addr) {
	entries, err := os.ReadDir(sv.rootDir)

	if err != nil {
		sv.reply(ch, raddr, respErr+" Cannot list directory")
		return
	}

	names := make([]string, 0, len(entries))

	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}

	sort.Strings(names)
	sv.reply(ch, raddr, respOk+"\n"+strings.Join(names, "\n"))
}

func (sv *Server) rootPath(name string) string {
	return filepath.Join(sv.rootDir, safeName(name))
}

func (sv *Server) reply(ch gbn.Channel, raddr net.Addr, text string) {
	if err := ch.Send([]byte(text), raddr); err != nil {
		log.Printf("Error replying to %s: %s\n", raddr, err)
	}
}
