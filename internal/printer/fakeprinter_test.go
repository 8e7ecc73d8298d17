package printer

import (
	"bufio"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/muurk/printlink/internal/protocol"
)

const (
	statusResponse = "CMD M119 Received.\r\n" +
		"Endstop: X-max:0 Y-max:0 Z-max:1\r\n" +
		"MachineStatus: READY\r\n" +
		"MoveMode: READY\r\n" +
		"Status: S:1 L:0 J:0 F:0\r\n" +
		"ok\r\n"

	temperatureResponse = "CMD M105 Received.\r\nT0:210 /215 B:60/60\r\nok\r\n"

	infoResponse = "CMD M115 Received.\r\n" +
		"Machine Type: FlashForge Adventurer III\r\n" +
		"Machine Name: Workshop\r\n" +
		"Firmware: v1.1.7\r\n" +
		"SN: SNADVA1234567\r\n" +
		"X: 150 Y: 150 Z: 150\r\n" +
		"Tool Count: 1\r\n" +
		"ok\r\n"
)

// defaultResponse answers like a healthy idle printer
func defaultResponse(line string) string {
	code := strings.TrimPrefix(strings.Fields(line)[0], "~")
	switch code {
	case "M119":
		return statusResponse
	case "M105":
		return temperatureResponse
	case "M115":
		return infoResponse
	case "M28":
		return "CMD M28 Received.\r\nWriting to file: " + strings.Fields(line)[2] + "\r\nok\r\n"
	case "M29":
		return "CMD M29 Received.\r\nDone saving file.\r\nok.\r\n"
	case "M23":
		return "CMD M23 Received.\r\nFile opened: x Size: 1\r\nFile selected\r\nok\r\n"
	default:
		return "CMD " + code + " Received.\r\nok\r\n"
	}
}

// fakePrinter is a loopback TCP server speaking the printer protocol.
type fakePrinter struct {
	listener net.Listener

	// respond returns the raw response for a command line (without CRLF).
	// An empty string sends nothing.
	respond func(line string) string

	mu       sync.Mutex
	commands []string
	frames   []protocol.Frame
	conns    []net.Conn
}

func startFakePrinter(t *testing.T, respond func(line string) string) *fakePrinter {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	if respond == nil {
		respond = defaultResponse
	}

	p := &fakePrinter{listener: listener, respond: respond}
	go p.acceptLoop()

	t.Cleanup(func() {
		_ = listener.Close()
		p.mu.Lock()
		defer p.mu.Unlock()
		for _, c := range p.conns {
			_ = c.Close()
		}
	})
	return p
}

func (p *fakePrinter) Addr() string {
	return p.listener.Addr().String()
}

func (p *fakePrinter) Commands() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.commands...)
}

func (p *fakePrinter) Frames() []protocol.Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]protocol.Frame(nil), p.frames...)
}

func (p *fakePrinter) acceptLoop() {
	for {
		conn, err := p.listener.Accept()
		if err != nil {
			return
		}
		p.mu.Lock()
		p.conns = append(p.conns, conn)
		p.mu.Unlock()
		go p.serve(conn)
	}
}

func (p *fakePrinter) serve(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")

		p.mu.Lock()
		p.commands = append(p.commands, line)
		p.mu.Unlock()

		resp := p.respond(line)
		if resp != "" {
			if _, err := io.WriteString(conn, resp); err != nil {
				return
			}
		}

		if strings.HasPrefix(line, "~M28 ") && strings.HasSuffix(resp, "ok\r\n") {
			size, _ := strconv.Atoi(strings.Fields(line)[1])
			if !p.readFrames(r, protocol.FrameCount(size)) {
				return
			}
		}
	}
}

func (p *fakePrinter) readFrames(r io.Reader, count int) bool {
	for i := 0; i < count; i++ {
		buf := make([]byte, protocol.FrameSize)
		if _, err := io.ReadFull(r, buf); err != nil {
			return false
		}
		frame, err := protocol.ParseFrame(buf)
		if err != nil {
			return false
		}
		p.mu.Lock()
		p.frames = append(p.frames, frame)
		p.mu.Unlock()
	}
	return true
}
