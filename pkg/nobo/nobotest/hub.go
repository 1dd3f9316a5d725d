// Package nobotest provides an in-process hub that speaks enough of the
// Nobø Ecohub protocol for tests.
package nobotest

import (
	"bufio"
	"net"
	"strings"
	"sync"

	"github.com/nergy-se/tibbernobo/pkg/nobo"
)

type WeekProfile struct {
	ID      string
	Name    string
	Profile []string
}

type Hub struct {
	serial        string
	rejectCode    string
	chatter       []string
	errorOnUpdate bool

	listener net.Listener
	commands []string
	profiles []WeekProfile
	conns    int
	mutex    sync.Mutex
	wg       sync.WaitGroup
}

func New(serial string) (*Hub, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	h := &Hub{
		serial:   serial,
		listener: l,
	}
	h.wg.Add(1)
	go h.serve()
	return h, nil
}

func (h *Hub) Addr() string {
	return h.listener.Addr().String()
}

func (h *Hub) Close() error {
	err := h.listener.Close()
	h.wg.Wait()
	return err
}

// SetRejectCode makes the hub answer HELLO with REJECT <code>.
func (h *Hub) SetRejectCode(code string) {
	h.mutex.Lock()
	h.rejectCode = code
	h.mutex.Unlock()
}

// SetChatter sets lines sent before each week profile confirmation.
func (h *Hub) SetChatter(lines ...string) {
	h.mutex.Lock()
	h.chatter = lines
	h.mutex.Unlock()
}

// SetErrorOnUpdate makes the hub answer U02 with E00.
func (h *Hub) SetErrorOnUpdate(b bool) {
	h.mutex.Lock()
	h.errorOnUpdate = b
	h.mutex.Unlock()
}

// Commands returns every line received, in order.
func (h *Hub) Commands() []string {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return append([]string(nil), h.commands...)
}

func (h *Hub) WeekProfiles() []WeekProfile {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return append([]WeekProfile(nil), h.profiles...)
}

// Connections returns how many connections have been closed by clients.
func (h *Hub) Connections() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.conns
}

func (h *Hub) serve() {
	defer h.wg.Done()
	for {
		conn, err := h.listener.Accept()
		if err != nil {
			return
		}
		h.wg.Add(1)
		go h.handle(conn)
	}
}

func (h *Hub) handle(conn net.Conn) {
	defer h.wg.Done()
	defer func() {
		conn.Close()
		h.mutex.Lock()
		h.conns++
		h.mutex.Unlock()
	}()

	reader := bufio.NewReader(conn)
	write := func(line string) bool {
		_, err := conn.Write([]byte(line + "\r"))
		return err == nil
	}

	for {
		line, err := reader.ReadString('\r')
		if err != nil {
			return
		}
		line = strings.TrimSuffix(line, "\r")
		h.mutex.Lock()
		h.commands = append(h.commands, line)
		h.mutex.Unlock()

		h.mutex.Lock()
		rejectCode, chatter, errorOnUpdate := h.rejectCode, h.chatter, h.errorOnUpdate
		h.mutex.Unlock()

		args := strings.Split(line, " ")
		switch args[0] {
		case "HELLO":
			if rejectCode != "" {
				write("REJECT " + rejectCode)
				return
			}
			if len(args) < 3 || args[2] != h.serial {
				write("REJECT 2")
				return
			}
			write("HELLO " + nobo.APIVersion)
		case "HANDSHAKE":
			write("HANDSHAKE")
		case "U02":
			for _, c := range chatter {
				write(c)
			}
			if errorOnUpdate || len(args) != 4 {
				write("E00 U02")
				continue
			}
			h.mutex.Lock()
			h.profiles = append(h.profiles, WeekProfile{
				ID:      args[1],
				Name:    nobo.DecodeName(args[2]),
				Profile: strings.Split(args[3], ","),
			})
			h.mutex.Unlock()
			write("V02 " + strings.Join(args[1:], " "))
		}
	}
}
