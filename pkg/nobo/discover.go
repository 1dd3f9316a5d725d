package nobo

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DiscoveryPort   = 10000
	discoveryPrefix = "__NOBOHUB__"
)

type Hub struct {
	Serial string
	IP     string
}

// Discover listens for hub broadcasts on listenAddr (normally ":10000")
// until a hub matching serial is seen or ctx is done. serial is either the
// full 12 digit serial or its last 3 digits.
func Discover(ctx context.Context, listenAddr, serial string) (Hub, error) {
	pc, err := net.ListenPacket("udp", listenAddr)
	if err != nil {
		return Hub{}, fmt.Errorf("error listening for hub broadcasts: %w", err)
	}
	defer pc.Close()
	return discover(ctx, pc, serial)
}

func discover(ctx context.Context, pc net.PacketConn, serial string) (Hub, error) {
	if len(serial) != 3 && len(serial) != 12 {
		return Hub{}, fmt.Errorf("hub serial must be 3 or 12 digits, got %q", serial)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			pc.SetReadDeadline(time.Now())
		case <-done:
		}
	}()

	buf := make([]byte, 1024)
	for {
		n, addr, err := pc.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil && errors.Is(err, os.ErrDeadlineExceeded) {
				return Hub{}, fmt.Errorf("no hub with serial %s found: %w", serial, ctx.Err())
			}
			return Hub{}, err
		}

		msg := strings.TrimSpace(string(buf[:n]))
		if !strings.HasPrefix(msg, discoveryPrefix) {
			continue
		}
		prefix := strings.TrimPrefix(msg, discoveryPrefix)
		udpAddr, ok := addr.(*net.UDPAddr)
		if !ok || len(prefix) != 9 {
			continue
		}
		logrus.WithFields(logrus.Fields{"ip": udpAddr.IP.String(), "serial": prefix}).Debug("found hub")

		full := prefix + serial
		if len(serial) == 12 {
			full = serial
		}
		if full[:9] != prefix {
			continue
		}
		return Hub{Serial: full, IP: udpAddr.IP.String()}, nil
	}
}
