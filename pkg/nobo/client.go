package nobo

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	Port       = 27779
	APIVersion = "1.1"

	cmdHello             = "HELLO"
	cmdReject            = "REJECT"
	cmdHandshake         = "HANDSHAKE"
	cmdUpdateWeekProfile = "U02"
	respWeekProfile      = "V02"
	respError            = "E00"

	nbsp = "\u00a0"
)

// defaultTimeout bounds every exchange with the hub when ctx has no deadline.
var defaultTimeout = 10 * time.Second

var ErrClosed = errors.New("hub connection closed")

type RejectError struct {
	Code string
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("hub rejected connection with code %s", e.Code)
}

// Client is a connection to one Nobø Ecohub.
type Client struct {
	conn   net.Conn
	reader *bufio.Reader
	serial string
	mutex  sync.Mutex
}

// Dial connects to the hub at addr and performs the HELLO/HANDSHAKE exchange.
// addr may omit the port.
func Dial(ctx context.Context, addr, serial string) (*Client, error) {
	if len(serial) != 12 {
		return nil, fmt.Errorf("hub serial must be 12 digits, got %q", serial)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, strconv.Itoa(Port))
	}

	d := &net.Dialer{Timeout: defaultTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("error connecting to hub %s: %w", addr, err)
	}

	c := &Client{
		conn:   conn,
		reader: bufio.NewReader(conn),
		serial: serial,
	}
	err = c.handshake(ctx)
	if err != nil {
		conn.Close()
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"addr": addr, "serial": serial}).Info("connected to hub")
	return c, nil
}

func (c *Client) handshake(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	defer c.interruptOnDone(ctx)()
	deadline := c.deadline(ctx)

	err := c.send(deadline, cmdHello, APIVersion, c.serial, time.Now().Format("20060102150405"))
	if err != nil {
		return err
	}
	resp, err := c.receive(ctx, deadline)
	if err != nil {
		return err
	}
	switch resp[0] {
	case cmdHello:
	case cmdReject:
		code := ""
		if len(resp) > 1 {
			code = resp[1]
		}
		return &RejectError{Code: code}
	default:
		return fmt.Errorf("unexpected hub response to %s: %s", cmdHello, strings.Join(resp, " "))
	}

	err = c.send(deadline, cmdHandshake)
	if err != nil {
		return err
	}
	resp, err = c.receive(ctx, deadline)
	if err != nil {
		return err
	}
	if resp[0] != cmdHandshake {
		return fmt.Errorf("unexpected hub response to %s: %s", cmdHandshake, strings.Join(resp, " "))
	}
	return nil
}

// UpdateWeekProfile replaces the name and profile of an existing week
// profile and waits for the hub to confirm it.
func (c *Client) UpdateWeekProfile(ctx context.Context, id, name string, profile []string) error {
	if id == "" || name == "" {
		return fmt.Errorf("week profile id and name must be set")
	}
	err := ValidateWeekProfile(profile)
	if err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.conn == nil {
		return ErrClosed
	}
	defer c.interruptOnDone(ctx)()

	// one deadline for the whole exchange so hub chatter cannot extend it
	deadline := c.deadline(ctx)
	err = c.send(deadline, cmdUpdateWeekProfile, id, encodeName(name), strings.Join(profile, ","))
	if err != nil {
		return err
	}

	for {
		resp, err := c.receive(ctx, deadline)
		if err != nil {
			return fmt.Errorf("error waiting for week profile %s confirmation: %w", id, err)
		}
		switch {
		case resp[0] == respWeekProfile && len(resp) > 1 && resp[1] == id:
			logrus.WithFields(logrus.Fields{"id": id, "name": name}).Info("week profile updated")
			return nil
		case resp[0] == respError:
			return fmt.Errorf("hub refused week profile %s: %s", id, strings.Join(resp, " "))
		default:
			logrus.Debugf("nobo: skipping %s", strings.Join(resp, " "))
		}
	}
}

func (c *Client) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) deadline(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	return time.Now().Add(defaultTimeout)
}

// interruptOnDone unblocks pending reads and writes when ctx is done. The
// returned func stops watching and must be called before the mutex is released.
func (c *Client) interruptOnDone(ctx context.Context) func() {
	conn := c.conn
	stop := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
			conn.SetDeadline(time.Now())
		case <-stop:
		}
	}()
	return func() {
		close(stop)
		<-stopped
	}
}

func (c *Client) send(deadline time.Time, args ...string) error {
	if c.conn == nil {
		return ErrClosed
	}
	line := strings.Join(args, " ")
	logrus.Debugf("nobo: > %s", line)
	err := c.conn.SetWriteDeadline(deadline)
	if err != nil {
		return err
	}
	_, err = c.conn.Write([]byte(line + "\r"))
	if err != nil {
		return fmt.Errorf("error sending %s: %w", args[0], err)
	}
	return nil
}

func (c *Client) receive(ctx context.Context, deadline time.Time) ([]string, error) {
	if c.conn == nil {
		return nil, ErrClosed
	}
	err := c.conn.SetReadDeadline(deadline)
	if err != nil {
		return nil, err
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line, err := c.reader.ReadString('\r')
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("error reading from hub: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		logrus.Debugf("nobo: < %s", line)
		return strings.Split(line, " "), nil
	}
}
