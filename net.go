package main

import (
	"bufio"
	"fmt"
	"net"
	"time"

	"mockircd.dev/server/internal/ircwire"
)

// Conn wraps a client's TCP (or TLS) connection with read/write deadlines and
// IRC message framing.
type Conn struct {
	conn net.Conn
	rw   *bufio.ReadWriter

	ioWait time.Duration

	IP net.IP
}

// NewConn initializes a Conn from an accepted connection.
func NewConn(conn net.Conn, ioWait time.Duration) Conn {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	var ip net.IP
	if err == nil {
		ip = net.ParseIP(host)
	}

	return Conn{
		conn:   conn,
		rw:     bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn)),
		ioWait: ioWait,
		IP:     ip,
	}
}

// Close closes the underlying connection.
func (c Conn) Close() error {
	return c.conn.Close()
}

// RemoteAddr returns the remote network address.
func (c Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// ReadMessage reads lines from the connection until one decodes as an IRC
// protocol message and returns it. A line that fails to parse (including one
// longer than ircwire.MaxLineLength) is discarded silently; only read errors
// are returned.
func (c Conn) ReadMessage() (ircwire.Message, error) {
	for {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.ioWait)); err != nil {
			return ircwire.Message{}, fmt.Errorf("unable to set read deadline: %s", err)
		}

		line, err := c.rw.ReadString('\n')
		if err != nil {
			return ircwire.Message{}, err
		}

		message, err := ircwire.ParseMessage(line)
		if err != nil {
			continue
		}
		return message, nil
	}
}

// WriteMessage encodes and writes an IRC protocol message to the connection.
func (c Conn) WriteMessage(m ircwire.Message) error {
	buf, err := m.Encode()
	if err != nil {
		return fmt.Errorf("unable to encode message: %s", err)
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.ioWait)); err != nil {
		return fmt.Errorf("unable to set write deadline: %s", err)
	}

	sz, err := c.rw.WriteString(buf)
	if err != nil {
		return err
	}
	if sz != len(buf) {
		return fmt.Errorf("short write")
	}

	return c.rw.Flush()
}
