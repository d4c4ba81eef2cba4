// Package ircwire implements encoding and decoding of IRC protocol messages
// as described in RFC 1459/2812 section 2.3.1.
package ircwire

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MaxLineLength is the maximum protocol message line length, including
	// the trailing CRLF.
	MaxLineLength = 512

	// ReplyWelcome is the RPL_WELCOME numeric.
	ReplyWelcome = "001"
)

// ErrLineTooLong is returned by ParseMessage when a line (including CRLF)
// exceeds MaxLineLength. Unlike a truncate-and-warn strategy, the caller
// must treat this as a hard parse failure and discard the line.
var ErrLineTooLong = errors.New("line exceeds maximum protocol length")

var errEmptyParam = errors.New("parameter with zero characters")

// Message holds a protocol message.
type Message struct {
	// Prefix may be blank. It's optional.
	Prefix string

	// Command is the IRC command, e.g. PRIVMSG. May be a 3-digit numeric.
	Command string

	// There are at most 15 parameters. The last parameter is the "trailing"
	// parameter if it was introduced with ':' or contains a space.
	Params []string
}

func (m Message) String() string {
	return fmt.Sprintf("Prefix [%s] Command [%s] Params%q", m.Prefix, m.Command, m.Params)
}

// SourceNick retrieves the nickname portion of the prefix, if any.
func (m Message) SourceNick() string {
	idx := strings.Index(m.Prefix, "!")
	if idx == -1 {
		return ""
	}
	return m.Prefix[:idx]
}
