package ircwire

import (
	"fmt"
	"strings"
)

// Encode encodes the Message into a raw protocol message string terminated
// with CRLF.
//
// It returns an error if the encoded line would exceed MaxLineLength. Unlike
// a truncate-and-continue strategy, the caller must not send a truncated
// line; it should drop the message instead.
//
// It does not enforce command specific semantics.
func (m Message) Encode() (string, error) {
	s := ""

	if len(m.Prefix) > 0 {
		s += ":" + m.Prefix + " "
	}

	s += m.Command

	if len(s)+2 > MaxLineLength {
		return "", fmt.Errorf("message with only prefix/command is too long")
	}

	if len(m.Params) > 15 {
		return "", fmt.Errorf("too many parameters")
	}

	for i, param := range m.Params {
		// A colon prefix is required when: the parameter contains a space, the
		// parameter itself starts with ':', or this is the last parameter and it
		// is empty (so it remains visible on the wire).
		if idx := strings.IndexByte(param, ' '); idx != -1 ||
			(param != "" && param[0] == ':') ||
			param == "" {
			param = ":" + param

			if i+1 != len(m.Params) {
				return "", fmt.Errorf("parameter problem: ':' or ' ' outside last parameter")
			}
		}

		if len(s)+1+len(param)+2 > MaxLineLength {
			return "", fmt.Errorf("message would exceed maximum protocol length")
		}

		s += " " + param
	}

	s += "\r\n"

	return s, nil
}
