// Package aww implements the AWW (Automator Wireshark Wrapper) framing
// protocol spoken over the external dissector's stdin/stdout.
//
// A request is an 8-byte header followed by the raw message payload:
//
//	[4 bytes big-endian type code][4 bytes big-endian payload length][payload]
//
// A response is zero or more text lines terminated by a line beginning
// with the sentinel token. The sentinel line is consumed but never part
// of the returned text.
package aww

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// Sentinel is the literal token the dissector prints on a line of its own
// after each response.
const Sentinel = "===___==="

// HeaderSize is the fixed size of the request header in bytes.
const HeaderSize = 8

// EncodeRequest frames one request for the dissector. There is no padding
// and no checksum; the header is the entire wire contract.
func EncodeRequest(code uint32, payload []byte) []byte {
	buf := make([]byte, HeaderSize+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], code)
	binary.BigEndian.PutUint32(buf[4:8], uint32(len(payload)))
	copy(buf[HeaderSize:], payload)
	return buf
}

// DecodeHeader parses a request header, returning the type code and the
// declared payload length.
func DecodeHeader(data []byte) (code uint32, length uint32, err error) {
	if len(data) < HeaderSize {
		return 0, 0, fmt.Errorf("aww: header too short: %d bytes", len(data))
	}
	code = binary.BigEndian.Uint32(data[0:4])
	length = binary.BigEndian.Uint32(data[4:8])
	return code, length, nil
}

// ReadResponse drains one response from r: every line up to the sentinel,
// joined exactly as read with internal line breaks preserved. An EOF
// before the sentinel means the dissector died mid-response and is
// surfaced as an error.
func ReadResponse(r *bufio.Reader) (string, error) {
	var sb strings.Builder
	for {
		line, err := r.ReadString('\n')
		if strings.HasPrefix(line, Sentinel) {
			return sb.String(), nil
		}
		sb.WriteString(line)
		if err != nil {
			if err == io.EOF {
				return "", fmt.Errorf("aww: stream closed before sentinel: %w", io.ErrUnexpectedEOF)
			}
			return "", fmt.Errorf("aww: read response: %w", err)
		}
	}
}
