// Package codec implements a ZMTP-flavored greeting and frame codec:
// given a byte stream, it produces and consumes a stream of framed
// logical messages.
package codec

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/jabolina/go-zmtp/zmtp"
)

const (
	signatureByte byte = 0xFF
	versionMajor  byte = 3
	versionMinor  byte = 0
	mechanismNULL      = "NULL"

	flagMore byte = 0x01
	flagLong byte = 0x02

	maxShortFrame = 255
)

// Greeting is the handshake payload exchanged before any application
// frames: mechanism and declared socket type.
type Greeting struct {
	SocketType zmtp.SocketType
}

// Codec reads and writes ZMTP frames/greetings over a single connection.
type Codec struct {
	r *bufio.Reader
	w *bufio.Writer
}

// New wraps a raw byte stream (e.g. a net.Conn) with the frame codec.
func New(rw io.ReadWriter) *Codec {
	return &Codec{r: bufio.NewReader(rw), w: bufio.NewWriter(rw)}
}

// WriteGreeting sends the fixed ZMTP-style greeting: a signature byte, 8
// padding bytes, protocol version, the NULL mechanism (the only one this
// library supports), an as-server flag, filler, and the declared socket
// type.
func (c *Codec) WriteGreeting(g Greeting) error {
	buf := make([]byte, 0, 64)
	buf = append(buf, signatureByte)
	buf = append(buf, make([]byte, 8)...)
	buf = append(buf, versionMajor, versionMinor)
	mech := make([]byte, 20)
	copy(mech, mechanismNULL)
	buf = append(buf, mech...)
	buf = append(buf, 0) // as-server: always false, NULL mechanism has no server role
	buf = append(buf, make([]byte, 31)...)
	buf = append(buf, byte(g.SocketType))
	if _, err := c.w.Write(buf); err != nil {
		return err
	}
	return c.w.Flush()
}

// ReadGreeting reads and validates the peer's greeting.
func (c *Codec) ReadGreeting() (Greeting, error) {
	header := make([]byte, 11)
	if _, err := io.ReadFull(c.r, header); err != nil {
		return Greeting{}, err
	}
	if header[0] != signatureByte {
		return Greeting{}, fmt.Errorf("codec: bad greeting signature %#x", header[0])
	}
	rest := make([]byte, 53)
	if _, err := io.ReadFull(c.r, rest); err != nil {
		return Greeting{}, err
	}
	socketType := rest[52]
	return Greeting{SocketType: zmtp.SocketType(socketType)}, nil
}

// WriteMessage encodes a logical multipart message: one frame per element,
// each preceded by a flags byte and a length, the last frame's flags byte
// having the more-bit clear.
func (c *Codec) WriteMessage(m zmtp.Multipart) error {
	if len(m) == 0 {
		return fmt.Errorf("codec: cannot write an empty multipart message")
	}
	for i, frame := range m {
		flags := byte(0)
		if i < len(m)-1 {
			flags |= flagMore
		}
		if len(frame) > maxShortFrame {
			flags |= flagLong
		}
		if err := c.w.WriteByte(flags); err != nil {
			return err
		}
		if flags&flagLong != 0 {
			var lenBuf [8]byte
			binary.BigEndian.PutUint64(lenBuf[:], uint64(len(frame)))
			if _, err := c.w.Write(lenBuf[:]); err != nil {
				return err
			}
		} else if err := c.w.WriteByte(byte(len(frame))); err != nil {
			return err
		}
		if _, err := c.w.Write(frame); err != nil {
			return err
		}
	}
	return c.w.Flush()
}

// ReadMessage decodes the next logical multipart message, reading frames
// until one with the more-bit clear.
func (c *Codec) ReadMessage() (zmtp.Multipart, error) {
	var msg zmtp.Multipart
	for {
		flags, err := c.r.ReadByte()
		if err != nil {
			return nil, err
		}
		var length uint64
		if flags&flagLong != 0 {
			var lenBuf [8]byte
			if _, err := io.ReadFull(c.r, lenBuf[:]); err != nil {
				return nil, err
			}
			length = binary.BigEndian.Uint64(lenBuf[:])
		} else {
			b, err := c.r.ReadByte()
			if err != nil {
				return nil, err
			}
			length = uint64(b)
		}
		frame := make([]byte, length)
		if _, err := io.ReadFull(c.r, frame); err != nil {
			return nil, err
		}
		msg = append(msg, zmtp.Frame(frame))
		if flags&flagMore == 0 {
			return msg, nil
		}
	}
}
