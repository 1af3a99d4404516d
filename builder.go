package bufferkit

import (
	"io"
)

func ensureCapacity(buf []byte, minCap int) []byte {
	c := cap(buf)
	if minCap > c {
		if c < 16 {
			c = 16
		}
		for minCap > c {
			c <<= 1
		}
		old := buf
		buf = make([]byte, len(old), c)
		copy(buf, old)
	}
	return buf
}

func grow(buf []byte, n int) (int, []byte) {
	off := len(buf)
	newLen := off + n
	buf = ensureCapacity(buf, newLen)
	return off, buf[:newLen]
}

// Builder is an append-only byte buffer. It lets streaming encoders from
// other libraries write straight into a buffer that is being built with
// the Append functions.
type Builder struct {
	Buf []byte
}

var (
	_ io.Writer     = (*Builder)(nil)
	_ io.ByteWriter = (*Builder)(nil)
)

func (bb *Builder) Len() int {
	return len(bb.Buf)
}

func (bb *Builder) Bytes() []byte {
	return bb.Buf
}

func (bb *Builder) EnsureExtra(n int) {
	bb.Buf = ensureCapacity(bb.Buf, len(bb.Buf)+n)
}

func (bb *Builder) Grow(n int) (off int) {
	off, bb.Buf = grow(bb.Buf, n)
	return
}

func (bb *Builder) Trim(off int) {
	bb.Buf = bb.Buf[:off]
}

func (bb *Builder) Write(b []byte) (int, error) {
	off := bb.Grow(len(b))
	copy(bb.Buf[off:], b)
	return len(b), nil
}

func (bb *Builder) WriteByte(v byte) error {
	off := bb.Grow(1)
	bb.Buf[off] = v
	return nil
}

func (bb *Builder) WriteString(s string) (int, error) {
	off := bb.Grow(len(s))
	copy(bb.Buf[off:], s)
	return len(s), nil
}
