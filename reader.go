package bufferkit

import (
	"encoding/binary"
	"math"
	"strings"
	"time"
	"unicode/utf8"
	"unsafe"

	"github.com/google/uuid"
)

// Reader is a consumable view over encoded bytes. Every read removes the
// bytes it used from the front of the view, so decoders for nested values
// can share one Reader without tracking offsets.
//
// Errors are sticky: the first malformed input is recorded and every read
// after it returns a zero value without consuming anything. Decoders can
// therefore read all of their fields and check Err once at the end.
type Reader struct {
	// Strict rejects input that the lenient decoder would silently accept:
	// bool bytes other than 0 and 1, and strings that are not valid UTF-8.
	Strict bool

	orig []byte
	buf  []byte
	err  error
}

func NewReader(data []byte) *Reader {
	return &Reader{orig: data, buf: data}
}

// Off returns the number of bytes consumed so far.
func (r *Reader) Off() int {
	return len(r.orig) - len(r.buf)
}

// Len returns the number of unconsumed bytes.
func (r *Reader) Len() int {
	return len(r.buf)
}

// Remaining returns the unconsumed bytes without consuming them.
func (r *Reader) Remaining() []byte {
	return r.buf
}

func (r *Reader) Err() error {
	return r.err
}

// Fail records a decoding failure at the given offset unless an earlier
// one is already recorded. Record decoders call it to report values that
// are well-framed but invalid for their type.
func (r *Reader) Fail(off int, cause error, format string, args ...any) {
	if r.err != nil {
		return
	}
	r.err = dataErrf(r.orig, off, cause, format, args...)
	r.buf = nil
}

// Finish returns Err, or a trailing data error if any bytes remain.
func (r *Reader) Finish() error {
	if r.err == nil && len(r.buf) != 0 {
		r.Fail(r.Off(), ErrTrailingData, "%d unconsumed bytes", len(r.buf))
	}
	return r.err
}

// Raw consumes n bytes and returns them. The result aliases the buffer
// passed to NewReader. Returns nil if fewer than n bytes remain.
func (r *Reader) Raw(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || len(r.buf) < n {
		r.Fail(r.Off(), ErrTruncated, "%d bytes remaining, %d wanted", len(r.buf), n)
		return nil
	}
	v := r.buf[:n:n]
	r.buf = r.buf[n:]
	return v
}

func (r *Reader) Byte() byte {
	b := r.Raw(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// Bool reads one byte. 0x01 is true; any other byte is false unless the
// reader is Strict, in which case only 0x00 is accepted as false.
func (r *Reader) Bool() bool {
	off := r.Off()
	b := r.Byte()
	if r.Strict && b > 1 {
		r.Fail(off, ErrInvalidBool, "bool byte %#02x", b)
		return false
	}
	return b == 1
}

// Time reads whole seconds since the Unix epoch stored as a uint32.
func (r *Reader) Time() time.Time {
	v := ReadInt[uint32](r)
	if r.err != nil {
		return time.Time{}
	}
	return time.Unix(int64(v), 0).UTC()
}

// UUID reads a UUID string with a 1-byte length prefix. Only the
// 36-character hyphenated form is accepted; letter case is ignored.
func (r *Reader) UUID() uuid.UUID {
	off := r.Off()
	s := ReadString[uint8](r)
	if r.err != nil {
		return uuid.Nil
	}
	if len(s) != 36 || s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
		r.Fail(off, ErrInvalidUUID, "%q is not in hyphenated form", s)
		return uuid.Nil
	}
	u, err := uuid.Parse(s)
	if err != nil {
		r.Fail(off, ErrInvalidUUID, "%q: %v", s, err)
		return uuid.Nil
	}
	return u
}

func (r *Reader) Float32() float32 {
	return math.Float32frombits(ReadInt[uint32](r))
}

func (r *Reader) Float64() float64 {
	return math.Float64frombits(ReadInt[uint64](r))
}

// ReadInt reads a fixed-width little-endian integer whose width is the
// size of I.
func ReadInt[I Integer](r *Reader) I {
	var v I
	b := r.Raw(int(unsafe.Sizeof(v)))
	switch len(b) {
	case 0:
		return v
	case 1:
		return I(b[0])
	case 2:
		return I(binary.LittleEndian.Uint16(b))
	case 4:
		return I(binary.LittleEndian.Uint32(b))
	default:
		return I(binary.LittleEndian.Uint64(b))
	}
}

// ReadBlock reads a raw byte block prefixed by its length encoded as W.
// The result aliases the Reader's buffer.
func ReadBlock[W Unsigned](r *Reader) []byte {
	n := ReadInt[W](r)
	if r.err != nil {
		return nil
	}
	if uint64(n) > uint64(len(r.buf)) {
		r.Fail(r.Off(), ErrTruncated, "block of %d bytes, %d remaining", uint64(n), len(r.buf))
		return nil
	}
	return r.Raw(int(n))
}

// ReadString reads a string prefixed by its byte length encoded as W.
// Invalid UTF-8 is replaced with U+FFFD unless the reader is Strict.
func ReadString[W Unsigned](r *Reader) string {
	off := r.Off()
	b := ReadBlock[W](r)
	if r.err != nil {
		return ""
	}
	if !utf8.Valid(b) {
		if r.Strict {
			r.Fail(off, ErrInvalidUTF8, "string of %d bytes", len(b))
			return ""
		}
		return strings.ToValidUTF8(string(b), string(utf8.RuneError))
	}
	return string(b)
}

// ReadRecord decodes one T from r.
func ReadRecord[T Record[T]](r *Reader) T {
	var zero T
	if r.err != nil {
		return zero
	}
	return zero.Decode(r)
}

// ReadRecords reads a count encoded as W followed by that many records.
//
// A record that decodes from zero bytes is only accepted while the
// remaining count does not exceed the remaining bytes, so a corrupt count
// cannot spin forever.
func ReadRecords[W Unsigned, T Record[T]](r *Reader) []T {
	n := ReadInt[W](r)
	if r.err != nil {
		return nil
	}
	items := make([]T, 0, min(uint64(n), uint64(len(r.buf))))
	for i := W(0); i < n; i++ {
		before := len(r.buf)
		v := ReadRecord[T](r)
		if r.err != nil {
			return nil
		}
		if len(r.buf) == before && uint64(n-i-1) > uint64(before) {
			r.Fail(r.Off(), ErrTruncated, "%d more records of zero bytes, %d bytes remaining", uint64(n-i-1), before)
			return nil
		}
		items = append(items, v)
	}
	return items
}

// ReadInts reads a count encoded as W followed by that many fixed-width
// integers.
func ReadInts[W Unsigned, I Integer](r *Reader) []I {
	n := ReadInt[W](r)
	if r.err != nil {
		return nil
	}
	size := uint64(unsafe.Sizeof(I(0)))
	if uint64(n) > uint64(len(r.buf))/size {
		r.Fail(r.Off(), ErrTruncated, "%d numbers of %d bytes, %d bytes remaining", uint64(n), size, len(r.buf))
		return nil
	}
	items := make([]I, n)
	for i := range items {
		items[i] = ReadInt[I](r)
	}
	return items
}

// ReadStrings reads a count encoded as W followed by that many strings,
// each prefixed by its length encoded as S. Every string consumes at least
// its prefix, so a corrupt count fails once the bytes run out.
func ReadStrings[W, S Unsigned](r *Reader) []string {
	n := ReadInt[W](r)
	if r.err != nil {
		return nil
	}
	items := make([]string, 0, min(uint64(n), uint64(len(r.buf))))
	for i := W(0); i < n; i++ {
		s := ReadString[S](r)
		if r.err != nil {
			return nil
		}
		items = append(items, s)
	}
	return items
}
