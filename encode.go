package bufferkit

import (
	"encoding/binary"
	"math"
	"time"
	"unsafe"

	"github.com/google/uuid"
)

// Unsigned integer types serve as widths of length and count prefixes.
// A prefix that is too narrow for the actual length silently wraps and
// corrupts the frame, so pick a type that can hold the largest possible
// length.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

type Signed interface {
	~int8 | ~int16 | ~int32 | ~int64
}

// Integer types are encoded as exactly their size in bytes. Platform-sized
// int and uint are deliberately excluded.
type Integer interface {
	Unsigned | Signed
}

// AppendRaw appends data without any framing.
func AppendRaw(buf []byte, data []byte) []byte {
	return append(buf, data...)
}

// AppendInt appends v as a little-endian integer of v's size.
func AppendInt[I Integer](buf []byte, v I) []byte {
	switch unsafe.Sizeof(v) {
	case 1:
		return append(buf, byte(v))
	case 2:
		return binary.LittleEndian.AppendUint16(buf, uint16(v))
	case 4:
		return binary.LittleEndian.AppendUint32(buf, uint32(v))
	default:
		return binary.LittleEndian.AppendUint64(buf, uint64(v))
	}
}

func AppendBool(buf []byte, v bool) []byte {
	if v {
		return append(buf, 1)
	}
	return append(buf, 0)
}

func AppendFloat32(buf []byte, v float32) []byte {
	return AppendInt(buf, math.Float32bits(v))
}

func AppendFloat64(buf []byte, v float64) []byte {
	return AppendInt(buf, math.Float64bits(v))
}

// AppendTime appends t as whole seconds since the Unix epoch in a uint32.
// Sub-second precision is dropped, and times outside 1970..2106 wrap.
func AppendTime(buf []byte, t time.Time) []byte {
	return AppendInt(buf, uint32(t.Unix()))
}

// AppendUUID appends the canonical 36-character string form of u with a
// 1-byte length prefix.
func AppendUUID(buf []byte, u uuid.UUID) []byte {
	return AppendString[uint8](buf, u.String())
}

// AppendBlock appends len(data) encoded as W followed by data.
func AppendBlock[W Unsigned](buf []byte, data []byte) []byte {
	buf = ensureCapacity(buf, len(buf)+int(unsafe.Sizeof(W(0)))+len(data))
	buf = AppendInt(buf, W(len(data)))
	return append(buf, data...)
}

// AppendString appends the UTF-8 bytes of s prefixed by their count
// encoded as W.
func AppendString[W Unsigned](buf []byte, s string) []byte {
	buf = ensureCapacity(buf, len(buf)+int(unsafe.Sizeof(W(0)))+len(s))
	buf = AppendInt(buf, W(len(s)))
	return append(buf, s...)
}

func AppendRecord(buf []byte, v Encoder) []byte {
	return v.Encode(buf)
}

// AppendOptional appends *v, or nothing at all if v is nil. No presence
// flag is written, so the reader must know from context whether to
// expect the value.
func AppendOptional[T Encoder](buf []byte, v *T) []byte {
	if v == nil {
		return buf
	}
	return (*v).Encode(buf)
}

// AppendRecords appends len(items) encoded as W followed by every item in
// slice order.
func AppendRecords[W Unsigned, T Encoder](buf []byte, items []T) []byte {
	buf = AppendInt(buf, W(len(items)))
	for _, item := range items {
		buf = item.Encode(buf)
	}
	return buf
}

// AppendInts appends len(items) encoded as W followed by every number.
func AppendInts[W Unsigned, I Integer](buf []byte, items []I) []byte {
	var zero I
	buf = ensureCapacity(buf, len(buf)+int(unsafe.Sizeof(W(0)))+len(items)*int(unsafe.Sizeof(zero)))
	buf = AppendInt(buf, W(len(items)))
	for _, v := range items {
		buf = AppendInt(buf, v)
	}
	return buf
}

// AppendStrings appends len(items) encoded as W followed by every string,
// each prefixed by its byte length encoded as S.
func AppendStrings[W, S Unsigned](buf []byte, items []string) []byte {
	buf = AppendInt(buf, W(len(items)))
	for _, s := range items {
		buf = AppendString[S](buf, s)
	}
	return buf
}
