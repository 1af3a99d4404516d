package bufferkit

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// MsgPack adapts any msgpack-serializable Go value into a Record. The
// value is stored as a MessagePack document with a 4-byte length prefix,
// with map keys sorted so equal values encode identically.
type MsgPack[T any] struct {
	V T
}

func (m MsgPack[T]) Encode(buf []byte) []byte {
	off, buf := grow(buf, 4)
	bb := Builder{buf}
	enc := msgpack.GetEncoder()
	enc.Reset(&bb)
	enc.SetSortMapKeys(true)
	err := enc.Encode(m.V)
	msgpack.PutEncoder(enc)
	if err != nil {
		panic(fmt.Errorf("failed to encode %T using MsgPack: %w", m.V, err))
	}
	buf = bb.Buf
	binary.LittleEndian.PutUint32(buf[off:], uint32(len(buf)-off-4))
	return buf
}

func (MsgPack[T]) Decode(r *Reader) MsgPack[T] {
	var m MsgPack[T]
	off := r.Off()
	data := ReadBlock[uint32](r)
	if r.Err() != nil {
		return m
	}
	var br bytes.Reader
	br.Reset(data)
	dec := msgpack.GetDecoder()
	dec.Reset(&br)
	err := dec.Decode(&m.V)
	msgpack.PutDecoder(dec)
	if err != nil {
		r.Fail(off, err, "failed to decode msgpack into %T", m.V)
	}
	return m
}
