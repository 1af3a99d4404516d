package bufferkit

import (
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborEnc uses Core Deterministic Encoding (RFC 8949 4.2), so the same
// value always produces the same bytes.
var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("bufferkit: CBOR encoder initialization failed: " + err.Error())
	}
	cborDec, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("bufferkit: CBOR decoder initialization failed: " + err.Error())
	}
}

// CBOR adapts any CBOR-serializable Go value into a Record. The value is
// stored as a CBOR document with a 4-byte length prefix.
type CBOR[T any] struct {
	V T
}

func (c CBOR[T]) Encode(buf []byte) []byte {
	off, buf := grow(buf, 4)
	bb := Builder{buf}
	err := cborEnc.NewEncoder(&bb).Encode(c.V)
	if err != nil {
		panic(fmt.Errorf("failed to encode %T using CBOR: %w", c.V, err))
	}
	buf = bb.Buf
	binary.LittleEndian.PutUint32(buf[off:], uint32(len(buf)-off-4))
	return buf
}

func (CBOR[T]) Decode(r *Reader) CBOR[T] {
	var c CBOR[T]
	off := r.Off()
	data := ReadBlock[uint32](r)
	if r.Err() != nil {
		return c
	}
	if err := cborDec.Unmarshal(data, &c.V); err != nil {
		r.Fail(off, err, "failed to decode CBOR into %T", c.V)
	}
	return c
}
