package store

import (
	"errors"
	"fmt"

	"github.com/bufferkit/bufferkit"
	"github.com/bufferkit/bufferkit/compress"
)

var ErrUnknownAlgorithm = errors.New("unknown compression algorithm")

// Compressed wraps a Store and compresses every value written to it. Each
// value is framed as the algorithm tag (uint8), the uncompressed size
// (uint32) and the payload. Values that do not shrink are stored with
// compress.None, so Get accepts any algorithm regardless of the one
// configured.
type Compressed struct {
	inner Store
	alg   compress.Algorithm
}

var _ Store = (*Compressed)(nil)

func NewCompressed(inner Store, alg compress.Algorithm) *Compressed {
	return &Compressed{inner: inner, alg: alg}
}

func (s *Compressed) Get(key string) ([]byte, error) {
	data, err := s.inner.Get(key)
	if err != nil {
		return nil, err
	}
	return Decompress(data)
}

func (s *Compressed) Put(key string, data []byte) error {
	framed, err := Compress(s.alg, data)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return s.inner.Put(key, framed)
}

func (s *Compressed) Delete(key string) error {
	return s.inner.Delete(key)
}

func (s *Compressed) List() ([]string, error) {
	return s.inner.List()
}

func (s *Compressed) Close() error {
	return s.inner.Close()
}

// Compress frames data compressed with alg, falling back to no
// compression when alg does not make it smaller.
func Compress(alg compress.Algorithm, data []byte) ([]byte, error) {
	payload, err := compress.Compress(alg, data)
	if errors.Is(err, compress.ErrIncompressible) {
		alg, payload = compress.None, data
	} else if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, 5+len(payload))
	buf = bufferkit.AppendInt(buf, uint8(alg))
	buf = bufferkit.AppendInt(buf, uint32(len(data)))
	return bufferkit.AppendRaw(buf, payload), nil
}

// Decompress reverses Compress.
func Decompress(data []byte) ([]byte, error) {
	r := bufferkit.NewReader(data)
	alg := compress.Algorithm(r.Byte())
	size := bufferkit.ReadInt[uint32](r)
	if r.Err() == nil && !alg.Valid() {
		r.Fail(0, ErrUnknownAlgorithm, "tag %d", uint8(alg))
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	out, err := compress.Decompress(alg, r.Remaining(), int(size))
	if err != nil {
		return nil, &bufferkit.DataError{Data: data, Off: r.Off(), Err: err, Msg: "failed to decompress " + alg.String()}
	}
	return out, nil
}
