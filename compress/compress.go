// Package compress implements the compression algorithms available to
// stored values.
package compress

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm identifies a compression algorithm. The numeric values are
// persisted, so never renumber them.
type Algorithm uint8

const (
	None Algorithm = 0
	LZ4  Algorithm = 1
	Zstd Algorithm = 2
)

var (
	ErrIncompressible = errors.New("data is incompressible")
	ErrCorrupt        = errors.New("corrupt compressed data")
)

// MaxSize is the largest uncompressed size Decompress accepts.
const MaxSize = 256 << 20

// LZ4 cannot expand a block by more than this factor.
const lz4MaxRatio = 255

func (alg Algorithm) String() string {
	switch alg {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(alg))
	}
}

func (alg Algorithm) Valid() bool {
	return alg <= Zstd
}

func Parse(name string) (Algorithm, error) {
	switch name {
	case "none", "":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return Zstd, nil
	default:
		return None, fmt.Errorf("unknown compression algorithm %q", name)
	}
}

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("compress: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxSize))
	if err != nil {
		panic("compress: zstd decoder initialization failed: " + err.Error())
	}
}

// Compress compresses data with alg. Returns ErrIncompressible if the
// result would not be smaller than data; None never fails and returns
// data itself.
func Compress(alg Algorithm, data []byte) ([]byte, error) {
	switch alg {
	case None:
		return data, nil
	case LZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, dst, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4: %w", err)
		}
		if n == 0 || n >= len(data) {
			return nil, ErrIncompressible
		}
		return dst[:n], nil
	case Zstd:
		out := zstdEncoder.EncodeAll(data, nil)
		if len(out) >= len(data) {
			return nil, ErrIncompressible
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm %v", alg)
	}
}

// Decompress reverses Compress. size is the exact uncompressed length; it
// usually comes from storage, so it is checked against what data can
// plausibly expand to before anything is allocated.
func Decompress(alg Algorithm, data []byte, size int) ([]byte, error) {
	if size < 0 || (alg != None && size > MaxSize) {
		return nil, fmt.Errorf("%w: size %d out of range", ErrCorrupt, size)
	}
	switch alg {
	case None:
		if len(data) != size {
			return nil, fmt.Errorf("uncompressed size %d, wanted %d", len(data), size)
		}
		return data, nil
	case LZ4:
		if size > lz4MaxRatio*len(data)+16 {
			return nil, fmt.Errorf("%w: %d bytes cannot expand to %d with lz4", ErrCorrupt, len(data), size)
		}
		dst := make([]byte, size)
		n, err := lz4.UncompressBlock(data, dst)
		if err != nil {
			return nil, fmt.Errorf("lz4: %w", err)
		}
		if n != size {
			return nil, fmt.Errorf("lz4: decompressed %d bytes, wanted %d", n, size)
		}
		return dst, nil
	case Zstd:
		out, err := zstdDecoder.DecodeAll(data, make([]byte, 0, min(size, 64*len(data)+64)))
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		if len(out) != size {
			return nil, fmt.Errorf("zstd: decompressed %d bytes, wanted %d", len(out), size)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm %v", alg)
	}
}
