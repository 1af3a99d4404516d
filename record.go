package bufferkit

import (
	"fmt"
	"os"
)

type Encoder interface {
	// Encode appends the value's encoding to buf and returns the result.
	Encode(buf []byte) []byte
}

// Record is implemented by every storable value type T. Decode is called
// on the zero value and constructs a new T from r, consuming exactly the
// bytes Encode produced for it.
//
// Decode does not return an error; malformed input is recorded on the
// Reader (see Reader.Err), and the returned value is then meaningless.
type Record[T any] interface {
	Encoder
	Decode(r *Reader) T
}

// Bytes returns the encoding of v in a new slice.
func Bytes(v Encoder) []byte {
	return v.Encode(nil)
}

// Prototype decodes a single T from the start of data. Trailing bytes are
// ignored.
func Prototype[T Record[T]](data []byte) (T, error) {
	r := NewReader(data)
	v := ReadRecord[T](r)
	return v, r.Err()
}

// Unmarshal decodes a single T that must span all of data.
func Unmarshal[T Record[T]](data []byte) (T, error) {
	r := NewReader(data)
	v := ReadRecord[T](r)
	return v, r.Finish()
}

// PrototypeFile reads the file at path and decodes a single T from the
// start of it.
func PrototypeFile[T Record[T]](path string) (T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		var zero T
		return zero, err
	}
	v, err := Prototype[T](data)
	if err != nil {
		return v, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// Composed is a pair of records encoded back to back.
type Composed[TA Record[TA], TB Record[TB]] struct {
	A TA
	B TB
}

func (c Composed[TA, TB]) Encode(buf []byte) []byte {
	buf = c.A.Encode(buf)
	return c.B.Encode(buf)
}

func (Composed[TA, TB]) Decode(r *Reader) Composed[TA, TB] {
	a := ReadRecord[TA](r)
	b := ReadRecord[TB](r)
	return Composed[TA, TB]{A: a, B: b}
}

// Wrapper pairs a model with a complementary record, such as metadata
// kept alongside it. It encodes exactly like Composed.
type Wrapper[M Record[M], C Record[C]] struct {
	Model      M
	Complement C
}

func (w Wrapper[M, C]) Encode(buf []byte) []byte {
	buf = w.Model.Encode(buf)
	return w.Complement.Encode(buf)
}

func (Wrapper[M, C]) Decode(r *Reader) Wrapper[M, C] {
	m := ReadRecord[M](r)
	c := ReadRecord[C](r)
	return Wrapper[M, C]{Model: m, Complement: c}
}

// List is a slice of records framed by a count prefix of width W. It lets
// a collection be used wherever a single Record is expected, for example
// as the value of a cache.
type List[W Unsigned, T Record[T]] []T

func (l List[W, T]) Encode(buf []byte) []byte {
	return AppendRecords[W](buf, []T(l))
}

func (List[W, T]) Decode(r *Reader) List[W, T] {
	return List[W, T](ReadRecords[W, T](r))
}
