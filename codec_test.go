package bufferkit

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"
	"unsafe"

	"github.com/google/uuid"

	"github.com/bufferkit/bufferkit/bktest"
)

func TestString_HelloWorld(t *testing.T) {
	const s = "hello world"

	buf := AppendString[uint64](nil, s)
	bktest.BytesEq(t, buf, bktest.Expand("#11:8 'hello 20 'world"))
	r := NewReader(buf)
	if a := ReadString[uint64](r); a != s {
		t.Errorf("ReadString[uint64] = %q, wanted %q", a, s)
	}
	if err := r.Finish(); err != nil {
		t.Fatal(err)
	}

	buf = AppendString[uint8](nil, s)
	bktest.BytesEq(t, buf, bktest.Expand("#11 'hello 20 'world"))
	r = NewReader(buf)
	if a := ReadString[uint8](r); a != s {
		t.Errorf("ReadString[uint8] = %q, wanted %q", a, s)
	}
	if err := r.Finish(); err != nil {
		t.Fatal(err)
	}
}

func TestInts_CountThenValues(t *testing.T) {
	buf := AppendInts[uint64](nil, []uint16{3, 2})
	bktest.BytesEq(t, buf, bktest.Expand("#2:8 #3:2 #2:2"))

	r := NewReader(buf)
	if n := ReadInt[uint64](r); n != 2 {
		t.Fatalf("count = %d, wanted 2", n)
	}
	a, b := ReadInt[uint16](r), ReadInt[uint16](r)
	if a != 3 || b != 2 {
		t.Fatalf("values = %d, %d, wanted 3, 2", a, b)
	}
	if err := r.Finish(); err != nil {
		t.Fatal(err)
	}

	r = NewReader(buf)
	if a := ReadInts[uint64, uint16](r); !reflect.DeepEqual(a, []uint16{3, 2}) {
		t.Fatalf("ReadInts = %v, wanted [3 2]", a)
	}
}

func roundTripInt[I Integer](t *testing.T, values ...I) {
	t.Helper()
	for _, v := range values {
		buf := AppendInt(nil, v)
		if len(buf) != int(unsafe.Sizeof(v)) {
			t.Errorf("AppendInt(%T %d) produced %d bytes, wanted %d", v, v, len(buf), unsafe.Sizeof(v))
			continue
		}
		r := NewReader(buf)
		a := ReadInt[I](r)
		if err := r.Finish(); err != nil {
			t.Errorf("ReadInt[%T] of %x: %v", v, buf, err)
		} else if a != v {
			t.Errorf("ReadInt[%T] = %d, wanted %d", v, a, v)
		}
	}
}

func TestInt_RoundTrip(t *testing.T) {
	roundTripInt[uint8](t, 0, 1, math.MaxUint8)
	roundTripInt[uint16](t, 0, 0x1234, math.MaxUint16)
	roundTripInt[uint32](t, 0, 0x12345678, math.MaxUint32)
	roundTripInt[uint64](t, 0, 0x123456789abcdef0, math.MaxUint64)
	roundTripInt[int8](t, 0, -1, math.MinInt8, math.MaxInt8)
	roundTripInt[int16](t, 0, -1, math.MinInt16, math.MaxInt16)
	roundTripInt[int32](t, 0, -1, math.MinInt32, math.MaxInt32)
	roundTripInt[int64](t, 0, -1, math.MinInt64, math.MaxInt64)
}

func TestInt_LittleEndian(t *testing.T) {
	bktest.BytesEq(t, AppendInt(nil, uint32(0x01020304)), bktest.Expand("04030201"))
	bktest.BytesEq(t, AppendInt(nil, int16(-2)), bktest.Expand("feff"))
	bktest.BytesEq(t, AppendInt(nil, uint64(1)), bktest.Expand("01 00*7"))
}

func roundTripString[W Unsigned](t *testing.T, values ...string) {
	t.Helper()
	for _, s := range values {
		buf := AppendString[W](nil, s)
		r := NewReader(buf)
		a := ReadString[W](r)
		if err := r.Finish(); err != nil {
			t.Errorf("ReadString[%T] of %d bytes: %v", W(0), len(s), err)
		} else if a != s {
			t.Errorf("ReadString[%T] = %q, wanted %q", W(0), a, s)
		}
	}
}

func TestString_RoundTrip(t *testing.T) {
	roundTripString[uint8](t, "", "a", "héllo, 世界", strings.Repeat("x", math.MaxUint8))
	roundTripString[uint16](t, "", "abc", strings.Repeat("y", 1000))
	roundTripString[uint32](t, "", "abc")
	roundTripString[uint64](t, "", "abc")
}

func TestStrings_RoundTrip(t *testing.T) {
	items := []string{"one", "", "three"}

	buf := AppendStrings[uint16, uint32](nil, items)
	bktest.BytesEq(t, buf, bktest.Expand("#3:2", "#3:4 'one", "#0:4", "#5:4 'three"))
	r := NewReader(buf)
	if a := ReadStrings[uint16, uint32](r); !reflect.DeepEqual(a, items) {
		t.Fatalf("ReadStrings = %q, wanted %q", a, items)
	}
	if err := r.Finish(); err != nil {
		t.Fatal(err)
	}

	r = NewReader(AppendStrings[uint8, uint8](nil, nil))
	if a := ReadStrings[uint8, uint8](r); a == nil || len(a) != 0 {
		t.Fatalf("ReadStrings of empty = %#v, wanted empty slice", a)
	}
}

func TestBlock(t *testing.T) {
	buf := AppendBlock[uint16](nil, []byte{0xAA, 0xBB, 0xCC})
	bktest.BytesEq(t, buf, bktest.Expand("#3:2 aabbcc"))
	r := NewReader(buf)
	bktest.BytesEq(t, ReadBlock[uint16](r), []byte{0xAA, 0xBB, 0xCC})
	if err := r.Finish(); err != nil {
		t.Fatal(err)
	}
}

func TestBlock_Truncated(t *testing.T) {
	r := NewReader(bktest.Expand("#5 'abc"))
	if a := ReadBlock[uint8](r); a != nil {
		t.Errorf("ReadBlock = %x, wanted nil", a)
	}
	if !errors.Is(r.Err(), ErrTruncated) {
		t.Fatalf("Err() = %v, wanted ErrTruncated", r.Err())
	}
}

func TestReader_StickyError(t *testing.T) {
	r := NewReader(bktest.Expand("01"))
	_ = ReadInt[uint16](r)
	err := r.Err()
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("Err() = %v, wanted ErrTruncated", err)
	}
	if a := r.Byte(); a != 0 {
		t.Errorf("Byte() after failure = %d, wanted 0", a)
	}
	if a := ReadString[uint8](r); a != "" {
		t.Errorf("ReadString after failure = %q, wanted empty", a)
	}
	if r.Err() != err {
		t.Errorf("Err() changed to %v", r.Err())
	}
	if r.Finish() != err {
		t.Errorf("Finish() = %v, wanted %v", r.Finish(), err)
	}
}

func TestReader_Consumption(t *testing.T) {
	r := NewReader(bktest.Expand("01 0203 'xyz"))
	if r.Byte() != 1 || r.Off() != 1 || r.Len() != 5 {
		t.Fatalf("after Byte: off=%d len=%d, wanted 1, 5", r.Off(), r.Len())
	}
	if v := ReadInt[uint16](r); v != 0x0302 {
		t.Fatalf("ReadInt[uint16] = %#x, wanted 0x0302", v)
	}
	bktest.BytesEq(t, r.Remaining(), []byte("xyz"))
	bktest.BytesEq(t, r.Raw(3), []byte("xyz"))
	if r.Len() != 0 || r.Err() != nil {
		t.Fatalf("at end: len=%d err=%v, wanted 0, nil", r.Len(), r.Err())
	}
}

func TestBool(t *testing.T) {
	bktest.BytesEq(t, AppendBool(AppendBool(nil, true), false), bktest.Expand("01 00"))

	r := NewReader(bktest.Expand("01 00 02"))
	if a, b, c := r.Bool(), r.Bool(), r.Bool(); !a || b || c {
		t.Fatalf("Bool() x3 = %v %v %v, wanted true false false", a, b, c)
	}
	if r.Err() != nil {
		t.Fatalf("lenient Bool: %v", r.Err())
	}

	r = NewReader(bktest.Expand("01 02"))
	r.Strict = true
	if !r.Bool() {
		t.Fatalf("strict Bool(01) = false")
	}
	_ = r.Bool()
	var de *DataError
	if !errors.Is(r.Err(), ErrInvalidBool) || !errors.As(r.Err(), &de) || de.Off != 1 {
		t.Fatalf("strict Bool(02) err = %v, wanted ErrInvalidBool at 1", r.Err())
	}
}

func TestString_InvalidUTF8(t *testing.T) {
	data := bktest.Expand("#2 ff 'a")

	r := NewReader(data)
	if a := ReadString[uint8](r); a != "\uFFFDa" {
		t.Fatalf("lenient ReadString = %q, wanted %q", a, "\uFFFDa")
	}

	r = NewReader(data)
	r.Strict = true
	_ = ReadString[uint8](r)
	if !errors.Is(r.Err(), ErrInvalidUTF8) {
		t.Fatalf("strict ReadString err = %v, wanted ErrInvalidUTF8", r.Err())
	}
}

func TestTime(t *testing.T) {
	in := time.Date(2023, 11, 14, 23, 13, 20, 999_000_000, time.FixedZone("X", 3600))
	buf := AppendTime(nil, in)
	bktest.BytesEq(t, buf, bktest.Expand("#1700000000:4"))

	r := NewReader(buf)
	a := r.Time()
	if err := r.Finish(); err != nil {
		t.Fatal(err)
	}
	if e := in.Truncate(time.Second).UTC(); !a.Equal(e) || a.Location() != time.UTC {
		t.Fatalf("Time() = %v, wanted %v", a, e)
	}
}

func TestUUID(t *testing.T) {
	const s = "f47ac10b-58cc-4372-a567-0e02b2c3d479"
	u := uuid.MustParse(s)

	buf := AppendUUID(nil, u)
	bktest.BytesEq(t, buf, bktest.Expand("#36 '"+s))
	r := NewReader(buf)
	if a := r.UUID(); a != u {
		t.Fatalf("UUID() = %v, wanted %v", a, u)
	}

	r = NewReader(AppendString[uint8](nil, strings.ToUpper(s)))
	if a := r.UUID(); a != u || r.Err() != nil {
		t.Fatalf("UUID() of upper case = %v, %v, wanted %v", a, r.Err(), u)
	}

	for _, bad := range []string{
		"not-a-uuid",
		"f47ac10b58cc4372a5670e02b2c3d479",
		"{f47ac10b-58cc-4372-a567-0e02b2c3d479}",
		"urn:uuid:f47ac10b-58cc-4372-a567-0e02b2c3d479",
		"f47ac10b-58cc-4372-a567-0e02b2c3d47",
		"f47ac10b058cc-4372-a567-0e02b2c3d479",
		"z47ac10b-58cc-4372-a567-0e02b2c3d479",
	} {
		for _, strict := range []bool{false, true} {
			r = NewReader(AppendString[uint8](nil, bad))
			r.Strict = strict
			if a := r.UUID(); a != uuid.Nil || !errors.Is(r.Err(), ErrInvalidUUID) {
				t.Errorf("UUID() of %q (strict=%v) = %v, %v, wanted Nil, ErrInvalidUUID", bad, strict, a, r.Err())
			}
		}
	}
}

func TestFloat(t *testing.T) {
	for _, v := range []float64{0, -0.5, math.Pi, math.MaxFloat64, math.Inf(-1)} {
		r := NewReader(AppendFloat64(nil, v))
		if a := r.Float64(); a != v {
			t.Errorf("Float64() = %v, wanted %v", a, v)
		}
	}
	for _, v := range []float32{0, 1.5, math.MaxFloat32} {
		r := NewReader(AppendFloat32(nil, v))
		if a := r.Float32(); a != v {
			t.Errorf("Float32() = %v, wanted %v", a, v)
		}
	}
}

func TestInts_Truncated(t *testing.T) {
	r := NewReader(bktest.Expand("#5:2 0100"))
	if a := ReadInts[uint16, uint16](r); a != nil {
		t.Errorf("ReadInts = %v, wanted nil", a)
	}
	if !errors.Is(r.Err(), ErrTruncated) {
		t.Fatalf("Err() = %v, wanted ErrTruncated", r.Err())
	}
}

func TestInts_Counts(t *testing.T) {
	for _, items := range [][]int32{{}, {-7}, {1, -2, 3, math.MaxInt32, math.MinInt32}} {
		buf := AppendInts[uint8](nil, items)
		r := NewReader(buf)
		a := ReadInts[uint8, int32](r)
		if err := r.Finish(); err != nil {
			t.Fatal(err)
		}
		if len(a) != len(items) || (len(items) > 0 && !reflect.DeepEqual(a, items)) {
			t.Errorf("ReadInts = %v, wanted %v", a, items)
		}
	}
}

func TestSequenceOfPrimitives(t *testing.T) {
	u := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	ts := time.Unix(86400, 0).UTC()

	var buf []byte
	buf = AppendInt(buf, uint8(7))
	buf = AppendBool(buf, true)
	buf = AppendString[uint16](buf, "name")
	buf = AppendTime(buf, ts)
	buf = AppendUUID(buf, u)
	buf = AppendInt(buf, int64(-42))
	buf = AppendBlock[uint32](buf, []byte{1, 2})

	r := NewReader(buf)
	a1 := ReadInt[uint8](r)
	a2 := r.Bool()
	a3 := ReadString[uint16](r)
	a4 := r.Time()
	a5 := r.UUID()
	a6 := ReadInt[int64](r)
	a7 := ReadBlock[uint32](r)
	if err := r.Finish(); err != nil {
		t.Fatal(err)
	}
	if a1 != 7 || !a2 || a3 != "name" || !a4.Equal(ts) || a5 != u || a6 != -42 || !reflect.DeepEqual(a7, []byte{1, 2}) {
		t.Fatalf("decoded %v %v %q %v %v %v %x", a1, a2, a3, a4, a5, a6, a7)
	}
}
