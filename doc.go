/*
Package bufferkit implements a schema-less binary encoding for structured
values, where every value type supplies its own encoding and decoding
instead of relying on reflection or generated code.

Encoding is append-only: build a buffer by calling the Append functions in
order. Decoding consumes: wrap the bytes in a Reader and call the matching
read functions in the same order. There are no type tags in the stream;
reading a field with a different type or prefix width than it was written
with silently produces garbage.

A value type becomes storable by implementing Record:

	type Point struct {
		X, Y int32
		Label string
	}

	func (p Point) Encode(buf []byte) []byte {
		buf = bufferkit.AppendInt(buf, p.X)
		buf = bufferkit.AppendInt(buf, p.Y)
		return bufferkit.AppendString[uint8](buf, p.Label)
	}

	func (Point) Decode(r *bufferkit.Reader) Point {
		return Point{
			X:     bufferkit.ReadInt[int32](r),
			Y:     bufferkit.ReadInt[int32](r),
			Label: bufferkit.ReadString[uint8](r),
		}
	}

Records compose: Composed, Wrapper and List are records built from other
records, and MsgPack and CBOR wrap arbitrary Go values.

# Wire format

All integers are little-endian.

  - Integer of N bytes: N raw bytes.
  - Bool: one byte, 0x01 is true.
  - Time: uint32 seconds since the Unix epoch.
  - UUID: uint8 length, then the 36-character hyphenated string.
  - String or block: length prefix of caller-chosen width, then the bytes.
  - Collection: count prefix of caller-chosen width, then the elements.
  - Composite: fields back to back in declaration order.

# Errors

Reader errors are sticky, so a decoder reads all of its fields and the
caller checks Reader.Err (or uses Prototype/Unmarshal, which do it).
Malformed input produces a *DataError wrapping one of ErrTruncated,
ErrInvalidBool, ErrInvalidUTF8, ErrInvalidUUID or ErrTrailingData.
Prefixes that are too narrow and encode/decode order mismatches are not
detected.
*/
package bufferkit
