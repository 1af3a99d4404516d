package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bufferkit/bufferkit"
)

type field struct {
	name   string
	decode decodeFunc
}

type decodeFunc func(r *bufferkit.Reader) any

// parseLayout parses a comma-separated list of field codes, each optionally
// named as name=code.
func parseLayout(layout string) ([]field, error) {
	var fields []field
	for i, elem := range strings.Split(layout, ",") {
		elem = strings.TrimSpace(elem)
		if elem == "" {
			continue
		}
		name, code, ok := strings.Cut(elem, "=")
		if !ok {
			name, code = fmt.Sprintf("field%d", i), elem
		}
		decode, err := parseCode(code)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", elem, err)
		}
		fields = append(fields, field{name, decode})
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty layout")
	}
	return fields, nil
}

func parseCode(code string) (decodeFunc, error) {
	if rest, ok := strings.CutPrefix(code, "*"); ok {
		widthStr, elemCode, ok := strings.Cut(rest, ":")
		if !ok {
			return nil, fmt.Errorf("collection %q needs *N:<code>", code)
		}
		count, err := parseWidth(widthStr, readUint)
		if err != nil {
			return nil, err
		}
		elem, err := parseCode(elemCode)
		if err != nil {
			return nil, err
		}
		return func(r *bufferkit.Reader) any {
			off := r.Off()
			n := count(r).(uint64)
			// every element consumes at least one byte
			if n > uint64(r.Len()) {
				r.Fail(off, bufferkit.ErrTruncated, "%d elements, %d bytes remaining", n, r.Len())
				return nil
			}
			items := make([]any, 0, n)
			for range n {
				items = append(items, elem(r))
			}
			return items
		}, nil
	}
	if w, ok := strings.CutPrefix(code, "str"); ok {
		return parseWidth(w, readString)
	}
	if w, ok := strings.CutPrefix(code, "block"); ok {
		return parseWidth(w, readBlock)
	}

	switch code {
	case "u8":
		return func(r *bufferkit.Reader) any { return bufferkit.ReadInt[uint8](r) }, nil
	case "u16":
		return func(r *bufferkit.Reader) any { return bufferkit.ReadInt[uint16](r) }, nil
	case "u32":
		return func(r *bufferkit.Reader) any { return bufferkit.ReadInt[uint32](r) }, nil
	case "u64":
		return func(r *bufferkit.Reader) any { return bufferkit.ReadInt[uint64](r) }, nil
	case "i8":
		return func(r *bufferkit.Reader) any { return bufferkit.ReadInt[int8](r) }, nil
	case "i16":
		return func(r *bufferkit.Reader) any { return bufferkit.ReadInt[int16](r) }, nil
	case "i32":
		return func(r *bufferkit.Reader) any { return bufferkit.ReadInt[int32](r) }, nil
	case "i64":
		return func(r *bufferkit.Reader) any { return bufferkit.ReadInt[int64](r) }, nil
	case "f32":
		return func(r *bufferkit.Reader) any { return r.Float32() }, nil
	case "f64":
		return func(r *bufferkit.Reader) any { return r.Float64() }, nil
	case "bool":
		return func(r *bufferkit.Reader) any { return r.Bool() }, nil
	case "time":
		return func(r *bufferkit.Reader) any { return r.Time() }, nil
	case "uuid":
		return func(r *bufferkit.Reader) any { return r.UUID() }, nil
	default:
		return nil, fmt.Errorf("unknown code %q", code)
	}
}

func parseWidth(s string, pick func(width int) decodeFunc) (decodeFunc, error) {
	w, err := strconv.Atoi(s)
	if err != nil || (w != 1 && w != 2 && w != 4 && w != 8) {
		return nil, fmt.Errorf("invalid prefix width %q, wanted 1, 2, 4 or 8", s)
	}
	return pick(w), nil
}

func readUint(width int) decodeFunc {
	switch width {
	case 1:
		return func(r *bufferkit.Reader) any { return uint64(bufferkit.ReadInt[uint8](r)) }
	case 2:
		return func(r *bufferkit.Reader) any { return uint64(bufferkit.ReadInt[uint16](r)) }
	case 4:
		return func(r *bufferkit.Reader) any { return uint64(bufferkit.ReadInt[uint32](r)) }
	default:
		return func(r *bufferkit.Reader) any { return bufferkit.ReadInt[uint64](r) }
	}
}

func readString(width int) decodeFunc {
	switch width {
	case 1:
		return func(r *bufferkit.Reader) any { return bufferkit.ReadString[uint8](r) }
	case 2:
		return func(r *bufferkit.Reader) any { return bufferkit.ReadString[uint16](r) }
	case 4:
		return func(r *bufferkit.Reader) any { return bufferkit.ReadString[uint32](r) }
	default:
		return func(r *bufferkit.Reader) any { return bufferkit.ReadString[uint64](r) }
	}
}

func readBlock(width int) decodeFunc {
	switch width {
	case 1:
		return func(r *bufferkit.Reader) any { return bufferkit.ReadBlock[uint8](r) }
	case 2:
		return func(r *bufferkit.Reader) any { return bufferkit.ReadBlock[uint16](r) }
	case 4:
		return func(r *bufferkit.Reader) any { return bufferkit.ReadBlock[uint32](r) }
	default:
		return func(r *bufferkit.Reader) any { return bufferkit.ReadBlock[uint64](r) }
	}
}

func formatValue(v any) string {
	switch v := v.(type) {
	case string:
		return strconv.Quote(v)
	case []byte:
		return hex.EncodeToString(v)
	case time.Time:
		return v.Format(time.RFC3339)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = formatValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(v)
	}
}

// dump decodes data field by field and prints one line per field. Decoding
// stops at the first error, which is returned after the fields decoded so
// far have been printed.
func dump(out io.Writer, data []byte, fields []field, strict bool) error {
	r := bufferkit.NewReader(data)
	r.Strict = strict
	for _, f := range fields {
		v := f.decode(r)
		if err := r.Err(); err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		fmt.Fprintf(out, "%s = %s\n", f.name, formatValue(v))
	}
	if n := r.Len(); n > 0 {
		fmt.Fprintf(out, "(%d trailing bytes at %d)\n", n, r.Off())
	}
	return nil
}
