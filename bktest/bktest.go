// Package bktest contains helpers for testing encoders and stores.
package bktest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"testing"
)

// Logger returns a logger that writes to t.Log at debug level.
func Logger(t testing.TB) *slog.Logger {
	return slog.New(slog.NewTextHandler(&logWriter{t}, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelDebug,
	}))
}

type logWriter struct{ t testing.TB }

func (c *logWriter) Write(buf []byte) (int, error) {
	msg := string(buf)
	origLen := len(msg)
	msg = strings.TrimSuffix(msg, "\n")
	c.t.Log(msg)
	return origLen, nil
}

// Expand turns a human-readable byte spec into bytes. Elements are
// separated by whitespace:
//
//	0a0b     hex bytes (underscores allowed as separators)
//	'abc     ASCII literal
//	#300:2   decimal number as a little-endian integer of 2 bytes (default 1)
//	00*4     element repeated 4 times
//	0a/len   anything after a slash is a comment
func Expand(specs ...string) []byte {
	var b []byte
	for _, spec := range specs {
		for _, elem := range strings.Fields(spec) {
			base, _, _ := strings.Cut(elem, "/")
			if base == "" {
				continue
			}

			base, repStr, _ := strings.Cut(base, "*")

			rep := 1
			if repStr != "" {
				var err error
				rep, err = strconv.Atoi(repStr)
				if err != nil {
					panic(fmt.Sprintf("invalid repeat count %q in element %q", repStr, elem))
				}
			}

			baseBytes, err := appendElement(nil, base)
			if err != nil {
				panic(fmt.Errorf("%w in element %q", err, elem))
			}
			for range rep {
				b = append(b, baseBytes...)
			}
		}
	}
	return b
}

func appendElement(data []byte, hex string) ([]byte, error) {
	const none byte = 0xFF

	if decimal, ok := strings.CutPrefix(hex, "#"); ok {
		decimal, widthStr, _ := strings.Cut(decimal, ":")
		width := 1
		if widthStr != "" {
			var err error
			width, err = strconv.Atoi(widthStr)
			if err != nil {
				return nil, err
			}
		}
		v, err := strconv.ParseUint(decimal, 10, 64)
		if err != nil {
			return nil, err
		}
		var le [8]byte
		binary.LittleEndian.PutUint64(le[:], v)
		if width < 1 || width > 8 {
			return nil, fmt.Errorf("invalid width %d", width)
		}
		return append(data, le[:width]...), nil
	} else if alpha, ok := strings.CutPrefix(hex, "'"); ok {
		return append(data, alpha...), nil
	}

	prev := none
	for _, b := range []byte(hex) {
		var half byte
		switch b {
		case '_':
			if prev != none {
				data = append(data, prev)
				prev = none
			}
			continue
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			half = b - '0'
		case 'a', 'b', 'c', 'd', 'e', 'f':
			half = b - 'a' + 10
		case 'A', 'B', 'C', 'D', 'E', 'F':
			half = b - 'A' + 10
		default:
			return nil, fmt.Errorf("invalid char '%c'", b)
		}
		if prev == none {
			prev = half
		} else {
			data = append(data, prev<<4|half)
			prev = none
		}
	}
	if prev != none {
		data = append(data, prev)
	}
	return data, nil
}

// HexDump formats b 16 bytes per line with an ASCII column. Bytes at the
// marked offsets are preceded by '>' instead of a space; Boundaries turns
// field widths into such offsets.
func HexDump(b []byte, marks ...int) string {
	marked := make(map[int]bool, len(marks))
	for _, m := range marks {
		marked[m] = true
	}
	if len(b) == 0 {
		return "0000  (empty)\n"
	}

	var sb strings.Builder
	for off := 0; off < len(b); off += 16 {
		line := b[off:min(off+16, len(b))]
		fmt.Fprintf(&sb, "%04x ", off)
		for i := range 16 {
			if i == 8 {
				sb.WriteByte(' ')
			}
			if i >= len(line) {
				sb.WriteString("   ")
				continue
			}
			if marked[off+i] {
				sb.WriteByte('>')
			} else {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%02x", line[i])
		}
		sb.WriteString("  `")
		for _, v := range line {
			if v < 32 || v > 126 {
				v = '.'
			}
			sb.WriteByte(v)
		}
		sb.WriteString("`\n")
	}
	return sb.String()
}

// Boundaries returns the start offset of each field after the first, given
// the byte widths of consecutive fields, for use as HexDump marks.
func Boundaries(widths ...int) []int {
	offs := make([]int, 0, len(widths))
	off := 0
	for _, w := range widths[:max(len(widths)-1, 0)] {
		off += w
		offs = append(offs, off)
	}
	return offs
}

// BytesEq reports both slices as hex dumps, with the first difference
// marked, if a differs from e.
func BytesEq(t testing.TB, a, e []byte) bool {
	if bytes.Equal(a, e) {
		return true
	}
	t.Helper()
	diff := min(len(a), len(e))
	for i := range diff {
		if a[i] != e[i] {
			diff = i
			break
		}
	}
	t.Errorf("bytes differ at offset %d (0x%x)\n** got %d bytes:\n%s** wanted %d bytes:\n%s", diff, diff, len(a), HexDump(a, diff), len(e), HexDump(e, diff))
	return false
}
