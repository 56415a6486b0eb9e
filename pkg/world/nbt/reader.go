package nbt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Compound is a decoded compound tag. Values are byte, int16, int32, int64,
// float32, float64, []byte, string, []any, Compound or []int32.
type Compound map[string]any

// ErrTruncated is returned when a document ends inside a tag.
var ErrTruncated = errors.New("nbt: truncated data")

// maxDepth bounds compound and list nesting.
const maxDepth = 512

// Read decodes a document whose root is a compound and returns the root's
// name and contents.
func Read(data []byte) (string, Compound, error) {
	r := &reader{data: data}
	tag := r.byte()
	if r.err == nil && tag != TagCompound {
		return "", nil, fmt.Errorf("nbt: root tag %d is not a compound", tag)
	}
	name := r.string()
	root := r.compound(0)
	if r.err != nil {
		return "", nil, r.err
	}
	return name, root, nil
}

type reader struct {
	data []byte
	off  int
	err  error
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.data) {
		r.err = ErrTruncated
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) byte() byte {
	if b := r.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *reader) uint16() uint16 {
	if b := r.take(2); b != nil {
		return binary.BigEndian.Uint16(b)
	}
	return 0
}

func (r *reader) uint32() uint32 {
	if b := r.take(4); b != nil {
		return binary.BigEndian.Uint32(b)
	}
	return 0
}

func (r *reader) uint64() uint64 {
	if b := r.take(8); b != nil {
		return binary.BigEndian.Uint64(b)
	}
	return 0
}

func (r *reader) string() string {
	return string(r.take(int(r.uint16())))
}

func (r *reader) length() int {
	n := int32(r.uint32())
	if n < 0 && r.err == nil {
		r.err = fmt.Errorf("nbt: negative length %d", n)
	}
	return int(n)
}

func (r *reader) compound(depth int) Compound {
	if depth > maxDepth {
		r.err = errors.New("nbt: nesting too deep")
		return nil
	}
	c := Compound{}
	for r.err == nil {
		tag := r.byte()
		if tag == TagEnd {
			break
		}
		name := r.string()
		c[name] = r.payload(tag, depth)
	}
	return c
}

func (r *reader) payload(tag byte, depth int) any {
	switch tag {
	case TagByte:
		return r.byte()
	case TagShort:
		return int16(r.uint16())
	case TagInt:
		return int32(r.uint32())
	case TagLong:
		return int64(r.uint64())
	case TagFloat:
		return math.Float32frombits(r.uint32())
	case TagDouble:
		return math.Float64frombits(r.uint64())
	case TagByteArray:
		return append([]byte(nil), r.take(r.length())...)
	case TagString:
		return r.string()
	case TagList:
		elem := r.byte()
		n := r.length()
		if r.err != nil {
			return nil
		}
		if n > len(r.data)-r.off {
			r.err = ErrTruncated
			return nil
		}
		list := make([]any, 0, n)
		for i := 0; i < n && r.err == nil; i++ {
			list = append(list, r.payload(elem, depth+1))
		}
		return list
	case TagCompound:
		return r.compound(depth + 1)
	case TagIntArray:
		n := r.length()
		b := r.take(n * 4)
		if b == nil {
			return nil
		}
		out := make([]int32, n)
		for i := range out {
			out[i] = int32(binary.BigEndian.Uint32(b[i*4:]))
		}
		return out
	default:
		if r.err == nil {
			r.err = fmt.Errorf("nbt: unknown tag type %d", tag)
		}
		return nil
	}
}
