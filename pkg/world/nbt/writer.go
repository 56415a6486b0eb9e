// Package nbt reads and writes the big-endian Named Binary Tag format used by
// Anvil region files.
package nbt

import (
	"encoding/binary"
	"math"
)

// NBT tag type IDs.
const (
	TagEnd       byte = 0
	TagByte      byte = 1
	TagShort     byte = 2
	TagInt       byte = 3
	TagLong      byte = 4
	TagFloat     byte = 5
	TagDouble    byte = 6
	TagByteArray byte = 7
	TagString    byte = 8
	TagList      byte = 9
	TagCompound  byte = 10
	TagIntArray  byte = 11
)

// Writer builds an NBT document in memory. Compounds and lists are written
// as a stream: the caller closes every BeginCompound with EndCompound and
// writes exactly as many list elements as announced. Only lists of
// compounds are supported.
type Writer struct {
	buf   []byte
	lists []int32 // elements still expected by each open list of compounds
	depth []bool  // per open compound: whether it is a list element
}

// NewWriter returns a Writer with room for size bytes.
func NewWriter(size int) *Writer {
	return &Writer{buf: make([]byte, 0, size)}
}

// Bytes returns the encoded document.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

func (w *Writer) header(tag byte, name string) {
	w.buf = append(w.buf, tag)
	w.putString(name)
}

func (w *Writer) putString(s string) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, uint16(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *Writer) putInt32(v int32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(v))
}

func (w *Writer) inList() bool {
	return len(w.lists) > 0 && len(w.lists) > w.listDepth()
}

// listDepth counts the open lists already entered by an open element.
func (w *Writer) listDepth() int {
	n := 0
	for _, elem := range w.depth {
		if elem {
			n++
		}
	}
	return n
}

// BeginCompound opens a compound tag. Inside a list of compounds the name is
// ignored and no header is written. Use name="" for the root.
func (w *Writer) BeginCompound(name string) {
	elem := w.inList()
	if !elem {
		w.header(TagCompound, name)
	}
	w.depth = append(w.depth, elem)
}

// EndCompound closes the innermost open compound.
func (w *Writer) EndCompound() {
	w.buf = append(w.buf, TagEnd)
	if len(w.depth) == 0 {
		return
	}
	elem := w.depth[len(w.depth)-1]
	w.depth = w.depth[:len(w.depth)-1]
	if !elem {
		return
	}
	top := len(w.lists) - 1
	if w.lists[top]--; w.lists[top] == 0 {
		w.lists = w.lists[:top]
	}
}

// WriteTagByte writes a named byte tag.
func (w *Writer) WriteTagByte(name string, v byte) {
	w.header(TagByte, name)
	w.buf = append(w.buf, v)
}

// WriteShort writes a named short tag.
func (w *Writer) WriteShort(name string, v int16) {
	w.header(TagShort, name)
	w.buf = binary.BigEndian.AppendUint16(w.buf, uint16(v))
}

// WriteInt writes a named int tag.
func (w *Writer) WriteInt(name string, v int32) {
	w.header(TagInt, name)
	w.putInt32(v)
}

// WriteLong writes a named long tag.
func (w *Writer) WriteLong(name string, v int64) {
	w.header(TagLong, name)
	w.buf = binary.BigEndian.AppendUint64(w.buf, uint64(v))
}

// WriteFloat writes a named float tag.
func (w *Writer) WriteFloat(name string, v float32) {
	w.header(TagFloat, name)
	w.buf = binary.BigEndian.AppendUint32(w.buf, math.Float32bits(v))
}

// WriteDouble writes a named double tag.
func (w *Writer) WriteDouble(name string, v float64) {
	w.header(TagDouble, name)
	w.buf = binary.BigEndian.AppendUint64(w.buf, math.Float64bits(v))
}

// WriteByteArray writes a named byte array tag.
func (w *Writer) WriteByteArray(name string, v []byte) {
	w.header(TagByteArray, name)
	w.putInt32(int32(len(v)))
	w.buf = append(w.buf, v...)
}

// WriteString writes a named string tag.
func (w *Writer) WriteString(name string, v string) {
	w.header(TagString, name)
	w.putString(v)
}

// WriteIntArray writes a named int array tag.
func (w *Writer) WriteIntArray(name string, v []int32) {
	w.header(TagIntArray, name)
	w.putInt32(int32(len(v)))
	for _, x := range v {
		w.putInt32(x)
	}
}

// BeginList writes a named list header announcing count elements of
// elemType.
func (w *Writer) BeginList(name string, elemType byte, count int32) {
	w.header(TagList, name)
	w.buf = append(w.buf, elemType)
	w.putInt32(count)
	if elemType == TagCompound && count > 0 {
		w.lists = append(w.lists, count)
	}
}
