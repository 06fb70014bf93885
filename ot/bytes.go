package ot

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"sort"
)

// Reading bytes from a font's binary representation

var errBufferBounds = errors.New("internal inconsistency: buffer bounds error")

func u16(b []byte) uint16 {
	_ = b[1] // Bounds check hint to compiler
	return uint16(b[0])<<8 | uint16(b[1])<<0
}

func u24(b []byte) uint32 {
	_ = b[2]
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])<<0
}

func u32(b []byte) uint32 {
	_ = b[3] // Bounds check hint to compiler
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])<<0
}

// --- Byte segments ---------------------------------------------------------

// binarySegm is a segment of byte data. Every table and sub-table of a font is
// a binarySegm, i.e. a sub-slice of the font's binary data. A segment of length
// 0 is the null segment, denoting an absent table.
type binarySegm []byte

// Size returns the size of the segment in bytes.
func (b binarySegm) Size() int {
	return len(b)
}

// Bytes returns the segment as a byte slice.
func (b binarySegm) Bytes() []byte {
	return b
}

// IsNull is true for the null segment, i.e. for absent tables.
func (b binarySegm) IsNull() bool {
	return len(b) == 0
}

// U16 returns the uint16 at byte index i, or 0 if i is out of bounds.
func (b binarySegm) U16(i int) uint16 {
	n, err := b.u16(i)
	if err != nil {
		return 0
	}
	return n
}

// U32 returns the uint32 at byte index i, or 0 if i is out of bounds.
func (b binarySegm) U32(i int) uint32 {
	n, err := b.u32(i)
	if err != nil {
		return 0
	}
	return n
}

// I16 returns the int16 at byte index i, or 0 if i is out of bounds.
func (b binarySegm) I16(i int) int16 {
	return int16(b.U16(i))
}

// view returns n bytes at the given offset.
// The byte segment returned is a sub-slice of b.
func (b binarySegm) view(offset, n int) (binarySegm, error) {
	if offset < 0 || n <= 0 || offset > len(b)-n {
		return nil, errBufferBounds
	}
	return b[offset : offset+n], nil
}

// u16 returns the uint16 in b at the relative offset i.
func (b binarySegm) u16(i int) (uint16, error) {
	buf, err := b.view(i, 2)
	if err != nil {
		return 0, err
	}
	return u16(buf), nil
}

// u32 returns the uint32 in b at the relative offset i.
func (b binarySegm) u32(i int) (uint32, error) {
	buf, err := b.view(i, 4)
	if err != nil {
		return 0, err
	}
	return u32(buf), nil
}

// from returns the tail of b starting at offset, or the null segment if offset
// is not within b.
func (b binarySegm) from(offset int) binarySegm {
	if offset < 0 || offset >= len(b) {
		return nil
	}
	return b[offset:]
}

// --- Offsets ---------------------------------------------------------------

// offset16 resolves an Offset16 stored at byte index at. Offsets are relative to
// the start of b. A 0 offset or an offset pointing outside of b yields the null
// segment.
func (b binarySegm) offset16(at int) binarySegm {
	off := b.U16(at)
	if off == 0 {
		return nil
	}
	return b.from(int(off))
}

// offset32 resolves an Offset32 stored at byte index at, relative to the start of b.
func (b binarySegm) offset32(at int) binarySegm {
	off := b.U32(at)
	if off == 0 || uint64(off) >= uint64(len(b)) {
		return nil
	}
	return b[off:]
}

// --- Arrays ----------------------------------------------------------------

// array is a view onto an array of fixed-size records.
type array struct {
	recordSize int
	length     int
	data       binarySegm
}

// viewArray16 creates a view of a length-prefixed array. The uint16 count is
// located at byte index at, the records follow immediately.
// If b is too small to hold all the records, the array is empty.
func viewArray16(b binarySegm, at, recordSize int) array {
	n, err := b.u16(at)
	if err != nil {
		return array{recordSize: recordSize}
	}
	return viewArray(b, at+2, int(n), recordSize)
}

// viewArray32 creates a view of an array prefixed with a uint32 count.
func viewArray32(b binarySegm, at, recordSize int) array {
	n, err := b.u32(at)
	if err != nil || uint64(n) > math.MaxInt32 {
		return array{recordSize: recordSize}
	}
	return viewArray(b, at+4, int(n), recordSize)
}

// viewArray creates a view of count records starting at byte index at.
func viewArray(b binarySegm, at, count, recordSize int) array {
	size, err := checkedMulInt(count, recordSize)
	if err != nil || at < 0 || at > len(b) || size > len(b)-at {
		return array{recordSize: recordSize}
	}
	return array{
		recordSize: recordSize,
		length:     count,
		data:       b[at : at+size],
	}
}

// Len returns the number of records of an array.
func (a array) Len() int {
	return a.length
}

// Get returns the record at index i, or the null segment if i is out of range.
func (a array) Get(i int) binarySegm {
	if i < 0 || i >= a.length {
		return nil
	}
	return a.data[i*a.recordSize : (i+1)*a.recordSize]
}

// U16 interprets the record at index i as a uint16 value.
func (a array) U16(i int) uint16 {
	return a.Get(i).U16(0)
}

// link interprets record i as an Offset16 relative to base. A null offset
// yields the null segment.
func (a array) link(base binarySegm, i int) binarySegm {
	off := a.U16(i)
	if off == 0 {
		return nil
	}
	return base.from(int(off))
}

// All iterates over all records of the array.
func (a array) All() iter.Seq2[int, binarySegm] {
	return func(yield func(int, binarySegm) bool) {
		for i := 0; i < a.length; i++ {
			if !yield(i, a.Get(i)) {
				return
			}
		}
	}
}

// bsearch does a binary search over the records of a, which are expected to
// be sorted. cmp compares a record with the search key and returns a value
// < 0 if the record is smaller than the key, 0 if it matches the key and > 0
// otherwise. bsearch returns the index of a matching record or NotFoundIndex.
func (a array) bsearch(cmp func(rec binarySegm) int) uint32 {
	i := sort.Search(a.length, func(i int) bool {
		return cmp(a.Get(i)) >= 0
	})
	if i < a.length && cmp(a.Get(i)) == 0 {
		return uint32(i)
	}
	return NotFoundIndex
}

// --- Tag records -----------------------------------------------------------

// tagRecordArray is an array of records, each starting with a Tag. Record
// arrays in OpenType are sorted by tag, thus support binary search.
// Record size is 6 for {Tag, Offset16} records.
type tagRecordArray struct {
	array
}

func viewTagRecords16(b binarySegm, at int) tagRecordArray {
	return tagRecordArray{viewArray16(b, at, 6)}
}

// TagAt returns the tag of record i, or 0.
func (t tagRecordArray) TagAt(i int) Tag {
	return Tag(t.Get(i).U32(0))
}

// find does a binary search for a tag.
func (t tagRecordArray) find(tag Tag) uint32 {
	return t.bsearch(func(rec binarySegm) int {
		rt := Tag(rec.U32(0))
		switch {
		case rt < tag:
			return -1
		case rt > tag:
			return 1
		}
		return 0
	})
}

// link returns the offset of record i, relative to base.
func (t tagRecordArray) link(base binarySegm, i int) binarySegm {
	off := t.Get(i).U16(4)
	if off == 0 {
		return nil
	}
	return base.from(int(off))
}

// tags copies tags starting at index start into out and returns the total
// number of records.
func (t tagRecordArray) tags(start int, out []Tag) int {
	if start >= 0 && start < t.Len() {
		for i := 0; i < len(out) && start+i < t.Len(); i++ {
			out[i] = t.TagAt(start + i)
		}
	}
	return t.Len()
}

// --- Checked arithmetic ----------------------------------------------------

func checkedMulInt(a, b int) (int, error) {
	if a < 0 || b < 0 {
		return 0, fmt.Errorf("negative operand in multiplication: %d * %d", a, b)
	}
	if a != 0 && b > math.MaxInt/a {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	return a * b, nil
}

func checkedAddInt(a, b int) (int, error) {
	if a < 0 || b < 0 {
		return 0, fmt.Errorf("negative operand in addition: %d + %d", a, b)
	}
	if a > math.MaxInt-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	return a + b, nil
}
