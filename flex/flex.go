// Package flex implements the sorted variable-length packed byte
// sequence spec.md §3.2/§4.1 calls the "packed array" (C1): the single
// structure every ordered-set and multimap tier is built on.
//
// An Array is one contiguous []byte: an 8-byte header (total length,
// entry count) followed by a sequence of self-describing variable-length
// entries. Each entry carries a forward length prefix (a standard
// unsigned LEB128 varint, via encoding/binary — the same "1 byte if it
// fits, more otherwise" shape spec.md §4.1 describes) and a trailing
// back-link mirroring that prefix, which is what lets Prev walk backward
// in O(1) without a separate index (spec.md §3.2).
//
// Mutating operations (insert/delete/replace) decode the buffer's
// entries into a Go slice, splice it, and re-encode a fresh buffer. This
// has the same O(n) cost as the packed array's original in-place memmove
// — an insertion or deletion already has to shift every byte after the
// mutation point — so nothing is asymptotically given up; it only
// trades a hand-verified memmove for a decode/splice/encode that is much
// easier to get right. Read-only traversal and search (Next, Prev, Get,
// Find) operate directly on the packed bytes, which is where the
// packed-array's performance properties actually matter and are
// exercised.
package flex

import (
	"encoding/binary"

	"github.com/davecgh/go-spew/spew"

	"github.com/latticedb/flexset/internal/debug"
	"github.com/latticedb/flexset/value"
)

const headerSize = 8 // 4 bytes total length + 4 bytes entry count

// Array is a sorted packed byte sequence. The zero value is not valid;
// use New.
type Array struct {
	buf []byte

	mid    int // cached byte offset of the midpoint entry's start
	midIdx int // raw entry index corresponding to mid (keeps the two in sync)
}

// New returns an empty Array.
func New() *Array {
	a := &Array{buf: make([]byte, headerSize)}
	a.putHeader()
	a.mid = headerSize
	a.midIdx = 0
	return a
}

func (a *Array) putHeader() {
	binary.LittleEndian.PutUint32(a.buf[0:4], uint32(len(a.buf)))
	binary.LittleEndian.PutUint32(a.buf[4:8], uint32(a.rawCount()))
}

// rawCount recomputes the entry count by walking the buffer; used only
// when rebuilding (encodeAll already knows the count directly, so this
// is mainly for sanity in New/tests).
func (a *Array) rawCount() int {
	n := 0
	for pos := headerSize; pos < len(a.buf); pos = a.Next(pos) {
		n++
	}
	return n
}

// Count returns the number of raw entries (not entry groups) currently stored.
func (a *Array) Count() int {
	return int(binary.LittleEndian.Uint32(a.buf[4:8]))
}

// Bytes returns the total size of the backing buffer, header included —
// spec.md §3.2's "total byte length."
func (a *Array) Bytes() int {
	return len(a.buf)
}

// Head returns the offset of the first entry's start, or End() if the
// array is empty (there is no first entry to point at).
func (a *Array) Head() int {
	if a.Count() == 0 {
		return headerSize
	}
	return headerSize
}

// End returns the sentinel offset one past all entries.
func (a *Array) End() int {
	return len(a.buf)
}

// Tail returns the offset of the last entry's start, or -1 if empty.
func (a *Array) Tail() int {
	if a.Count() == 0 {
		return -1
	}
	return a.Prev(a.End())
}

// Next returns the offset of the entry following the one starting at
// pos, or End() if pos was the last entry.
func (a *Array) Next(pos int) int {
	payloadLen, prefixWidth := binary.Uvarint(a.buf[pos:])
	total := prefixWidth + int(payloadLen) + 1 + prefixWidth
	return pos + total
}

// Prev returns the start offset of the entry immediately preceding the
// one ending at pos (pos is typically End() or another entry's start —
// "the entry whose end is pos"). Returns -1 if there is no such entry.
func (a *Array) Prev(pos int) int {
	if pos <= headerSize {
		return -1
	}
	backlinkWidth := int(a.buf[pos-1])
	backlinkStart := pos - 1 - backlinkWidth
	payloadLen, n := binary.Uvarint(a.buf[backlinkStart : pos-1])
	if n <= 0 {
		return -1
	}
	total := backlinkWidth + int(payloadLen) + 1 + backlinkWidth
	return pos - total
}

// Index returns the offset of the i-th (0-based) raw entry, walking
// from whichever of head/tail is closer.
func (a *Array) Index(i int) int {
	count := a.Count()
	if i < 0 || i >= count {
		return -1
	}
	if i <= count-1-i {
		pos := a.Head()
		for n := 0; n < i; n++ {
			pos = a.Next(pos)
		}
		return pos
	}
	pos := a.End()
	for n := count; n > i; n-- {
		pos = a.Prev(pos)
	}
	return pos
}

// Get decodes the Value stored at entry offset pos.
func (a *Array) Get(pos int) value.Value {
	payloadLen, prefixWidth := binary.Uvarint(a.buf[pos:])
	payload := a.buf[pos+prefixWidth : pos+prefixWidth+int(payloadLen)]
	return value.Decode(payload)
}

// GetGroup decodes the n consecutive values starting at entry offset pos.
func (a *Array) GetGroup(pos, n int) []value.Value {
	out := make([]value.Value, n)
	cur := pos
	for i := 0; i < n; i++ {
		out[i] = a.Get(cur)
		cur = a.Next(cur)
	}
	return out
}

// encodeEntry appends one entry (length prefix, payload, back-link) for v to dst.
func encodeEntry(dst []byte, v value.Value) []byte {
	payload := v.AppendBinary(nil)

	var prefix [binary.MaxVarintLen64]byte
	pn := binary.PutUvarint(prefix[:], uint64(len(payload)))

	dst = append(dst, prefix[:pn]...)
	dst = append(dst, payload...)
	dst = append(dst, prefix[:pn]...)
	dst = append(dst, byte(pn))
	return dst
}

// decodeAll materialises every raw entry as a Go slice, in order.
func (a *Array) decodeAll() []value.Value {
	count := a.Count()
	out := make([]value.Value, 0, count)
	for pos := a.Head(); pos < a.End(); pos = a.Next(pos) {
		out = append(out, a.Get(pos))
	}
	return out
}

// encodeAll rebuilds a's buffer from entries, replacing it entirely.
func (a *Array) encodeAll(entries []value.Value) {
	buf := make([]byte, headerSize, headerSize+len(entries)*4)
	for _, v := range entries {
		buf = encodeEntry(buf, v)
	}
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(buf)))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(entries)))
	a.buf = buf
}

// GoString backs Array's debug dump through go-spew, matching the
// ambient "debug printing" collaborator spec.md §1 lists as external.
func (a *Array) GoString() string {
	return spew.Sdump(a.decodeAll())
}

// Dump logs a's contents under tag via the debug package, when enabled.
func (a *Array) Dump(tag string) {
	if debug.Enabled() {
		debug.Log(tag, "flex.Array count=%d bytes=%d %s", a.Count(), a.Bytes(), a.GoString())
	}
}

// RawBytes returns the backing buffer, header included. Two arrays built
// from the same sequence of inserts must return identical bytes here
// (spec.md §8's determinism requirement) — it exists mainly so tests can
// check that directly, and for on-disk/wire serialisation by callers.
func (a *Array) RawBytes() []byte {
	return a.buf
}

// Duplicate returns a deep, independent copy of a.
func (a *Array) Duplicate() *Array {
	buf := make([]byte, len(a.buf))
	copy(buf, a.buf)
	return &Array{buf: buf, mid: a.mid, midIdx: a.midIdx}
}
