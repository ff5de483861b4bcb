/*
 * rvsim - in-memory ELF container and symbol indices (C2, C4.4).
 *
 * Copyright 2025, rvsim contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package elfimage

import (
	"bytes"
	"fmt"
	"sort"
)

// Container is the normalised, in-memory representation of an ELF file.
// All header fields are widened to 64 bits regardless of the source
// class; Class and Data record the original file's word size and byte
// order so Write can narrow and byte-swap back to them.
type Container struct {
	Path string
	Class
	Data Endianness

	Header      Header
	ProgHeaders []ProgHeader
	Sections    []Section
	Symbols     []Symbol

	// Section-table positions of the section-header string table, the
	// symbol table and its associated string table, or 0 if absent.
	ShstrtabIdx int
	SymtabIdx   int
	StrtabIdx   int

	addrIndex   map[uint64]int
	nameIndex   map[string]int
	sortedAddrs []uint64
}

// NewContainer returns an empty container ready to be populated by Open.
func NewContainer() *Container {
	return &Container{
		addrIndex: make(map[uint64]int),
		nameIndex: make(map[string]int),
	}
}

// SectionName returns the name of section i from the section-header
// string table, or "" if there is no shstrtab or i is out of range.
func (c *Container) SectionName(i int) string {
	if c.ShstrtabIdx == 0 || i < 0 || i >= len(c.Sections) {
		return ""
	}
	return c.cstringAt(c.ShstrtabIdx, c.Sections[i].Header.Name)
}

// SymbolName returns the name of symbol i from the symbol string table.
func (c *Container) SymbolName(i int) string {
	if c.StrtabIdx == 0 || i < 0 || i >= len(c.Symbols) {
		return ""
	}
	return c.cstringAt(c.StrtabIdx, c.Symbols[i].Name)
}

// SymbolNameOf is SymbolName for a symbol reference rather than an index.
func (c *Container) SymbolNameOf(sym *Symbol) string {
	if c.StrtabIdx == 0 || sym == nil {
		return ""
	}
	return c.cstringAt(c.StrtabIdx, sym.Name)
}

func (c *Container) cstringAt(sectionIdx int, nameOff uint32) string {
	if sectionIdx < 0 || sectionIdx >= len(c.Sections) {
		return ""
	}
	data := c.Sections[sectionIdx].Data
	off := int(nameOff)
	if off < 0 || off >= len(data) {
		return ""
	}
	end := bytes.IndexByte(data[off:], 0)
	if end < 0 {
		return string(data[off:])
	}
	return string(data[off : off+end])
}

// SectionIndexByType returns the index of the first section whose sh_type
// equals t, or 0 if no section matches. Index 0 is also the null
// section's own index; callers that care must check the type themselves.
func (c *Container) SectionIndexByType(t uint32) int {
	for i, s := range c.Sections {
		if s.Header.Type == t {
			return i
		}
	}
	return 0
}

// Offset locates the section and in-section byte offset that owns a given
// file offset. The scan is linear and first-match; section counts are
// small enough that a sorted structure is not worth the tie-breaking
// questions it would raise on malformed inputs.
func (c *Container) Offset(fileOffset uint64) (sectionIndex int, inSection uint64, ok bool) {
	for i, s := range c.Sections {
		start := s.Header.Offset
		end := start + uint64(len(s.Data))
		if fileOffset >= start && fileOffset < end {
			return i, fileOffset - start, true
		}
	}
	return 0, 0, false
}

// ByteAt returns the tail of the section buffer beginning at fileOffset,
// scoped to the container's lifetime. An offset no section covers is an
// error, not a panic; callers may pass offsets taken from untrusted
// files.
func (c *Container) ByteAt(fileOffset uint64) ([]byte, error) {
	idx, off, ok := c.Offset(fileOffset)
	if !ok {
		return nil, fmt.Errorf("elfimage: offset %#x is not covered by any section", fileOffset)
	}
	return c.Sections[idx].Data[off:], nil
}

// MaterialiseSymbols widens every entry of the symbol-table section into
// Symbols. It is a no-op if no symbol table was found.
func (c *Container) MaterialiseSymbols() error {
	c.Symbols = c.Symbols[:0]
	if c.SymtabIdx == 0 {
		return nil
	}
	sh := c.Sections[c.SymtabIdx].Header
	if sh.Entsize != uint64(SymSize(c.Class)) {
		return fmt.Errorf("elfimage: symtab sh_entsize %d does not match class symbol size %d", sh.Entsize, SymSize(c.Class))
	}
	data := c.Sections[c.SymtabIdx].Data
	entSize := SymSize(c.Class)
	count := len(data) / entSize
	for i := 0; i < count; i++ {
		sym, err := DecodeSym(data[i*entSize:], c.Class, c.Data)
		if err != nil {
			return err
		}
		c.Symbols = append(c.Symbols, sym)
	}
	return nil
}

// RebuildIndices rebuilds the addr->symbol and name->symbol maps from
// Symbols and the associated string table. Symbols with a zero value or
// empty name are excluded. Ties on st_value resolve last-writer-wins.
func (c *Container) RebuildIndices() {
	c.addrIndex = make(map[uint64]int)
	c.nameIndex = make(map[string]int)
	if c.StrtabIdx == 0 {
		c.sortedAddrs = nil
		return
	}
	for i, sym := range c.Symbols {
		if sym.Value == 0 {
			continue
		}
		name := c.cstringAt(c.StrtabIdx, sym.Name)
		if name == "" {
			continue
		}
		c.nameIndex[name] = i
		c.addrIndex[sym.Value] = i
	}
	c.sortedAddrs = c.sortedAddrs[:0]
	for addr := range c.addrIndex {
		c.sortedAddrs = append(c.sortedAddrs, addr)
	}
	sort.Slice(c.sortedAddrs, func(i, j int) bool { return c.sortedAddrs[i] < c.sortedAddrs[j] })
}

// SymbolByAddress returns the symbol whose st_value equals a, exactly.
func (c *Container) SymbolByAddress(a uint64) (*Symbol, bool) {
	i, ok := c.addrIndex[a]
	if !ok {
		return nil, false
	}
	return &c.Symbols[i], true
}

// SymbolByNearestAddress returns the symbol with the greatest st_value
// less than or equal to a. If a is below every symbol's address it
// returns the minimum symbol instead of reporting a miss; callers that
// need a strict floor must compare the returned st_value against a.
func (c *Container) SymbolByNearestAddress(a uint64) (*Symbol, bool) {
	n := len(c.sortedAddrs)
	if n == 0 {
		return nil, false
	}
	idx := sort.Search(n, func(i int) bool { return c.sortedAddrs[i] >= a })
	exact := idx < n && c.sortedAddrs[idx] == a
	if !exact && idx > 0 {
		idx--
	}
	if idx >= n {
		idx = n - 1
	}
	return c.SymbolByAddress(c.sortedAddrs[idx])
}

// SymbolByName returns the symbol named n, or false if none is indexed.
func (c *Container) SymbolByName(n string) (*Symbol, bool) {
	i, ok := c.nameIndex[n]
	if !ok {
		return nil, false
	}
	return &c.Symbols[i], true
}

// UpdateSymbolAddress re-keys the address index from oldAddr to newAddr
// and writes the new value back into the symbol record. It is a no-op if
// oldAddr is not indexed or equals newAddr.
func (c *Container) UpdateSymbolAddress(oldAddr, newAddr uint64) {
	if oldAddr == newAddr {
		return
	}
	i, ok := c.addrIndex[oldAddr]
	if !ok {
		return
	}
	delete(c.addrIndex, oldAddr)
	c.Symbols[i].Value = newAddr
	c.addrIndex[newAddr] = i
	for j, addr := range c.sortedAddrs {
		if addr == oldAddr {
			c.sortedAddrs = append(c.sortedAddrs[:j], c.sortedAddrs[j+1:]...)
			break
		}
	}
	idx := sort.Search(len(c.sortedAddrs), func(i int) bool { return c.sortedAddrs[i] >= newAddr })
	c.sortedAddrs = append(c.sortedAddrs, 0)
	copy(c.sortedAddrs[idx+1:], c.sortedAddrs[idx:])
	c.sortedAddrs[idx] = newAddr
}
