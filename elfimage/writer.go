/*
 * rvsim - ELF writer (C4).
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
	"fmt"
	"log/slog"
	"os"
)

// hostEndian is the byte order the in-memory symbol-table section buffer
// is kept in between operations. Callers reading the symtab section's
// Data between calls see these bytes; the buffer is re-encoded to the
// file's endianness only for the duration of a write.
const hostEndian = LSB

// Write narrows and byte-swaps a container back to its original class
// and endianness and writes it to path.
func Write(c *Container, path string) (err error) {
	if err := flushSymbolTable(c, hostEndian); err != nil {
		return newError("save", path, KindNarrowOverflow, err)
	}
	if err := recomputeOffsets(c); err != nil {
		return newError("save", path, KindIO, err)
	}

	f, createErr := os.Create(path)
	if createErr != nil {
		return newError("save", path, KindIO, createErr)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = newError("save", path, KindIO, cerr)
		}
	}()

	ehdrBuf, eerr := EncodeEhdr(c.Header, c.Class, c.Data)
	if eerr != nil {
		return newError("save", path, KindNarrowOverflow, eerr)
	}
	if _, werr := f.WriteAt(ehdrBuf, 0); werr != nil {
		return newError("save", path, KindIO, werr)
	}

	phdrSize := PhdrSize(c.Class)
	for i, ph := range c.ProgHeaders {
		buf, perr := EncodePhdr(ph, c.Class, c.Data)
		if perr != nil {
			return newError("save", path, KindNarrowOverflow, perr)
		}
		off := int64(c.Header.Phoff) + int64(i)*int64(phdrSize)
		if _, werr := f.WriteAt(buf, off); werr != nil {
			return newError("save", path, KindIO, werr)
		}
	}

	shdrSize := ShdrSize(c.Class)
	for i, sec := range c.Sections {
		buf, serr := EncodeShdr(sec.Header, c.Class, c.Data)
		if serr != nil {
			return newError("save", path, KindNarrowOverflow, serr)
		}
		off := int64(c.Header.Shoff) + int64(i)*int64(shdrSize)
		if _, werr := f.WriteAt(buf, off); werr != nil {
			return newError("save", path, KindIO, werr)
		}
	}

	if err := flushSymbolTable(c, c.Data); err != nil {
		return newError("save", path, KindNarrowOverflow, err)
	}
	for _, sec := range c.Sections {
		if sec.Header.Type == SHTNoBits {
			continue
		}
		if _, werr := f.WriteAt(sec.Data, int64(sec.Header.Offset)); werr != nil {
			return newError("save", path, KindIO, werr)
		}
	}
	if err := flushSymbolTable(c, hostEndian); err != nil {
		return newError("save", path, KindNarrowOverflow, err)
	}

	slog.Debug("wrote ELF image", "path", path, "sections", len(c.Sections), "phdrs", len(c.ProgHeaders))
	return nil
}

// flushSymbolTable regenerates the symbol-table section buffer from the
// normalised symbol list, encoded with order. Step 1 of §4.3 and the
// transient file-endian re-encoding of §4.3 step 5 both call through here.
func flushSymbolTable(c *Container, order Endianness) error {
	if c.SymtabIdx == 0 {
		return nil
	}
	entSize := SymSize(c.Class)
	buf := make([]byte, len(c.Symbols)*entSize)
	for i, sym := range c.Symbols {
		enc, err := EncodeSym(sym, c.Class, order)
		if err != nil {
			return err
		}
		copy(buf[i*entSize:], enc)
	}
	c.Sections[c.SymtabIdx].Data = buf
	c.Sections[c.SymtabIdx].Header.Size = uint64(len(buf))
	return nil
}

// recomputeOffsets lays out the program-header table immediately after
// the file header, then walks sections in order assigning file offsets:
// PROGBITS sections with a non-zero sh_addr are placed so that
// sh_offset - p_offset == sh_addr - p_vaddr of the sole PT_LOAD segment;
// other sections round up to their sh_addralign. Section 0 (the null
// section) is forced to offset 0.
func recomputeOffsets(c *Container) error {
	c.Header.Phnum = uint16(len(c.ProgHeaders))
	c.Header.Shnum = uint16(len(c.Sections))

	next := uint64(EhdrSize(c.Class))
	c.Header.Phoff = next
	next += uint64(len(c.ProgHeaders)) * uint64(PhdrSize(c.Class))

	for i := range c.Sections {
		sh := &c.Sections[i].Header
		if sh.Type == SHTProgBits && sh.Addr != 0 {
			load, err := solePTLoad(c.ProgHeaders)
			if err != nil {
				slog.Debug("writer rejected non-single PT_LOAD layout", "section", i, "name", c.SectionName(i))
				return fmt.Errorf("section %d (%q): %w", i, c.SectionName(i), err)
			}
			next = (sh.Addr - load.Vaddr) + load.Offset
		} else if sh.Addralign > 0 {
			next = alignUp(next, sh.Addralign)
		}
		if i == 0 {
			sh.Offset = 0
		} else {
			sh.Offset = next
		}
		if sh.Type != SHTNoBits {
			sh.Size = uint64(len(c.Sections[i].Data))
		}
		next += sh.Size
	}
	c.Header.Shoff = next
	return nil
}

func solePTLoad(phdrs []ProgHeader) (ProgHeader, error) {
	var found ProgHeader
	count := 0
	for _, ph := range phdrs {
		if ph.Type == PTLoad {
			found = ph
			count++
		}
	}
	if count != 1 {
		return ProgHeader{}, fmt.Errorf("writer requires exactly one PT_LOAD segment to relocate PROGBITS sections, found %d", count)
	}
	return found, nil
}

func alignUp(offset, align uint64) uint64 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}
