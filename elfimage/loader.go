/*
 * rvsim - ELF loader (C3).
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
	"io"
	"log/slog"
	"os"
)

// byteRange is a half-open [begin, end) span of file bytes considered
// occupied, used to detect section/header overlap.
type byteRange struct {
	begin, end uint64
}

func (r byteRange) overlaps(o byteRange) bool {
	return r.begin < o.end && o.begin < r.end
}

// Open loads a complete ELF image: headers, section buffers and symbol
// indices.
func Open(path string) (*Container, error) {
	return load(path, false)
}

// OpenHeadersOnly loads only the program and section header tables,
// skipping section buffer materialisation and symbol indexing.
func OpenHeadersOnly(path string) (*Container, error) {
	return load(path, true)
}

func load(path string, headersOnly bool) (c *Container, err error) {
	f, openErr := os.Open(path)
	if openErr != nil {
		return nil, newError("load", path, KindIO, openErr)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = newError("load", path, KindIO, cerr)
		}
	}()

	stat, statErr := f.Stat()
	if statErr != nil {
		return nil, newError("load", path, KindIO, statErr)
	}
	fileSize := uint64(stat.Size())

	ident := make([]byte, eiNIdent)
	if fileSize < eiNIdent {
		return nil, newError("load", path, KindInvalidMagic, nil)
	}
	if _, rerr := io.ReadFull(f, ident); rerr != nil {
		return nil, newError("load", path, KindIO, rerr)
	}
	if !bytes.Equal(ident[eiMag0:eiMag0+4], elfMagic[:]) {
		return nil, newError("load", path, KindInvalidMagic, nil)
	}

	class := Class(ident[eiClass])
	if class != Class32 && class != Class64 {
		return nil, newError("load", path, KindBadClass, nil)
	}
	data := Endianness(ident[eiData])
	if data != LSB && data != MSB {
		return nil, newError("load", path, KindBadEndian, nil)
	}

	c = NewContainer()
	c.Path = path
	c.Class = class
	c.Data = data

	ehdrBuf := make([]byte, EhdrSize(class))
	if _, serr := f.Seek(0, io.SeekStart); serr != nil {
		return nil, newError("load", path, KindIO, serr)
	}
	if _, rerr := io.ReadFull(f, ehdrBuf); rerr != nil {
		return nil, newError("load", path, KindIO, rerr)
	}
	hdr, derr := DecodeEhdr(ehdrBuf, class, data)
	if derr != nil {
		return nil, newError("load", path, KindIO, derr)
	}
	c.Header = hdr

	phdrEnd := hdr.Phoff + uint64(hdr.Phnum)*uint64(PhdrSize(class))
	shdrEnd := hdr.Shoff + uint64(hdr.Shnum)*uint64(ShdrSize(class))
	if phdrEnd > fileSize || shdrEnd > fileSize {
		return nil, newError("load", path, KindTruncatedHeaders, nil)
	}
	phdrRange := byteRange{hdr.Phoff, phdrEnd}
	shdrRange := byteRange{hdr.Shoff, shdrEnd}
	if phdrRange.overlaps(shdrRange) {
		return nil, newError("load", path, KindHeaderOverlap, nil)
	}

	if hdr.Version != EVCurrent {
		return nil, newError("load", path, KindBadVersion, nil)
	}

	occupied := []byteRange{phdrRange, shdrRange}

	phdrBuf := make([]byte, PhdrSize(class))
	for i := 0; i < int(hdr.Phnum); i++ {
		off := hdr.Phoff + uint64(i)*uint64(PhdrSize(class))
		if _, serr := f.Seek(int64(off), io.SeekStart); serr != nil {
			return nil, newError("load", path, KindIO, serr)
		}
		if _, rerr := io.ReadFull(f, phdrBuf); rerr != nil {
			return nil, newError("load", path, KindIO, rerr)
		}
		ph, derr := DecodePhdr(phdrBuf, class, data)
		if derr != nil {
			return nil, newError("load", path, KindIO, derr)
		}
		c.ProgHeaders = append(c.ProgHeaders, ph)
	}

	shdrBuf := make([]byte, ShdrSize(class))
	var shdrs []SectionHeader
	for i := 0; i < int(hdr.Shnum); i++ {
		off := hdr.Shoff + uint64(i)*uint64(ShdrSize(class))
		if _, serr := f.Seek(int64(off), io.SeekStart); serr != nil {
			return nil, newError("load", path, KindIO, serr)
		}
		if _, rerr := io.ReadFull(f, shdrBuf); rerr != nil {
			return nil, newError("load", path, KindIO, rerr)
		}
		sh, derr := DecodeShdr(shdrBuf, class, data)
		if derr != nil {
			return nil, newError("load", path, KindIO, derr)
		}
		shdrs = append(shdrs, sh)
	}

	if headersOnly {
		c.Sections = make([]Section, len(shdrs))
		for i, sh := range shdrs {
			c.Sections[i] = Section{Header: sh}
		}
		return c, nil
	}

	for i, sh := range shdrs {
		if sh.Type == SHTStrTab && int(hdr.Shstrndx) == i {
			c.ShstrtabIdx = i
		} else if c.SymtabIdx == 0 && sh.Type == SHTSymTab {
			c.SymtabIdx = i
			if sh.Link > 0 {
				if int(sh.Link) >= len(shdrs) {
					slog.Debug("symtab sh_link out of range", "path", path, "link", sh.Link, "nsections", len(shdrs))
				} else {
					c.StrtabIdx = int(sh.Link)
				}
			}
		}
	}

	c.Sections = make([]Section, len(shdrs))
	for i, sh := range shdrs {
		c.Sections[i].Header = sh
		if sh.Type == SHTNoBits {
			continue
		}
		sectionEnd := sh.Offset + sh.Size
		sectionRange := byteRange{sh.Offset, sectionEnd}
		for _, r := range occupied {
			if sectionRange.overlaps(r) {
				return nil, newError("load", path, KindSectionOverlap, nil)
			}
		}
		if sectionEnd > fileSize {
			return nil, newError("load", path, KindSectionTruncated, nil)
		}
		buf := make([]byte, sh.Size)
		if sh.Size > 0 {
			if _, serr := f.Seek(int64(sh.Offset), io.SeekStart); serr != nil {
				return nil, newError("load", path, KindIO, serr)
			}
			if _, rerr := io.ReadFull(f, buf); rerr != nil {
				return nil, newError("load", path, KindIO, rerr)
			}
		}
		c.Sections[i].Data = buf
		occupied = append(occupied, sectionRange)
	}

	if err := c.MaterialiseSymbols(); err != nil {
		return nil, newError("load", path, KindIO, err)
	}
	// Re-encode the symtab buffer in hostEndian, the order it is kept in
	// between operations.
	if err := flushSymbolTable(c, hostEndian); err != nil {
		return nil, newError("load", path, KindIO, err)
	}
	c.RebuildIndices()

	return c, nil
}
