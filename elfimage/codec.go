/*
 * rvsim - endianness and field-width codecs (C1).
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
	"encoding/binary"
	"fmt"
)

func byteOrder(data Endianness) binary.ByteOrder {
	if data == MSB {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// DecodeEhdr widens a class-sized file header into its 64-bit normal form.
func DecodeEhdr(buf []byte, class Class, data Endianness) (Header, error) {
	ord := byteOrder(data)
	var h Header
	if len(buf) < EhdrSize(class) {
		return h, fmt.Errorf("ehdr buffer too small")
	}
	copy(h.Ident[:], buf[0:16])
	h.Type = ord.Uint16(buf[16:18])
	h.Machine = ord.Uint16(buf[18:20])
	h.Version = ord.Uint32(buf[20:24])
	switch class {
	case Class32:
		h.Entry = uint64(ord.Uint32(buf[24:28]))
		h.Phoff = uint64(ord.Uint32(buf[28:32]))
		h.Shoff = uint64(ord.Uint32(buf[32:36]))
		h.Flags = ord.Uint32(buf[36:40])
		h.Ehsize = ord.Uint16(buf[40:42])
		h.Phentsize = ord.Uint16(buf[42:44])
		h.Phnum = ord.Uint16(buf[44:46])
		h.Shentsize = ord.Uint16(buf[46:48])
		h.Shnum = ord.Uint16(buf[48:50])
		h.Shstrndx = ord.Uint16(buf[50:52])
	case Class64:
		h.Entry = ord.Uint64(buf[24:32])
		h.Phoff = ord.Uint64(buf[32:40])
		h.Shoff = ord.Uint64(buf[40:48])
		h.Flags = ord.Uint32(buf[48:52])
		h.Ehsize = ord.Uint16(buf[52:54])
		h.Phentsize = ord.Uint16(buf[54:56])
		h.Phnum = ord.Uint16(buf[56:58])
		h.Shentsize = ord.Uint16(buf[58:60])
		h.Shnum = ord.Uint16(buf[60:62])
		h.Shstrndx = ord.Uint16(buf[62:64])
	default:
		return h, fmt.Errorf("unknown class %v", class)
	}
	return h, nil
}

// EncodeEhdr narrows the 64-bit normal form back to a class-sized buffer.
// Fields that do not fit a 32-bit target produce an error, which Write
// reports as KindNarrowOverflow.
func EncodeEhdr(h Header, class Class, data Endianness) ([]byte, error) {
	ord := byteOrder(data)
	buf := make([]byte, EhdrSize(class))
	copy(buf[0:16], h.Ident[:])
	ord.PutUint16(buf[16:18], h.Type)
	ord.PutUint16(buf[18:20], h.Machine)
	ord.PutUint32(buf[20:24], h.Version)
	switch class {
	case Class32:
		entry, err := narrow32(h.Entry)
		if err != nil {
			return nil, err
		}
		phoff, err := narrow32(h.Phoff)
		if err != nil {
			return nil, err
		}
		shoff, err := narrow32(h.Shoff)
		if err != nil {
			return nil, err
		}
		ord.PutUint32(buf[24:28], entry)
		ord.PutUint32(buf[28:32], phoff)
		ord.PutUint32(buf[32:36], shoff)
		ord.PutUint32(buf[36:40], h.Flags)
		ord.PutUint16(buf[40:42], h.Ehsize)
		ord.PutUint16(buf[42:44], h.Phentsize)
		ord.PutUint16(buf[44:46], h.Phnum)
		ord.PutUint16(buf[46:48], h.Shentsize)
		ord.PutUint16(buf[48:50], h.Shnum)
		ord.PutUint16(buf[50:52], h.Shstrndx)
	case Class64:
		ord.PutUint64(buf[24:32], h.Entry)
		ord.PutUint64(buf[32:40], h.Phoff)
		ord.PutUint64(buf[40:48], h.Shoff)
		ord.PutUint32(buf[48:52], h.Flags)
		ord.PutUint16(buf[52:54], h.Ehsize)
		ord.PutUint16(buf[54:56], h.Phentsize)
		ord.PutUint16(buf[56:58], h.Phnum)
		ord.PutUint16(buf[58:60], h.Shentsize)
		ord.PutUint16(buf[60:62], h.Shnum)
		ord.PutUint16(buf[62:64], h.Shstrndx)
	default:
		return nil, fmt.Errorf("unknown class %v", class)
	}
	return buf, nil
}

// DecodePhdr widens a class-sized program header to 64 bits.
func DecodePhdr(buf []byte, class Class, data Endianness) (ProgHeader, error) {
	ord := byteOrder(data)
	var p ProgHeader
	if len(buf) < PhdrSize(class) {
		return p, fmt.Errorf("phdr buffer too small")
	}
	switch class {
	case Class32:
		p.Type = ord.Uint32(buf[0:4])
		p.Offset = uint64(ord.Uint32(buf[4:8]))
		p.Vaddr = uint64(ord.Uint32(buf[8:12]))
		p.Paddr = uint64(ord.Uint32(buf[12:16]))
		p.Filesz = uint64(ord.Uint32(buf[16:20]))
		p.Memsz = uint64(ord.Uint32(buf[20:24]))
		p.Flags = ord.Uint32(buf[24:28])
		p.Align = uint64(ord.Uint32(buf[28:32]))
	case Class64:
		p.Type = ord.Uint32(buf[0:4])
		p.Flags = ord.Uint32(buf[4:8])
		p.Offset = ord.Uint64(buf[8:16])
		p.Vaddr = ord.Uint64(buf[16:24])
		p.Paddr = ord.Uint64(buf[24:32])
		p.Filesz = ord.Uint64(buf[32:40])
		p.Memsz = ord.Uint64(buf[40:48])
		p.Align = ord.Uint64(buf[48:56])
	default:
		return p, fmt.Errorf("unknown class %v", class)
	}
	return p, nil
}

// EncodePhdr narrows a program header back to its class-sized form.
func EncodePhdr(p ProgHeader, class Class, data Endianness) ([]byte, error) {
	ord := byteOrder(data)
	buf := make([]byte, PhdrSize(class))
	switch class {
	case Class32:
		offset, err := narrow32(p.Offset)
		if err != nil {
			return nil, err
		}
		vaddr, err := narrow32(p.Vaddr)
		if err != nil {
			return nil, err
		}
		paddr, err := narrow32(p.Paddr)
		if err != nil {
			return nil, err
		}
		filesz, err := narrow32(p.Filesz)
		if err != nil {
			return nil, err
		}
		memsz, err := narrow32(p.Memsz)
		if err != nil {
			return nil, err
		}
		align, err := narrow32(p.Align)
		if err != nil {
			return nil, err
		}
		ord.PutUint32(buf[0:4], p.Type)
		ord.PutUint32(buf[4:8], offset)
		ord.PutUint32(buf[8:12], vaddr)
		ord.PutUint32(buf[12:16], paddr)
		ord.PutUint32(buf[16:20], filesz)
		ord.PutUint32(buf[20:24], memsz)
		ord.PutUint32(buf[24:28], p.Flags)
		ord.PutUint32(buf[28:32], align)
	case Class64:
		ord.PutUint32(buf[0:4], p.Type)
		ord.PutUint32(buf[4:8], p.Flags)
		ord.PutUint64(buf[8:16], p.Offset)
		ord.PutUint64(buf[16:24], p.Vaddr)
		ord.PutUint64(buf[24:32], p.Paddr)
		ord.PutUint64(buf[32:40], p.Filesz)
		ord.PutUint64(buf[40:48], p.Memsz)
		ord.PutUint64(buf[48:56], p.Align)
	default:
		return nil, fmt.Errorf("unknown class %v", class)
	}
	return buf, nil
}

// DecodeShdr widens a class-sized section header to 64 bits.
func DecodeShdr(buf []byte, class Class, data Endianness) (SectionHeader, error) {
	ord := byteOrder(data)
	var s SectionHeader
	if len(buf) < ShdrSize(class) {
		return s, fmt.Errorf("shdr buffer too small")
	}
	switch class {
	case Class32:
		s.Name = ord.Uint32(buf[0:4])
		s.Type = ord.Uint32(buf[4:8])
		s.Flags = uint64(ord.Uint32(buf[8:12]))
		s.Addr = uint64(ord.Uint32(buf[12:16]))
		s.Offset = uint64(ord.Uint32(buf[16:20]))
		s.Size = uint64(ord.Uint32(buf[20:24]))
		s.Link = ord.Uint32(buf[24:28])
		s.Info = ord.Uint32(buf[28:32])
		s.Addralign = uint64(ord.Uint32(buf[32:36]))
		s.Entsize = uint64(ord.Uint32(buf[36:40]))
	case Class64:
		s.Name = ord.Uint32(buf[0:4])
		s.Type = ord.Uint32(buf[4:8])
		s.Flags = ord.Uint64(buf[8:16])
		s.Addr = ord.Uint64(buf[16:24])
		s.Offset = ord.Uint64(buf[24:32])
		s.Size = ord.Uint64(buf[32:40])
		s.Link = ord.Uint32(buf[40:44])
		s.Info = ord.Uint32(buf[44:48])
		s.Addralign = ord.Uint64(buf[48:56])
		s.Entsize = ord.Uint64(buf[56:64])
	default:
		return s, fmt.Errorf("unknown class %v", class)
	}
	return s, nil
}

// EncodeShdr narrows a section header back to its class-sized form.
func EncodeShdr(s SectionHeader, class Class, data Endianness) ([]byte, error) {
	ord := byteOrder(data)
	buf := make([]byte, ShdrSize(class))
	switch class {
	case Class32:
		flags, err := narrow32(s.Flags)
		if err != nil {
			return nil, err
		}
		addr, err := narrow32(s.Addr)
		if err != nil {
			return nil, err
		}
		offset, err := narrow32(s.Offset)
		if err != nil {
			return nil, err
		}
		size, err := narrow32(s.Size)
		if err != nil {
			return nil, err
		}
		align, err := narrow32(s.Addralign)
		if err != nil {
			return nil, err
		}
		entsize, err := narrow32(s.Entsize)
		if err != nil {
			return nil, err
		}
		ord.PutUint32(buf[0:4], s.Name)
		ord.PutUint32(buf[4:8], s.Type)
		ord.PutUint32(buf[8:12], flags)
		ord.PutUint32(buf[12:16], addr)
		ord.PutUint32(buf[16:20], offset)
		ord.PutUint32(buf[20:24], size)
		ord.PutUint32(buf[24:28], s.Link)
		ord.PutUint32(buf[28:32], s.Info)
		ord.PutUint32(buf[32:36], align)
		ord.PutUint32(buf[36:40], entsize)
	case Class64:
		ord.PutUint32(buf[0:4], s.Name)
		ord.PutUint32(buf[4:8], s.Type)
		ord.PutUint64(buf[8:16], s.Flags)
		ord.PutUint64(buf[16:24], s.Addr)
		ord.PutUint64(buf[24:32], s.Offset)
		ord.PutUint64(buf[32:40], s.Size)
		ord.PutUint32(buf[40:44], s.Link)
		ord.PutUint32(buf[44:48], s.Info)
		ord.PutUint64(buf[48:56], s.Addralign)
		ord.PutUint64(buf[56:64], s.Entsize)
	default:
		return nil, fmt.Errorf("unknown class %v", class)
	}
	return buf, nil
}

// DecodeSym widens a class-sized symbol-table entry to 64 bits. st_info
// and st_other are already byte-sized in both classes and carried through
// byte-exact.
func DecodeSym(buf []byte, class Class, data Endianness) (Symbol, error) {
	ord := byteOrder(data)
	var sym Symbol
	if len(buf) < SymSize(class) {
		return sym, fmt.Errorf("sym buffer too small")
	}
	switch class {
	case Class32:
		sym.Name = ord.Uint32(buf[0:4])
		sym.Value = uint64(ord.Uint32(buf[4:8]))
		sym.Size = uint64(ord.Uint32(buf[8:12]))
		sym.Info = buf[12]
		sym.Other = buf[13]
		sym.Shndx = ord.Uint16(buf[14:16])
	case Class64:
		sym.Name = ord.Uint32(buf[0:4])
		sym.Info = buf[4]
		sym.Other = buf[5]
		sym.Shndx = ord.Uint16(buf[6:8])
		sym.Value = ord.Uint64(buf[8:16])
		sym.Size = ord.Uint64(buf[16:24])
	default:
		return sym, fmt.Errorf("unknown class %v", class)
	}
	return sym, nil
}

// EncodeSym narrows a symbol-table entry back to its class-sized form.
func EncodeSym(sym Symbol, class Class, data Endianness) ([]byte, error) {
	ord := byteOrder(data)
	buf := make([]byte, SymSize(class))
	switch class {
	case Class32:
		value, err := narrow32(sym.Value)
		if err != nil {
			return nil, err
		}
		size, err := narrow32(sym.Size)
		if err != nil {
			return nil, err
		}
		ord.PutUint32(buf[0:4], sym.Name)
		ord.PutUint32(buf[4:8], value)
		ord.PutUint32(buf[8:12], size)
		buf[12] = sym.Info
		buf[13] = sym.Other
		ord.PutUint16(buf[14:16], sym.Shndx)
	case Class64:
		ord.PutUint32(buf[0:4], sym.Name)
		buf[4] = sym.Info
		buf[5] = sym.Other
		ord.PutUint16(buf[6:8], sym.Shndx)
		ord.PutUint64(buf[8:16], sym.Value)
		ord.PutUint64(buf[16:24], sym.Size)
	default:
		return nil, fmt.Errorf("unknown class %v", class)
	}
	return buf, nil
}

func narrow32(v uint64) (uint32, error) {
	if v > 0xffffffff {
		return 0, fmt.Errorf("value %#x does not fit 32 bits", v)
	}
	return uint32(v), nil
}
