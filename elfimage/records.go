/*
 * rvsim - normalised 64-bit ELF record types.
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

// Header is the ELF file header widened to 64 bits regardless of the
// file's class. e_ident's class and data bytes are also recorded
// separately on Container; Ident here keeps the full 16 bytes for round-tripping
// OS ABI and padding bytes untouched.
type Header struct {
	Ident     [16]byte
	Type      uint16
	Machine   uint16
	Version   uint32
	Entry     uint64
	Phoff     uint64
	Shoff     uint64
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

// ProgHeader is a program header (segment descriptor) widened to 64 bits.
type ProgHeader struct {
	Type   uint32
	Flags  uint32
	Offset uint64
	Vaddr  uint64
	Paddr  uint64
	Filesz uint64
	Memsz  uint64
	Align  uint64
}

// SectionHeader is a section header widened to 64 bits.
type SectionHeader struct {
	Name      uint32
	Type      uint32
	Flags     uint64
	Addr      uint64
	Offset    uint64
	Size      uint64
	Link      uint32
	Info      uint32
	Addralign uint64
	Entsize   uint64
}

// Symbol is a symbol-table entry widened to 64 bits. Info/Other are
// already byte-sized in both classes and are carried through unchanged.
type Symbol struct {
	Name  uint32
	Info  uint8
	Other uint8
	Shndx uint16
	Value uint64
	Size  uint64
}

// Section is a section header plus its owned file-offset bytes. Data is
// nil for SHT_NOBITS sections, which occupy no file bytes.
type Section struct {
	Header SectionHeader
	Data   []byte
}

// Record byte sizes per class, per the gABI layouts.
const (
	ehdrSize32 = 52
	ehdrSize64 = 64
	phdrSize32 = 32
	phdrSize64 = 56
	shdrSize32 = 40
	shdrSize64 = 64
	symSize32  = 16
	symSize64  = 24
)

// EhdrSize returns the on-disk file-header size for class.
func EhdrSize(class Class) int {
	if class == Class32 {
		return ehdrSize32
	}
	return ehdrSize64
}

// PhdrSize returns the on-disk program-header record size for class.
func PhdrSize(class Class) int {
	if class == Class32 {
		return phdrSize32
	}
	return phdrSize64
}

// ShdrSize returns the on-disk section-header record size for class.
func ShdrSize(class Class) int {
	if class == Class32 {
		return shdrSize32
	}
	return shdrSize64
}

// SymSize returns the on-disk symbol-record size for class.
func SymSize(class Class) int {
	if class == Class32 {
		return symSize32
	}
	return symSize64
}
