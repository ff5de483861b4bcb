/*
 * rvsim - ELF class, endianness and type constants.
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

// Package elfimage implements a class- and endian-agnostic ELF container:
// load a 32- or 64-bit, little- or big-endian ELF image into a normalised
// 64-bit in-memory representation, index its symbol table, and write it
// back out in its original class and endianness.
package elfimage

// Class identifies the file's word size (ELFCLASS32 or ELFCLASS64).
type Class uint8

const (
	ClassNone Class = 0
	Class32   Class = 1
	Class64   Class = 2
)

func (c Class) String() string {
	switch c {
	case Class32:
		return "ELF32"
	case Class64:
		return "ELF64"
	default:
		return "ELFCLASSNONE"
	}
}

// Endianness identifies the file's byte order (ELFDATA2LSB or ELFDATA2MSB).
type Endianness uint8

const (
	DataNone Endianness = 0
	LSB      Endianness = 1
	MSB      Endianness = 2
)

func (e Endianness) String() string {
	switch e {
	case LSB:
		return "LSB"
	case MSB:
		return "MSB"
	default:
		return "ELFDATANONE"
	}
}

// e_ident indices.
const (
	eiMag0       = 0
	eiMag1       = 1
	eiMag2       = 2
	eiMag3       = 3
	eiClass      = 4
	eiData       = 5
	eiVersion    = 6
	eiOSABI      = 7
	eiABIVersion = 8
	eiPad        = 9
	eiNIdent     = 16
)

var elfMagic = [4]byte{0x7F, 'E', 'L', 'F'}

// EVCurrent is the only version this loader accepts (gABI EV_CURRENT).
const EVCurrent uint32 = 1

// e_type values.
const (
	ETNone uint16 = 0
	ETRel  uint16 = 1
	ETExec uint16 = 2
	ETDyn  uint16 = 3
	ETCore uint16 = 4
)

// e_machine values relevant to this simulator.
const (
	EMRISCV uint16 = 243
)

// Section header sh_type values.
const (
	SHTNull     uint32 = 0
	SHTProgBits uint32 = 1
	SHTSymTab   uint32 = 2
	SHTStrTab   uint32 = 3
	SHTRela     uint32 = 4
	SHTHash     uint32 = 5
	SHTDynamic  uint32 = 6
	SHTNote     uint32 = 7
	SHTNoBits   uint32 = 8
	SHTRel      uint32 = 9
	SHTDynSym   uint32 = 11
)

// Section header sh_flags bits.
const (
	SHFWrite     uint64 = 1 << 0
	SHFAlloc     uint64 = 1 << 1
	SHFExecInstr uint64 = 1 << 2
)

// Program header p_type values.
const (
	PTNull    uint32 = 0
	PTLoad    uint32 = 1
	PTDynamic uint32 = 2
	PTInterp  uint32 = 3
	PTNote    uint32 = 4
	PTPhdr    uint32 = 6
)

// Program header p_flags bits.
const (
	PFExec  uint32 = 1 << 0
	PFWrite uint32 = 1 << 1
	PFRead  uint32 = 1 << 2
)

// Symbol st_info accessors (binding in the high nibble, type in the low).
func SymBind(info uint8) uint8 { return info >> 4 }
func SymType(info uint8) uint8 { return info & 0xf }

func SymInfo(bind, typ uint8) uint8 { return (bind << 4) | (typ & 0xf) }

// Symbol binding values.
const (
	STBLocal  uint8 = 0
	STBGlobal uint8 = 1
	STBWeak   uint8 = 2
)

// Symbol type values.
const (
	STTNoType uint8 = 0
	STTObject uint8 = 1
	STTFunc   uint8 = 2
	STTSection uint8 = 3
	STTFile   uint8 = 4
)
