/*
 * rvsim - Sv32/Sv39/Sv48 page table layout descriptors (C5).
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

// Package pagetable describes the bit layout of the RV32/RV64 Sv32, Sv39
// and Sv48 paging modes. It is pure data: level counts, per-level VPN
// widths, PPN widths and PTE flag positions. No walker, no TLB, no
// translation logic lives here; those are MMU policy, explicitly out of
// scope.
package pagetable

// Flag is a single-bit mask selecting one bit of a page-table entry.
type Flag uint64

// PTE flag bits, common to Sv32, Sv39 and Sv48.
const (
	FlagV     Flag = 1 << 0 // Valid
	FlagR     Flag = 1 << 1 // Read
	FlagW     Flag = 1 << 2 // Write
	FlagX     Flag = 1 << 3 // Execute
	FlagU     Flag = 1 << 4 // User
	FlagG     Flag = 1 << 5 // Global
	FlagA     Flag = 1 << 6 // Accessed
	FlagD     Flag = 1 << 7 // Dirty
	FlagRsrv1 Flag = 1 << 8 // Reserved for software
	FlagRsrv2 Flag = 1 << 9 // Reserved for software
)

// PageOffsetBits is the number of low-order bits common to every mode's
// virtual and physical addresses: a 4 KiB page.
const PageOffsetBits = 12

// Mode describes one paging scheme's static layout: the number of
// translation levels, the VPN width consumed at each level (ordered from
// level 0, the least-significant), and the resulting physical page number
// width.
type Mode struct {
	Name     string
	Levels   int
	VPNBits  []int // per level, level 0 first
	PPNBits  int
	FlagBits int
	PTEBytes int
}

// Sv32 is the two-level 32-bit paging mode: a single 10-bit VPN per level,
// a 22-bit PPN and 4-byte PTEs.
var Sv32 = Mode{
	Name:     "Sv32",
	Levels:   2,
	VPNBits:  []int{10, 10},
	PPNBits:  22,
	FlagBits: 10,
	PTEBytes: 4,
}

// Sv39 is the three-level 64-bit paging mode: three 9-bit VPN fields and a
// 38-bit PPN.
var Sv39 = Mode{
	Name:     "Sv39",
	Levels:   3,
	VPNBits:  []int{9, 9, 9},
	PPNBits:  38,
	FlagBits: 10,
	PTEBytes: 8,
}

// Sv48 is the four-level 64-bit paging mode: four 9-bit VPN fields and a
// 38-bit PPN.
var Sv48 = Mode{
	Name:     "Sv48",
	Levels:   4,
	VPNBits:  []int{9, 9, 9, 9},
	PPNBits:  38,
	FlagBits: 10,
	PTEBytes: 8,
}

// VAWidth returns the number of virtual-address bits this mode addresses:
// the page offset plus the sum of every level's VPN field.
func (m Mode) VAWidth() int {
	w := PageOffsetBits
	for _, b := range m.VPNBits {
		w += b
	}
	return w
}

// VPNShift returns the bit offset of VPN[level] within a virtual address,
// level 0 being the least-significant (innermost) field.
func (m Mode) VPNShift(level int) int {
	shift := PageOffsetBits
	for i := 0; i < level; i++ {
		shift += m.VPNBits[i]
	}
	return shift
}

// VPNMask returns the bitmask selecting VPN[level] once shifted into
// position by VPNShift.
func (m Mode) VPNMask(level int) uint64 {
	return (uint64(1) << m.VPNBits[level]) - 1
}

// VPN extracts VPN[level] from a virtual address.
func (m Mode) VPN(va uint64, level int) uint64 {
	return (va >> m.VPNShift(level)) & m.VPNMask(level)
}

// PPNMask returns the bitmask selecting the PPN field of a PTE once shifted
// past FlagBits.
func (m Mode) PPNMask() uint64 {
	return (uint64(1) << m.PPNBits) - 1
}

// PPN extracts the physical page number from a raw PTE value.
func (m Mode) PPN(pte uint64) uint64 {
	return (pte >> m.FlagBits) & m.PPNMask()
}

// Has reports whether pte has every bit of flags set.
func Has(pte uint64, flags Flag) bool {
	return pte&uint64(flags) == uint64(flags)
}
