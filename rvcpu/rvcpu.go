/*
 * rvsim - RISC-V processor state (C6).
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

// Package rvcpu holds the architectural state of a RISC-V hart: integer
// and floating-point register files, the program counter, the floating
// point control/status bits, and the single-reservation LR/SC slot. It
// carries no instruction semantics of its own; rvcpu.State is read and
// mutated by the interp package.
package rvcpu

// XLen selects the integer register width the state is interpreted at.
type XLen int

const (
	XLen32 XLen = 32
	XLen64 XLen = 64
)

// Rounding-mode encodings for FCSR bits [7:5] / the standalone rm operand.
const (
	RMRNE = 0x0 // round to nearest, ties to even
	RMRTZ = 0x1 // round towards zero
	RMRDN = 0x2 // round down (towards -inf)
	RMRUP = 0x3 // round up (towards +inf)
	RMRMM = 0x4 // round to nearest, ties to max magnitude
	RMDyn = 0x7 // use the dynamic rounding mode in FCSR
)

// FCSR bit layout: accrued exception flags occupy [4:0], the rounding
// mode occupies [7:5].
const (
	FFlagNX uint8 = 1 << 0 // inexact
	FFlagUF uint8 = 1 << 1 // underflow
	FFlagOF uint8 = 1 << 2 // overflow
	FFlagDZ uint8 = 1 << 3 // divide by zero
	FFlagNV uint8 = 1 << 4 // invalid operation

	fcsrFlagMask = 0x1f
	fcsrRMShift  = 5
	fcsrRMMask   = 0x07
)

// Reservation is the single-slot LR/SC reservation set. It holds exactly
// one (valid, address) pair; the interpreter never implicitly clears it,
// not on a successful SC, an AMO, or an unrelated store. Each LR simply
// replaces it. A hardware reservation set would be invalidated far more
// eagerly; callers that need that behaviour can Clear explicitly.
type Reservation struct {
	Valid bool
	Addr  uint64
}

// Set establishes a reservation at addr, replacing any existing one.
func (r *Reservation) Set(addr uint64) {
	r.Valid = true
	r.Addr = addr
}

// Clear drops the current reservation, if any.
func (r *Reservation) Clear() {
	r.Valid = false
	r.Addr = 0
}

// Matches reports whether the reservation is valid and set at addr, the
// condition an SC must satisfy to succeed.
func (r *Reservation) Matches(addr uint64) bool {
	return r.Valid && r.Addr == addr
}

// State is the complete architectural state of one hart. Ireg[0] is
// wired to zero: SetInt discards writes to it and GetInt reads it as
// zero, so the interp package needs no rd == 0 special case of its own.
type State struct {
	XLen XLen

	PC   uint64
	Ireg [32]uint64
	Freg [32]uint64 // holds f32 values NaN-boxed into the low 32 bits, or a full f64

	FCSR uint8

	LR Reservation
}

// NewState returns a hart with PC and all registers zeroed.
func NewState(xlen XLen) *State {
	return &State{XLen: xlen}
}

// GetInt reads integer register i. Register 0 always reads as zero,
// regardless of what was last written to it.
func (s *State) GetInt(i int) uint64 {
	if i == 0 {
		return 0
	}
	return s.Ireg[i]
}

// SetInt writes integer register i, silently discarding writes to
// register 0.
func (s *State) SetInt(i int, v uint64) {
	if i == 0 {
		return
	}
	if s.XLen == XLen32 {
		v = uint64(uint32(v))
	}
	s.Ireg[i] = v
}

// GetFloat reads the raw bit pattern of floating-point register i.
func (s *State) GetFloat(i int) uint64 {
	return s.Freg[i]
}

// SetFloat writes the raw bit pattern of floating-point register i. There
// is no register-0 special case for the floating-point file.
func (s *State) SetFloat(i int, v uint64) {
	s.Freg[i] = v
}

// RoundingMode returns the effective rounding mode for an instruction
// whose rm field is rmField: RMDyn defers to the mode recorded in FCSR.
func (s *State) RoundingMode(rmField uint8) uint8 {
	if rmField == RMDyn {
		return (s.FCSR >> fcsrRMShift) & fcsrRMMask
	}
	return rmField
}

// SetAccruedFlags ORs flags into the FCSR accrued-exception bits.
func (s *State) SetAccruedFlags(flags uint8) {
	s.FCSR |= flags & fcsrFlagMask
}

// AccruedFlags returns the current FCSR accrued-exception bits.
func (s *State) AccruedFlags() uint8 {
	return s.FCSR & fcsrFlagMask
}
