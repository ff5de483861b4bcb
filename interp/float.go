/*
 * rvsim - RV32F/RV64F/RV32D/RV64D floating point (C7).
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

package interp

import (
	"math"

	"github.com/rvsim/gorv/rvcpu"
	"github.com/rvsim/gorv/rvmem"
)

// canonicalNaN32/64 are the bit patterns substituted for any NaN result,
// per the single-valued-NaN convention the ISA mandates for FMIN/FMAX and
// for FMV.X.* reads of a NaN.
const (
	canonicalNaN32 uint32 = 0x7fc00000
	canonicalNaN64 uint64 = 0x7ff8000000000000
)

// isQuietNaN32/64 test the raw bit pattern against the quiet-NaN mask
// directly, rather than asking "is this NaN": FMIN/FMAX and FMV.X.* key
// their special cases off exactly this mask, which accepts any quiet NaN
// payload but (unlike a general IsNaN) does not accept a signalling NaN.
func isQuietNaN32(bits uint32) bool {
	return bits&canonicalNaN32 == canonicalNaN32
}

func isQuietNaN64(bits uint64) bool {
	return bits&canonicalNaN64 == canonicalNaN64
}

func executeFloat(st *rvcpu.State, mem rvmem.View, dec Decoded, pcOffset int64) (int64, error) {
	switch dec.Op {
	case OpFLW:
		v, err := mem.LoadF32(st.GetInt(dec.Rs1) + uint64(dec.Imm))
		if err != nil {
			return 0, err
		}
		st.SetFloat(dec.Rd, uint64(v)|0xffffffff00000000)
		return pcOffset, nil
	case OpFLD:
		v, err := mem.LoadF64(st.GetInt(dec.Rs1) + uint64(dec.Imm))
		if err != nil {
			return 0, err
		}
		st.SetFloat(dec.Rd, v)
		return pcOffset, nil
	case OpFSW:
		addr := st.GetInt(dec.Rs1) + uint64(dec.Imm)
		return pcOffset, mem.StoreF32(addr, uint32(st.GetFloat(dec.Rs2)))
	case OpFSD:
		addr := st.GetInt(dec.Rs1) + uint64(dec.Imm)
		return pcOffset, mem.StoreF64(addr, st.GetFloat(dec.Rs2))
	}

	if isSingle(dec.Op) {
		return executeFloatSingle(st, dec, pcOffset)
	}
	return executeFloatDouble(st, dec, pcOffset)
}

func isSingle(op Op) bool {
	switch op {
	case OpFMAddS, OpFMSubS, OpFNMSubS, OpFNMAddS, OpFSqrtS,
		OpFAddS, OpFSubS, OpFMulS, OpFDivS, OpFMinS, OpFMaxS,
		OpFSgnJS, OpFSgnJNS, OpFSgnJXS, OpFClassS, OpFMvXS, OpFMvSX,
		OpFCvtWS, OpFCvtWUS, OpFCvtSW, OpFCvtSWU,
		OpFCvtLS, OpFCvtLUS, OpFCvtSL, OpFCvtSLU, OpFEqS, OpFLtS, OpFLeS:
		return true
	}
	return false
}

// hasRoundingMode reports whether op carries an operand rounding mode per
// the ISA encoding: the arithmetic and conversion ops do, comparisons,
// sign-injection, classification and moves do not.
func hasRoundingMode(op Op) bool {
	switch op {
	case OpFMAddS, OpFMSubS, OpFNMSubS, OpFNMAddS, OpFSqrtS,
		OpFMAddD, OpFMSubD, OpFNMSubD, OpFNMAddD, OpFSqrtD,
		OpFAddS, OpFSubS, OpFMulS, OpFDivS,
		OpFCvtWS, OpFCvtWUS, OpFCvtSW, OpFCvtSWU, OpFCvtLS, OpFCvtLUS, OpFCvtSL, OpFCvtSLU,
		OpFAddD, OpFSubD, OpFMulD, OpFDivD,
		OpFCvtWD, OpFCvtWUD, OpFCvtDW, OpFCvtDWU, OpFCvtLD, OpFCvtLUD, OpFCvtDL, OpFCvtDLU,
		OpFCvtSD, OpFCvtDS:
		return true
	}
	return false
}

// applyRoundingMode resolves dec's rm field against FCSR's dynamic mode
// and reports the mode the following arithmetic op would use. Go's math
// package has no portable hook into the host FPU's rounding control
// word, so the resolved mode does not change results: every arithmetic
// result here is produced under round-to-nearest-even. A soft-float
// backend could honour the returned mode.
func applyRoundingMode(st *rvcpu.State, dec Decoded) uint8 {
	if !hasRoundingMode(dec.Op) {
		return rvcpu.RMRNE
	}
	return st.RoundingMode(dec.RM)
}

func executeFloatSingle(st *rvcpu.State, dec Decoded, pcOffset int64) (int64, error) {
	a := math.Float32frombits(uint32(st.GetFloat(dec.Rs1)))
	b := math.Float32frombits(uint32(st.GetFloat(dec.Rs2)))
	c := math.Float32frombits(uint32(st.GetFloat(dec.Rs3)))
	applyRoundingMode(st, dec)

	switch dec.Op {
	case OpFMAddS:
		setF32(st, dec.Rd, a*b+c)
	case OpFMSubS:
		setF32(st, dec.Rd, a*b-c)
	case OpFNMSubS:
		setF32(st, dec.Rd, -(a*b - c))
	case OpFNMAddS:
		setF32(st, dec.Rd, -(a*b + c))
	case OpFSqrtS:
		setF32(st, dec.Rd, float32(math.Sqrt(float64(a))))
	case OpFAddS:
		setF32(st, dec.Rd, a+b)
	case OpFSubS:
		setF32(st, dec.Rd, a-b)
	case OpFMulS:
		setF32(st, dec.Rd, a*b)
	case OpFDivS:
		setF32(st, dec.Rd, a/b)
	case OpFMinS:
		setF32(st, dec.Rd, fmin32(a, b))
	case OpFMaxS:
		setF32(st, dec.Rd, fmax32(a, b))
	case OpFSgnJS:
		setBits32(st, dec.Rd, sgnj32(a, b, false, false))
	case OpFSgnJNS:
		setBits32(st, dec.Rd, sgnj32(a, b, true, false))
	case OpFSgnJXS:
		setBits32(st, dec.Rd, sgnj32(a, b, false, true))
	case OpFClassS:
		st.SetInt(dec.Rd, fclass32(math.Float32bits(a)))
	case OpFMvXS:
		bits := math.Float32bits(a)
		if isQuietNaN32(bits) {
			bits = canonicalNaN32
		}
		st.SetInt(dec.Rd, uint64(int64(int32(bits))))
	case OpFMvSX:
		setBits32(st, dec.Rd, uint32(st.GetInt(dec.Rs1)))
	case OpFCvtWS:
		st.SetInt(dec.Rd, uint64(int64(cvtToInt32(st, float64(a)))))
	case OpFCvtWUS:
		st.SetInt(dec.Rd, uint64(int64(int32(cvtToUint32(st, float64(a))))))
	case OpFCvtSW:
		setF32(st, dec.Rd, float32(int32(st.GetInt(dec.Rs1))))
	case OpFCvtSWU:
		setF32(st, dec.Rd, float32(uint32(st.GetInt(dec.Rs1))))
	case OpFCvtLS:
		st.SetInt(dec.Rd, uint64(cvtToInt64(st, float64(a))))
	case OpFCvtLUS:
		st.SetInt(dec.Rd, cvtToUint64(st, float64(a)))
	case OpFCvtSL:
		setF32(st, dec.Rd, float32(int64(st.GetInt(dec.Rs1))))
	case OpFCvtSLU:
		setF32(st, dec.Rd, float32(st.GetInt(dec.Rs1)))
	case OpFEqS:
		st.SetInt(dec.Rd, boolToUint(a == b))
	case OpFLtS:
		st.SetInt(dec.Rd, boolToUint(a < b))
	case OpFLeS:
		st.SetInt(dec.Rd, boolToUint(a <= b))
	}
	return pcOffset, nil
}

func executeFloatDouble(st *rvcpu.State, dec Decoded, pcOffset int64) (int64, error) {
	a := math.Float64frombits(st.GetFloat(dec.Rs1))
	b := math.Float64frombits(st.GetFloat(dec.Rs2))
	c := math.Float64frombits(st.GetFloat(dec.Rs3))
	applyRoundingMode(st, dec)

	switch dec.Op {
	case OpFMAddD:
		setF64(st, dec.Rd, a*b+c)
	case OpFMSubD:
		setF64(st, dec.Rd, a*b-c)
	case OpFNMSubD:
		setF64(st, dec.Rd, -(a*b - c))
	case OpFNMAddD:
		setF64(st, dec.Rd, -(a*b + c))
	case OpFSqrtD:
		setF64(st, dec.Rd, math.Sqrt(a))
	case OpFAddD:
		setF64(st, dec.Rd, a+b)
	case OpFSubD:
		setF64(st, dec.Rd, a-b)
	case OpFMulD:
		setF64(st, dec.Rd, a*b)
	case OpFDivD:
		setF64(st, dec.Rd, a/b)
	case OpFMinD:
		setF64(st, dec.Rd, fmin64(a, b))
	case OpFMaxD:
		setF64(st, dec.Rd, fmax64(a, b))
	case OpFSgnJD:
		st.SetFloat(dec.Rd, sgnj64(a, b, false, false))
	case OpFSgnJND:
		st.SetFloat(dec.Rd, sgnj64(a, b, true, false))
	case OpFSgnJXD:
		st.SetFloat(dec.Rd, sgnj64(a, b, false, true))
	case OpFClassD:
		st.SetInt(dec.Rd, fclass64(math.Float64bits(a)))
	case OpFMvXD:
		bits := math.Float64bits(a)
		if isQuietNaN64(bits) {
			bits = canonicalNaN64
		}
		st.SetInt(dec.Rd, bits)
	case OpFMvDX:
		st.SetFloat(dec.Rd, st.GetInt(dec.Rs1))
	case OpFCvtWD:
		st.SetInt(dec.Rd, uint64(int64(cvtToInt32(st, a))))
	case OpFCvtWUD:
		st.SetInt(dec.Rd, uint64(int64(int32(cvtToUint32(st, a)))))
	case OpFCvtDW:
		setF64(st, dec.Rd, float64(int32(st.GetInt(dec.Rs1))))
	case OpFCvtDWU:
		setF64(st, dec.Rd, float64(uint32(st.GetInt(dec.Rs1))))
	case OpFCvtLD:
		st.SetInt(dec.Rd, uint64(cvtToInt64(st, a)))
	case OpFCvtLUD:
		st.SetInt(dec.Rd, cvtToUint64(st, a))
	case OpFCvtDL:
		setF64(st, dec.Rd, float64(int64(st.GetInt(dec.Rs1))))
	case OpFCvtDLU:
		setF64(st, dec.Rd, float64(st.GetInt(dec.Rs1)))
	case OpFCvtSD:
		setF32(st, dec.Rd, float32(a))
	case OpFCvtDS:
		setF64(st, dec.Rd, float64(math.Float32frombits(uint32(st.GetFloat(dec.Rs1)))))
	case OpFEqD:
		st.SetInt(dec.Rd, boolToUint(a == b))
	case OpFLtD:
		st.SetInt(dec.Rd, boolToUint(a < b))
	case OpFLeD:
		st.SetInt(dec.Rd, boolToUint(a <= b))
	}
	return pcOffset, nil
}

func setF32(st *rvcpu.State, rd int, v float32) {
	setBits32(st, rd, math.Float32bits(v))
}

func setBits32(st *rvcpu.State, rd int, bits uint32) {
	// NaN-boxed: the upper 32 bits of a single-precision value are all
	// ones, so a later double-precision read of the same register sees
	// an unambiguous NaN rather than a valid double.
	st.SetFloat(rd, uint64(bits)|0xffffffff00000000)
}

func setF64(st *rvcpu.State, rd int, v float64) {
	st.SetFloat(rd, math.Float64bits(v))
}

// fmin32/fmax32/fmin64/fmax64 implement the RISC-V rule that min/max of a
// number and a NaN returns the number, and that two NaNs return the
// canonical NaN rather than propagating either operand's payload.
func fmin32(a, b float32) float32 {
	aNaN, bNaN := isQuietNaN32(math.Float32bits(a)), isQuietNaN32(math.Float32bits(b))
	switch {
	case aNaN && bNaN:
		return math.Float32frombits(canonicalNaN32)
	case aNaN:
		return b
	case bNaN:
		return a
	case a == 0 && b == 0:
		if math.Signbit(float64(a)) {
			return a
		}
		return b
	case a < b:
		return a
	default:
		return b
	}
}

func fmax32(a, b float32) float32 {
	aNaN, bNaN := isQuietNaN32(math.Float32bits(a)), isQuietNaN32(math.Float32bits(b))
	switch {
	case aNaN && bNaN:
		return math.Float32frombits(canonicalNaN32)
	case aNaN:
		return b
	case bNaN:
		return a
	case a == 0 && b == 0:
		if math.Signbit(float64(a)) {
			return b
		}
		return a
	case a > b:
		return a
	default:
		return b
	}
}

func fmin64(a, b float64) float64 {
	aNaN, bNaN := isQuietNaN64(math.Float64bits(a)), isQuietNaN64(math.Float64bits(b))
	switch {
	case aNaN && bNaN:
		return math.Float64frombits(canonicalNaN64)
	case aNaN:
		return b
	case bNaN:
		return a
	case a == 0 && b == 0:
		if math.Signbit(a) {
			return a
		}
		return b
	case a < b:
		return a
	default:
		return b
	}
}

func fmax64(a, b float64) float64 {
	aNaN, bNaN := isQuietNaN64(math.Float64bits(a)), isQuietNaN64(math.Float64bits(b))
	switch {
	case aNaN && bNaN:
		return math.Float64frombits(canonicalNaN64)
	case aNaN:
		return b
	case bNaN:
		return a
	case a == 0 && b == 0:
		if math.Signbit(a) {
			return b
		}
		return a
	case a > b:
		return a
	default:
		return b
	}
}

func sgnj32(a, b float32, negate, xor bool) uint32 {
	abits := math.Float32bits(a) &^ (1 << 31)
	sign := math.Float32bits(b) & (1 << 31)
	switch {
	case negate:
		sign ^= 1 << 31
	case xor:
		sign ^= math.Float32bits(a) & (1 << 31)
	}
	return abits | sign
}

func sgnj64(a, b float64, negate, xor bool) uint64 {
	abits := math.Float64bits(a) &^ (1 << 63)
	sign := math.Float64bits(b) & (1 << 63)
	switch {
	case negate:
		sign ^= 1 << 63
	case xor:
		sign ^= math.Float64bits(a) & (1 << 63)
	}
	return abits | sign
}

// fclass32/fclass64 report the 10-bit FCLASS mask: bit i set means the
// value belongs to class i, in the ISA's fixed order (neg infinity, neg
// normal, neg subnormal, neg zero, pos zero, pos subnormal, pos normal,
// pos infinity, signalling NaN, quiet NaN).
func fclass32(bits uint32) uint64 {
	sign := bits>>31 != 0
	exp := bits >> 23 & 0xff
	frac := bits & 0x7fffff

	switch {
	case exp == 0xff && frac != 0:
		if frac&(1<<22) == 0 {
			return 1 << 8 // signalling NaN
		}
		return 1 << 9 // quiet NaN
	case exp == 0xff:
		if sign {
			return 1 << 0
		}
		return 1 << 7
	case exp == 0 && frac == 0:
		if sign {
			return 1 << 3
		}
		return 1 << 4
	case exp == 0:
		if sign {
			return 1 << 2
		}
		return 1 << 5
	default:
		if sign {
			return 1 << 1
		}
		return 1 << 6
	}
}

func fclass64(bits uint64) uint64 {
	sign := bits>>63 != 0
	exp := bits >> 52 & 0x7ff
	frac := bits & 0xfffffffffffff

	switch {
	case exp == 0x7ff && frac != 0:
		if frac&(1<<51) == 0 {
			return 1 << 8
		}
		return 1 << 9
	case exp == 0x7ff:
		if sign {
			return 1 << 0
		}
		return 1 << 7
	case exp == 0 && frac == 0:
		if sign {
			return 1 << 3
		}
		return 1 << 4
	case exp == 0:
		if sign {
			return 1 << 2
		}
		return 1 << 5
	default:
		if sign {
			return 1 << 1
		}
		return 1 << 6
	}
}

// cvtToInt32/cvtToUint32/cvtToInt64/cvtToUint64 saturate out-of-range and
// NaN conversions to the boundary values instead of invoking Go's
// undefined float->int overflow behaviour, matching the ISA's defined
// saturating FCVT results, and set FCSR's invalid-operation flag whenever
// saturation occurred (NaN input or magnitude outside the target range).
func cvtToInt32(st *rvcpu.State, v float64) int32 {
	switch {
	case math.IsNaN(v):
		st.SetAccruedFlags(rvcpu.FFlagNV)
		return math.MaxInt32
	case v >= 1<<31:
		st.SetAccruedFlags(rvcpu.FFlagNV)
		return math.MaxInt32
	case v < -(1 << 31):
		st.SetAccruedFlags(rvcpu.FFlagNV)
		return math.MinInt32
	default:
		return int32(v)
	}
}

func cvtToUint32(st *rvcpu.State, v float64) uint32 {
	switch {
	case math.IsNaN(v):
		st.SetAccruedFlags(rvcpu.FFlagNV)
		return math.MaxUint32
	case v >= 1<<32:
		st.SetAccruedFlags(rvcpu.FFlagNV)
		return math.MaxUint32
	case v <= -1:
		st.SetAccruedFlags(rvcpu.FFlagNV)
		return 0
	default:
		return uint32(v)
	}
}

func cvtToInt64(st *rvcpu.State, v float64) int64 {
	switch {
	case math.IsNaN(v):
		st.SetAccruedFlags(rvcpu.FFlagNV)
		return math.MaxInt64
	case v >= 1<<63:
		st.SetAccruedFlags(rvcpu.FFlagNV)
		return math.MaxInt64
	case v < -(1 << 63):
		st.SetAccruedFlags(rvcpu.FFlagNV)
		return math.MinInt64
	default:
		return int64(v)
	}
}

func cvtToUint64(st *rvcpu.State, v float64) uint64 {
	switch {
	case math.IsNaN(v):
		st.SetAccruedFlags(rvcpu.FFlagNV)
		return math.MaxUint64
	case v >= 1<<64:
		st.SetAccruedFlags(rvcpu.FFlagNV)
		return math.MaxUint64
	case v <= -1:
		st.SetAccruedFlags(rvcpu.FFlagNV)
		return 0
	default:
		return uint64(v)
	}
}
