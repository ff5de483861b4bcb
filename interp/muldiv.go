/*
 * rvsim - RV32M/RV64M multiply and divide (C7).
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
	"math/bits"

	"github.com/rvsim/gorv/rvcpu"
)

// mulh computes the high 64 bits of a signed 64x64 -> 128 multiply.
func mulh(a, b int64) int64 {
	hi, _ := bits.Mul64(uint64(a), uint64(b))
	if a < 0 {
		hi -= uint64(b)
	}
	if b < 0 {
		hi -= uint64(a)
	}
	return int64(hi)
}

func mulhsu(a int64, b uint64) int64 {
	hi, _ := bits.Mul64(uint64(a), b)
	if a < 0 {
		hi -= b
	}
	return int64(hi)
}

func mulhu(a, b uint64) uint64 {
	hi, _ := bits.Mul64(a, b)
	return hi
}

// The 32-bit high-word multiplies fit a plain 64-bit product.
func mulh32(a, b int32) int32 {
	return int32((int64(a) * int64(b)) >> 32)
}

func mulhsu32(a int32, b uint32) int32 {
	return int32((int64(a) * int64(b)) >> 32)
}

func mulhu32(a, b uint32) uint32 {
	return uint32((uint64(a) * uint64(b)) >> 32)
}

func executeMulDiv(st *rvcpu.State, dec Decoded, pcOffset int64) (int64, error) {
	if st.XLen == rvcpu.XLen32 {
		return executeMulDiv32(st, dec, pcOffset)
	}

	rs1 := st.GetInt(dec.Rs1)
	rs2 := st.GetInt(dec.Rs2)

	switch dec.Op {
	case OpMul:
		st.SetInt(dec.Rd, rs1*rs2)
	case OpMulH:
		st.SetInt(dec.Rd, uint64(mulh(int64(rs1), int64(rs2))))
	case OpMulHSU:
		st.SetInt(dec.Rd, uint64(mulhsu(int64(rs1), rs2)))
	case OpMulHU:
		st.SetInt(dec.Rd, mulhu(rs1, rs2))
	case OpDiv:
		st.SetInt(dec.Rd, uint64(divSigned(int64(rs1), int64(rs2))))
	case OpDivU:
		st.SetInt(dec.Rd, divUnsigned(rs1, rs2))
	case OpRem:
		st.SetInt(dec.Rd, uint64(remSigned(int64(rs1), int64(rs2))))
	case OpRemU:
		st.SetInt(dec.Rd, remUnsigned(rs1, rs2))

	case OpMulW:
		st.SetInt(dec.Rd, signExtend32(uint64(uint32(rs1)*uint32(rs2))))
	case OpDivW:
		st.SetInt(dec.Rd, uint64(int64(divSigned32(int32(rs1), int32(rs2)))))
	case OpDivUW:
		st.SetInt(dec.Rd, signExtend32(uint64(divUnsigned32(uint32(rs1), uint32(rs2)))))
	case OpRemW:
		st.SetInt(dec.Rd, uint64(int64(remSigned32(int32(rs1), int32(rs2)))))
	case OpRemUW:
		st.SetInt(dec.Rd, signExtend32(uint64(remUnsigned32(uint32(rs1), uint32(rs2)))))
	}
	return pcOffset, nil
}

// executeMulDiv32 is the RV32 rendering of the full-width M ops, where
// sx/ux are 32 bits wide. The *W forms never reach here; they are
// RV64-only and rejected before dispatch.
func executeMulDiv32(st *rvcpu.State, dec Decoded, pcOffset int64) (int64, error) {
	rs1 := uint32(st.GetInt(dec.Rs1))
	rs2 := uint32(st.GetInt(dec.Rs2))

	switch dec.Op {
	case OpMul:
		st.SetInt(dec.Rd, uint64(rs1*rs2))
	case OpMulH:
		st.SetInt(dec.Rd, uint64(uint32(mulh32(int32(rs1), int32(rs2)))))
	case OpMulHSU:
		st.SetInt(dec.Rd, uint64(uint32(mulhsu32(int32(rs1), rs2))))
	case OpMulHU:
		st.SetInt(dec.Rd, uint64(mulhu32(rs1, rs2)))
	case OpDiv:
		st.SetInt(dec.Rd, uint64(uint32(divSigned32(int32(rs1), int32(rs2)))))
	case OpDivU:
		st.SetInt(dec.Rd, uint64(divUnsigned32(rs1, rs2)))
	case OpRem:
		st.SetInt(dec.Rd, uint64(uint32(remSigned32(int32(rs1), int32(rs2)))))
	case OpRemU:
		st.SetInt(dec.Rd, uint64(remUnsigned32(rs1, rs2)))
	}
	return pcOffset, nil
}

// divSigned implements RISC-V's DIV semantics: overflow (MIN / -1)
// saturates to MIN, division by zero yields all-ones. Native Go division
// panics on a zero divisor, so both cases are tested explicitly first.
func divSigned(a, b int64) int64 {
	switch {
	case b == 0:
		return -1
	case a == math.MinInt64 && b == -1:
		return math.MinInt64
	default:
		return a / b
	}
}

func divUnsigned(a, b uint64) uint64 {
	if b == 0 {
		return math.MaxUint64
	}
	return a / b
}

func remSigned(a, b int64) int64 {
	switch {
	case b == 0:
		return a
	case a == math.MinInt64 && b == -1:
		return 0
	default:
		return a % b
	}
}

func remUnsigned(a, b uint64) uint64 {
	if b == 0 {
		return a
	}
	return a % b
}

func divSigned32(a, b int32) int32 {
	switch {
	case b == 0:
		return -1
	case a == math.MinInt32 && b == -1:
		return math.MinInt32
	default:
		return a / b
	}
}

func divUnsigned32(a, b uint32) uint32 {
	if b == 0 {
		return math.MaxUint32
	}
	return a / b
}

func remSigned32(a, b int32) int32 {
	switch {
	case b == 0:
		return a
	case a == math.MinInt32 && b == -1:
		return 0
	default:
		return a % b
	}
}

func remUnsigned32(a, b uint32) uint32 {
	if b == 0 {
		return a
	}
	return a % b
}
