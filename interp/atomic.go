/*
 * rvsim - RV32A/RV64A atomics: LR/SC and AMOs (C7).
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
	"github.com/rvsim/gorv/rvcpu"
	"github.com/rvsim/gorv/rvmem"
)

// executeAtomic implements LR/SC and the AMO read-modify-write family.
// The reservation is the single-scalar rvcpu.Reservation: SC succeeds
// only if it holds the address LR last set. Nothing here clears the
// reservation, not even a successful SC; each LR overwrites it. AMOs
// are plain read-modify-write against the view, atomic with respect to
// the single hart modelled.
func executeAtomic(st *rvcpu.State, mem rvmem.View, dec Decoded, pcOffset int64) (int64, error) {
	rs1 := st.GetInt(dec.Rs1)
	rs2 := st.GetInt(dec.Rs2)

	switch dec.Op {
	case OpLRW:
		v, err := mem.LoadI32(rs1)
		if err != nil {
			return 0, err
		}
		st.LR.Set(rs1)
		st.SetInt(dec.Rd, uint64(v))
		return pcOffset, nil
	case OpLRD:
		v, err := mem.LoadI64(rs1)
		if err != nil {
			return 0, err
		}
		st.LR.Set(rs1)
		st.SetInt(dec.Rd, uint64(v))
		return pcOffset, nil
	case OpSCW:
		if st.LR.Matches(rs1) {
			if err := mem.StoreU32(rs1, uint32(rs2)); err != nil {
				return 0, err
			}
			st.SetInt(dec.Rd, 0)
		} else {
			st.SetInt(dec.Rd, 1)
		}
		return pcOffset, nil
	case OpSCD:
		if st.LR.Matches(rs1) {
			if err := mem.StoreU64(rs1, rs2); err != nil {
				return 0, err
			}
			st.SetInt(dec.Rd, 0)
		} else {
			st.SetInt(dec.Rd, 1)
		}
		return pcOffset, nil
	}

	return executeAmo(st, mem, dec, rs1, rs2, pcOffset)
}

func executeAmo(st *rvcpu.State, mem rvmem.View, dec Decoded, addr, rs2 uint64, pcOffset int64) (int64, error) {
	switch dec.Op {
	case OpAmoSwapW, OpAmoAddW, OpAmoXorW, OpAmoAndW, OpAmoOrW, OpAmoMinW, OpAmoMaxW, OpAmoMinUW, OpAmoMaxUW:
		old, err := mem.LoadI32(addr)
		if err != nil {
			return 0, err
		}
		newVal := amo32(dec.Op, int32(old), uint32(rs2))
		if err := mem.StoreU32(addr, uint32(newVal)); err != nil {
			return 0, err
		}
		st.SetInt(dec.Rd, uint64(old))
		return pcOffset, nil
	case OpAmoSwapD, OpAmoAddD, OpAmoXorD, OpAmoAndD, OpAmoOrD, OpAmoMinD, OpAmoMaxD, OpAmoMinUD, OpAmoMaxUD:
		old, err := mem.LoadI64(addr)
		if err != nil {
			return 0, err
		}
		newVal := amo64(dec.Op, old, rs2)
		if err := mem.StoreU64(addr, uint64(newVal)); err != nil {
			return 0, err
		}
		st.SetInt(dec.Rd, uint64(old))
		return pcOffset, nil
	}
	return pcOffset, nil
}

func amo32(op Op, old int32, rs2 uint32) int32 {
	switch op {
	case OpAmoSwapW:
		return int32(rs2)
	case OpAmoAddW:
		return old + int32(rs2)
	case OpAmoXorW:
		return old ^ int32(rs2)
	case OpAmoAndW:
		return old & int32(rs2)
	case OpAmoOrW:
		return old | int32(rs2)
	case OpAmoMinW:
		if old < int32(rs2) {
			return old
		}
		return int32(rs2)
	case OpAmoMaxW:
		if old > int32(rs2) {
			return old
		}
		return int32(rs2)
	case OpAmoMinUW:
		if uint32(old) < rs2 {
			return old
		}
		return int32(rs2)
	case OpAmoMaxUW:
		if uint32(old) > rs2 {
			return old
		}
		return int32(rs2)
	}
	return old
}

func amo64(op Op, old int64, rs2 uint64) int64 {
	switch op {
	case OpAmoSwapD:
		return int64(rs2)
	case OpAmoAddD:
		return old + int64(rs2)
	case OpAmoXorD:
		return old ^ int64(rs2)
	case OpAmoAndD:
		return old & int64(rs2)
	case OpAmoOrD:
		return old | int64(rs2)
	case OpAmoMinD:
		if old < int64(rs2) {
			return old
		}
		return int64(rs2)
	case OpAmoMaxD:
		if old > int64(rs2) {
			return old
		}
		return int64(rs2)
	case OpAmoMinUD:
		if uint64(old) < rs2 {
			return old
		}
		return int64(rs2)
	case OpAmoMaxUD:
		if uint64(old) > rs2 {
			return old
		}
		return int64(rs2)
	}
	return old
}
