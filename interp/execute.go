/*
 * rvsim - RV32I/RV64I integer core, control transfer, load/store (C7).
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
	"fmt"

	"github.com/rvsim/gorv/rvcpu"
	"github.com/rvsim/gorv/rvmem"
)

// ErrUnsupported is returned when a Decoded op belongs to an extension
// Extensions has not enabled, or names an RV64-only encoding executed on
// an RV32 hart. Either way the op is an illegal instruction from the
// hart's point of view; trap delivery is the caller's business.
type ErrUnsupported struct {
	Op Op
}

func (e *ErrUnsupported) Error() string {
	return fmt.Sprintf("interp: opcode %d is not available on this hart", e.Op)
}

// Execute dispatches one decoded instruction against st and mem. pcOffset
// is the instruction's own size (4, or 2 once a compressed decoder feeds
// this interpreter); the return value is the byte offset from the current
// PC to the next instruction. Sequential ops return pcOffset unchanged,
// taken branches and jumps replace it with their target's offset, and JAL/
// JALR write PC+pcOffset as the link before redirecting. x0 writes are
// suppressed by rvcpu.State itself; Execute never special-cases
// dec.Rd == 0 beyond that.
func Execute(st *rvcpu.State, mem rvmem.View, ext Extensions, dec Decoded, pcOffset int64) (int64, error) {
	if st.XLen == rvcpu.XLen32 && rv64Only(dec.Op) {
		return 0, &ErrUnsupported{dec.Op}
	}

	switch dec.Op {
	case OpAddI, OpSLTI, OpSLTIU, OpXorI, OpOrI, OpAndI, OpSLLI, OpSRLI, OpSRAI,
		OpAdd, OpSub, OpSLL, OpSLT, OpSLTU, OpXor, OpSRL, OpSRA, OpOr, OpAnd,
		OpAddIW, OpSLLIW, OpSRLIW, OpSRAIW, OpAddW, OpSubW, OpSLLW, OpSRLW, OpSRAW,
		OpLUI, OpAUIPC,
		OpJAL, OpJALR, OpBEQ, OpBNE, OpBLT, OpBGE, OpBLTU, OpBGEU,
		OpLB, OpLH, OpLW, OpLD, OpLBU, OpLHU, OpLWU, OpSB, OpSH, OpSW, OpSD:
		if !ext.I {
			return 0, &ErrUnsupported{dec.Op}
		}
		return executeBase(st, mem, dec, pcOffset)

	case OpMul, OpMulH, OpMulHSU, OpMulHU, OpDiv, OpDivU, OpRem, OpRemU,
		OpMulW, OpDivW, OpDivUW, OpRemW, OpRemUW:
		if !ext.M {
			return 0, &ErrUnsupported{dec.Op}
		}
		return executeMulDiv(st, dec, pcOffset)

	case OpLRW, OpSCW, OpLRD, OpSCD, OpAmoSwapW, OpAmoAddW, OpAmoXorW, OpAmoAndW,
		OpAmoOrW, OpAmoMinW, OpAmoMaxW, OpAmoMinUW, OpAmoMaxUW,
		OpAmoSwapD, OpAmoAddD, OpAmoXorD, OpAmoAndD, OpAmoOrD,
		OpAmoMinD, OpAmoMaxD, OpAmoMinUD, OpAmoMaxUD:
		if !ext.A {
			return 0, &ErrUnsupported{dec.Op}
		}
		return executeAtomic(st, mem, dec, pcOffset)

	case OpFLW, OpFSW, OpFMAddS, OpFMSubS, OpFNMSubS, OpFNMAddS, OpFSqrtS,
		OpFAddS, OpFSubS, OpFMulS, OpFDivS, OpFMinS, OpFMaxS,
		OpFSgnJS, OpFSgnJNS, OpFSgnJXS, OpFClassS, OpFMvXS, OpFMvSX,
		OpFCvtWS, OpFCvtWUS, OpFCvtSW, OpFCvtSWU,
		OpFCvtLS, OpFCvtLUS, OpFCvtSL, OpFCvtSLU, OpFEqS, OpFLtS, OpFLeS:
		if !ext.F {
			return 0, &ErrUnsupported{dec.Op}
		}
		return executeFloat(st, mem, dec, pcOffset)

	case OpFLD, OpFSD, OpFMAddD, OpFMSubD, OpFNMSubD, OpFNMAddD, OpFSqrtD,
		OpFAddD, OpFSubD, OpFMulD, OpFDivD, OpFMinD, OpFMaxD,
		OpFSgnJD, OpFSgnJND, OpFSgnJXD, OpFClassD, OpFMvXD, OpFMvDX,
		OpFCvtWD, OpFCvtWUD, OpFCvtDW, OpFCvtDWU,
		OpFCvtLD, OpFCvtLUD, OpFCvtDL, OpFCvtDLU, OpFCvtSD, OpFCvtDS,
		OpFEqD, OpFLtD, OpFLeD:
		if !ext.D {
			return 0, &ErrUnsupported{dec.Op}
		}
		return executeFloat(st, mem, dec, pcOffset)

	default:
		return 0, fmt.Errorf("interp: unknown opcode %d", dec.Op)
	}
}

// rv64Only reports whether op exists only in the RV64 instruction set:
// the doubleword loads/stores and atomics, every *W form, and the 64-bit
// FCVT/FMV variants.
func rv64Only(op Op) bool {
	switch op {
	case OpLD, OpLWU, OpSD,
		OpAddIW, OpSLLIW, OpSRLIW, OpSRAIW, OpAddW, OpSubW, OpSLLW, OpSRLW, OpSRAW,
		OpMulW, OpDivW, OpDivUW, OpRemW, OpRemUW,
		OpLRD, OpSCD, OpAmoSwapD, OpAmoAddD, OpAmoXorD, OpAmoAndD, OpAmoOrD,
		OpAmoMinD, OpAmoMaxD, OpAmoMinUD, OpAmoMaxUD,
		OpFCvtLS, OpFCvtLUS, OpFCvtSL, OpFCvtSLU,
		OpFCvtLD, OpFCvtLUD, OpFCvtDL, OpFCvtDLU,
		OpFMvXD, OpFMvDX:
		return true
	}
	return false
}

// sxv and uxv are the signed and unsigned XLEN-wide readings of a
// register value, the sx/ux conventions of the semantic model.
func sxv(st *rvcpu.State, v uint64) int64 {
	if st.XLen == rvcpu.XLen32 {
		return int64(int32(uint32(v)))
	}
	return int64(v)
}

func uxv(st *rvcpu.State, v uint64) uint64 {
	if st.XLen == rvcpu.XLen32 {
		return uint64(uint32(v))
	}
	return v
}

func signExtend32(v uint64) uint64 {
	return uint64(int64(int32(uint32(v))))
}

// Register-operand shift amounts mask to the low 7 bits at full width and
// the low 5 bits for the *W forms; immediate shifts apply Imm as decoded.
const (
	shamtMask  = 0x7f
	shamtMaskW = 0x1f
)

func executeBase(st *rvcpu.State, mem rvmem.View, dec Decoded, pcOffset int64) (int64, error) {
	rs1 := st.GetInt(dec.Rs1)
	rs2 := st.GetInt(dec.Rs2)
	imm := uint64(dec.Imm)

	switch dec.Op {
	case OpLUI:
		st.SetInt(dec.Rd, imm)
	case OpAUIPC:
		st.SetInt(dec.Rd, st.PC+imm)

	case OpAddI:
		st.SetInt(dec.Rd, rs1+imm)
	case OpSLTI:
		st.SetInt(dec.Rd, boolToUint(sxv(st, rs1) < sxv(st, imm)))
	case OpSLTIU:
		st.SetInt(dec.Rd, boolToUint(uxv(st, rs1) < uxv(st, imm)))
	case OpXorI:
		st.SetInt(dec.Rd, rs1^imm)
	case OpOrI:
		st.SetInt(dec.Rd, rs1|imm)
	case OpAndI:
		st.SetInt(dec.Rd, rs1&imm)
	case OpSLLI:
		st.SetInt(dec.Rd, rs1<<imm)
	case OpSRLI:
		st.SetInt(dec.Rd, uxv(st, rs1)>>imm)
	case OpSRAI:
		st.SetInt(dec.Rd, uint64(sxv(st, rs1)>>imm))

	case OpAdd:
		st.SetInt(dec.Rd, rs1+rs2)
	case OpSub:
		st.SetInt(dec.Rd, rs1-rs2)
	case OpSLL:
		st.SetInt(dec.Rd, rs1<<(rs2&shamtMask))
	case OpSLT:
		st.SetInt(dec.Rd, boolToUint(sxv(st, rs1) < sxv(st, rs2)))
	case OpSLTU:
		st.SetInt(dec.Rd, boolToUint(uxv(st, rs1) < uxv(st, rs2)))
	case OpXor:
		st.SetInt(dec.Rd, rs1^rs2)
	case OpSRL:
		st.SetInt(dec.Rd, uxv(st, rs1)>>(rs2&shamtMask))
	case OpSRA:
		st.SetInt(dec.Rd, uint64(sxv(st, rs1)>>(rs2&shamtMask)))
	case OpOr:
		st.SetInt(dec.Rd, rs1|rs2)
	case OpAnd:
		st.SetInt(dec.Rd, rs1&rs2)

	case OpAddIW:
		st.SetInt(dec.Rd, signExtend32(rs1+imm))
	case OpSLLIW:
		st.SetInt(dec.Rd, signExtend32(uint64(uint32(rs1)<<imm)))
	case OpSRLIW:
		st.SetInt(dec.Rd, signExtend32(uint64(uint32(rs1)>>imm)))
	case OpSRAIW:
		st.SetInt(dec.Rd, uint64(int64(int32(uint32(rs1))>>imm)))
	case OpAddW:
		st.SetInt(dec.Rd, signExtend32(rs1+rs2))
	case OpSubW:
		st.SetInt(dec.Rd, signExtend32(rs1-rs2))
	case OpSLLW:
		st.SetInt(dec.Rd, signExtend32(uint64(uint32(rs1)<<(rs2&shamtMaskW))))
	case OpSRLW:
		st.SetInt(dec.Rd, signExtend32(uint64(uint32(rs1)>>(rs2&shamtMaskW))))
	case OpSRAW:
		st.SetInt(dec.Rd, uint64(int64(int32(uint32(rs1))>>(rs2&shamtMaskW))))

	case OpJAL:
		st.SetInt(dec.Rd, st.PC+uint64(pcOffset))
		return dec.Imm, nil
	case OpJALR:
		// The link is written before rs1 is read, so JALR with
		// rd == rs1 jumps through the freshly written link.
		st.SetInt(dec.Rd, st.PC+uint64(pcOffset))
		return int64(st.GetInt(dec.Rs1)+imm) - int64(st.PC), nil
	case OpBEQ:
		if sxv(st, rs1) == sxv(st, rs2) {
			return dec.Imm, nil
		}
	case OpBNE:
		if sxv(st, rs1) != sxv(st, rs2) {
			return dec.Imm, nil
		}
	case OpBLT:
		if sxv(st, rs1) < sxv(st, rs2) {
			return dec.Imm, nil
		}
	case OpBGE:
		if sxv(st, rs1) >= sxv(st, rs2) {
			return dec.Imm, nil
		}
	case OpBLTU:
		if uxv(st, rs1) < uxv(st, rs2) {
			return dec.Imm, nil
		}
	case OpBGEU:
		if uxv(st, rs1) >= uxv(st, rs2) {
			return dec.Imm, nil
		}

	case OpLB, OpLH, OpLW, OpLD, OpLBU, OpLHU, OpLWU:
		return pcOffset, loadInto(st, mem, dec, rs1)
	case OpSB, OpSH, OpSW, OpSD:
		return pcOffset, storeFrom(st, mem, dec, rs1, rs2)
	}
	return pcOffset, nil
}

func loadInto(st *rvcpu.State, mem rvmem.View, dec Decoded, rs1 uint64) error {
	addr := rs1 + uint64(dec.Imm)
	switch dec.Op {
	case OpLB:
		v, err := mem.LoadI8(addr)
		if err != nil {
			return err
		}
		st.SetInt(dec.Rd, uint64(v))
	case OpLH:
		v, err := mem.LoadI16(addr)
		if err != nil {
			return err
		}
		st.SetInt(dec.Rd, uint64(v))
	case OpLW:
		v, err := mem.LoadI32(addr)
		if err != nil {
			return err
		}
		st.SetInt(dec.Rd, uint64(v))
	case OpLD:
		v, err := mem.LoadI64(addr)
		if err != nil {
			return err
		}
		st.SetInt(dec.Rd, uint64(v))
	case OpLBU:
		v, err := mem.LoadU8(addr)
		if err != nil {
			return err
		}
		st.SetInt(dec.Rd, v)
	case OpLHU:
		v, err := mem.LoadU16(addr)
		if err != nil {
			return err
		}
		st.SetInt(dec.Rd, v)
	case OpLWU:
		v, err := mem.LoadU32(addr)
		if err != nil {
			return err
		}
		st.SetInt(dec.Rd, v)
	}
	return nil
}

func storeFrom(st *rvcpu.State, mem rvmem.View, dec Decoded, rs1, rs2 uint64) error {
	addr := rs1 + uint64(dec.Imm)
	switch dec.Op {
	case OpSB:
		return mem.StoreU8(addr, uint8(rs2))
	case OpSH:
		return mem.StoreU16(addr, uint16(rs2))
	case OpSW:
		return mem.StoreU32(addr, uint32(rs2))
	case OpSD:
		return mem.StoreU64(addr, rs2)
	}
	return nil
}

func boolToUint(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
