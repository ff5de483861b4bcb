/*
 * rvsim - decoded instruction contract (C7).
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

// Package interp executes already-decoded RISC-V instructions against an
// rvcpu.State and an rvmem.View. Decoding bytes into a Decoded value,
// choosing successor PCs beyond the single pc_offset Execute reports, and
// everything MMU/syscall/trap related are all external collaborators;
// this package only consumes the Decoded contract, it never produces one.
package interp

// Op identifies the operation a Decoded value names. The numbering has no
// meaning beyond distinguishing cases in Execute's dispatch.
type Op int

const (
	OpNone Op = iota

	// Integer register-immediate (RV32I/RV64I). Immediate shifts carry
	// the already-decoded shift amount in Imm and apply it unmasked.
	OpAddI
	OpSLTI
	OpSLTIU
	OpXorI
	OpOrI
	OpAndI
	OpSLLI
	OpSRLI
	OpSRAI

	// Integer register-register (RV32I/RV64I).
	OpAdd
	OpSub
	OpSLL
	OpSLT
	OpSLTU
	OpXor
	OpSRL
	OpSRA
	OpOr
	OpAnd

	// RV64 *w forms truncate to 32 bits and sign-extend.
	OpAddIW
	OpSLLIW
	OpSRLIW
	OpSRAIW
	OpAddW
	OpSubW
	OpSLLW
	OpSRLW
	OpSRAW

	OpLUI
	OpAUIPC

	// Control transfer.
	OpJAL
	OpJALR
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU

	// Loads and stores.
	OpLB
	OpLH
	OpLW
	OpLD
	OpLBU
	OpLHU
	OpLWU
	OpSB
	OpSH
	OpSW
	OpSD

	// M extension.
	OpMul
	OpMulH
	OpMulHSU
	OpMulHU
	OpDiv
	OpDivU
	OpRem
	OpRemU
	OpMulW
	OpDivW
	OpDivUW
	OpRemW
	OpRemUW

	// A extension.
	OpLRW
	OpSCW
	OpLRD
	OpSCD
	OpAmoSwapW
	OpAmoAddW
	OpAmoXorW
	OpAmoAndW
	OpAmoOrW
	OpAmoMinW
	OpAmoMaxW
	OpAmoMinUW
	OpAmoMaxUW
	OpAmoSwapD
	OpAmoAddD
	OpAmoXorD
	OpAmoAndD
	OpAmoOrD
	OpAmoMinD
	OpAmoMaxD
	OpAmoMinUD
	OpAmoMaxUD

	// F/D extensions.
	OpFLW
	OpFSW
	OpFLD
	OpFSD
	OpFMAddS
	OpFMSubS
	OpFNMSubS
	OpFNMAddS
	OpFMAddD
	OpFMSubD
	OpFNMSubD
	OpFNMAddD
	OpFSqrtS
	OpFSqrtD
	OpFAddS
	OpFSubS
	OpFMulS
	OpFDivS
	OpFMinS
	OpFMaxS
	OpFSgnJS
	OpFSgnJNS
	OpFSgnJXS
	OpFClassS
	OpFMvXS
	OpFMvSX
	OpFCvtWS
	OpFCvtWUS
	OpFCvtSW
	OpFCvtSWU
	OpFCvtLS
	OpFCvtLUS
	OpFCvtSL
	OpFCvtSLU
	OpFEqS
	OpFLtS
	OpFLeS
	OpFAddD
	OpFSubD
	OpFMulD
	OpFDivD
	OpFMinD
	OpFMaxD
	OpFSgnJD
	OpFSgnJND
	OpFSgnJXD
	OpFClassD
	OpFMvXD
	OpFMvDX
	OpFCvtWD
	OpFCvtWUD
	OpFCvtDW
	OpFCvtDWU
	OpFCvtLD
	OpFCvtLUD
	OpFCvtDL
	OpFCvtDLU
	OpFCvtSD
	OpFCvtDS
	OpFEqD
	OpFLtD
	OpFLeD
)

// Decoded is the opaque instruction contract Execute consumes: an
// operation tag, its register operands (Rs3 only for the fused
// multiply-add family), a sign-extended immediate, and (for F/D ops) an
// explicit rounding-mode field. Producing a Decoded value, fetch and
// instruction decode, is out of scope for this package.
type Decoded struct {
	Op       Op
	Rd       int
	Rs1      int
	Rs2      int
	Rs3      int
	Imm      int64
	RM       uint8
	Aq, Rl   bool // acquire/release bits on A-extension ops
}

// Extensions gates which instruction groups Execute accepts. An op
// belonging to a disabled extension is reported as ErrUnsupported rather
// than silently executed, so a caller configuring e.g. RV32I-only still
// gets a hard failure on a stray M-extension opcode instead of undefined
// behaviour.
type Extensions struct {
	I bool
	M bool
	A bool
	S bool
	F bool
	D bool
	C bool
}
