/*
 * rvsim - interpreter memory access abstraction.
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

// Package rvmem abstracts the byte-addressable memory an interpreter
// loads from and stores to. View decouples interp from any one mapping
// strategy (a flat backing array, a sparse page map, an MMU-translated
// view); FlatMemory is the bounds-checked flat-array implementation used
// for simple, unpaged simulation.
package rvmem

import (
	"fmt"
)

// View is the memory surface the interpreter issues loads and stores
// against. Sign-extension, when the name implies it, widens to 64 bits;
// callers on RV32 truncate afterwards the same way they truncate every
// other integer result.
type View interface {
	LoadI8(addr uint64) (int64, error)
	LoadU8(addr uint64) (uint64, error)
	LoadI16(addr uint64) (int64, error)
	LoadU16(addr uint64) (uint64, error)
	LoadI32(addr uint64) (int64, error)
	LoadU32(addr uint64) (uint64, error)
	LoadI64(addr uint64) (int64, error)
	LoadU64(addr uint64) (uint64, error)
	LoadF32(addr uint64) (uint32, error)
	LoadF64(addr uint64) (uint64, error)

	StoreU8(addr uint64, v uint8) error
	StoreU16(addr uint64, v uint16) error
	StoreU32(addr uint64, v uint32) error
	StoreU64(addr uint64, v uint64) error
	StoreF32(addr uint64, v uint32) error
	StoreF64(addr uint64, v uint64) error
}

// AccessError reports an out-of-range memory access.
type AccessError struct {
	Addr uint64
	Size int
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("rvmem: access at %#x (size %d) out of range", e.Addr, e.Size)
}

// FlatMemory is a bounds-checked, byte-addressable flat array, the
// simplest concrete View: one contiguous buffer starting at base.
type FlatMemory struct {
	base uint64
	buf  []byte
}

// NewFlatMemory returns a FlatMemory of size bytes, addressed starting at
// base.
func NewFlatMemory(base uint64, size int) *FlatMemory {
	return &FlatMemory{base: base, buf: make([]byte, size)}
}

func (m *FlatMemory) bounds(addr uint64, size int) (int, error) {
	if addr < m.base {
		return 0, &AccessError{Addr: addr, Size: size}
	}
	off := addr - m.base
	if off > uint64(len(m.buf)) || uint64(len(m.buf))-off < uint64(size) {
		return 0, &AccessError{Addr: addr, Size: size}
	}
	return int(off), nil
}

func (m *FlatMemory) LoadU8(addr uint64) (uint64, error) {
	off, err := m.bounds(addr, 1)
	if err != nil {
		return 0, err
	}
	return uint64(m.buf[off]), nil
}

func (m *FlatMemory) LoadI8(addr uint64) (int64, error) {
	v, err := m.LoadU8(addr)
	return int64(int8(v)), err
}

func (m *FlatMemory) LoadU16(addr uint64) (uint64, error) {
	off, err := m.bounds(addr, 2)
	if err != nil {
		return 0, err
	}
	return uint64(m.buf[off]) | uint64(m.buf[off+1])<<8, nil
}

func (m *FlatMemory) LoadI16(addr uint64) (int64, error) {
	v, err := m.LoadU16(addr)
	return int64(int16(v)), err
}

func (m *FlatMemory) LoadU32(addr uint64) (uint64, error) {
	off, err := m.bounds(addr, 4)
	if err != nil {
		return 0, err
	}
	var v uint32
	for i := 0; i < 4; i++ {
		v |= uint32(m.buf[off+i]) << (8 * i)
	}
	return uint64(v), nil
}

func (m *FlatMemory) LoadI32(addr uint64) (int64, error) {
	v, err := m.LoadU32(addr)
	return int64(int32(v)), err
}

func (m *FlatMemory) LoadU64(addr uint64) (uint64, error) {
	off, err := m.bounds(addr, 8)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(m.buf[off+i]) << (8 * i)
	}
	return v, nil
}

func (m *FlatMemory) LoadI64(addr uint64) (int64, error) {
	v, err := m.LoadU64(addr)
	return int64(v), err
}

func (m *FlatMemory) LoadF32(addr uint64) (uint32, error) {
	v, err := m.LoadU32(addr)
	return uint32(v), err
}

func (m *FlatMemory) LoadF64(addr uint64) (uint64, error) {
	return m.LoadU64(addr)
}

func (m *FlatMemory) StoreU8(addr uint64, v uint8) error {
	off, err := m.bounds(addr, 1)
	if err != nil {
		return err
	}
	m.buf[off] = v
	return nil
}

func (m *FlatMemory) StoreU16(addr uint64, v uint16) error {
	off, err := m.bounds(addr, 2)
	if err != nil {
		return err
	}
	m.buf[off] = byte(v)
	m.buf[off+1] = byte(v >> 8)
	return nil
}

func (m *FlatMemory) StoreU32(addr uint64, v uint32) error {
	off, err := m.bounds(addr, 4)
	if err != nil {
		return err
	}
	for i := 0; i < 4; i++ {
		m.buf[off+i] = byte(v >> (8 * i))
	}
	return nil
}

func (m *FlatMemory) StoreU64(addr uint64, v uint64) error {
	off, err := m.bounds(addr, 8)
	if err != nil {
		return err
	}
	for i := 0; i < 8; i++ {
		m.buf[off+i] = byte(v >> (8 * i))
	}
	return nil
}

func (m *FlatMemory) StoreF32(addr uint64, v uint32) error {
	return m.StoreU32(addr, v)
}

func (m *FlatMemory) StoreF64(addr uint64, v uint64) error {
	return m.StoreU64(addr, v)
}

// LoadSection copies an elfimage-loaded section's bytes into memory at
// its recorded virtual address, the usual way a loader populates a fresh
// View before execution begins.
func LoadSection(m *FlatMemory, addr uint64, data []byte) error {
	for i, b := range data {
		if err := m.StoreU8(addr+uint64(i), b); err != nil {
			return err
		}
	}
	return nil
}
