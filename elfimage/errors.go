/*
 * rvsim - ELF loader/writer error kinds.
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

import "fmt"

// Kind is the exhaustive set of reasons a loader or writer operation fails.
type Kind int

const (
	KindIO Kind = iota
	KindInvalidMagic
	KindBadClass
	KindBadEndian
	KindBadVersion
	KindTruncatedHeaders
	KindHeaderOverlap
	KindSectionOverlap
	KindSectionTruncated
	KindNarrowOverflow
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io error"
	case KindInvalidMagic:
		return "invalid ELF magic"
	case KindBadClass:
		return "invalid ELF class"
	case KindBadEndian:
		return "invalid ELF data encoding"
	case KindBadVersion:
		return "invalid ELF version"
	case KindTruncatedHeaders:
		return "program or section header table exceeds file size"
	case KindHeaderOverlap:
		return "program and section header tables overlap"
	case KindSectionOverlap:
		return "section overlaps another region"
	case KindSectionTruncated:
		return "section exceeds file size"
	case KindNarrowOverflow:
		return "64-bit field does not fit the target class"
	default:
		return "unknown elf error"
	}
}

// Error is returned by every loader and writer operation. It carries the
// file path and underlying cause alongside the Kind so callers can branch
// on errors.Is/errors.As without parsing strings.
type Error struct {
	Op   string
	Path string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("elfimage: %s %s: %s: %v", e.Op, e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("elfimage: %s %s: %s", e.Op, e.Path, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newError(op, path string, kind Kind, err error) *Error {
	return &Error{Op: op, Path: path, Kind: kind, Err: err}
}
