package elfimage

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// buildFixtureELF hand-assembles a minimal, valid little-endian ELF64
// executable: one PT_LOAD segment covering a .text section, a symbol table
// with two named symbols, and the string tables to back both. Offsets are
// chosen so that Write's layout algorithm reproduces them exactly, letting
// the round-trip test assert byte-for-byte equality.
func buildFixtureELF(t *testing.T) []byte {
	t.Helper()
	const size = 574
	buf := make([]byte, size)
	ord := binary.LittleEndian

	copy(buf[0:4], elfMagic[:])
	buf[eiClass] = byte(Class64)
	buf[eiData] = byte(LSB)
	buf[eiVersion] = 1

	ord.PutUint16(buf[16:18], ETExec)
	ord.PutUint16(buf[18:20], EMRISCV)
	ord.PutUint32(buf[20:24], EVCurrent)
	ord.PutUint64(buf[24:32], 0x10000) // e_entry
	ord.PutUint64(buf[32:40], 64)      // e_phoff
	ord.PutUint64(buf[40:48], 254)     // e_shoff
	ord.PutUint32(buf[48:52], 0)       // e_flags
	ord.PutUint16(buf[52:54], 64)      // e_ehsize
	ord.PutUint16(buf[54:56], 56)      // e_phentsize
	ord.PutUint16(buf[56:58], 1)       // e_phnum
	ord.PutUint16(buf[58:60], 64)      // e_shentsize
	ord.PutUint16(buf[60:62], 5)       // e_shnum
	ord.PutUint16(buf[62:64], 1)       // e_shstrndx

	p := buf[64:120]
	ord.PutUint32(p[0:4], PTLoad)
	ord.PutUint32(p[4:8], PFRead|PFExec)
	ord.PutUint64(p[8:16], 153)      // p_offset
	ord.PutUint64(p[16:24], 0x10000) // p_vaddr
	ord.PutUint64(p[24:32], 0x10000) // p_paddr
	ord.PutUint64(p[32:40], 16)      // p_filesz
	ord.PutUint64(p[40:48], 16)      // p_memsz
	ord.PutUint64(p[48:56], 0x1000)  // p_align

	shstrtab := []byte("\x00.shstrtab\x00.text\x00.symtab\x00.strtab\x00")
	if len(shstrtab) != 33 {
		t.Fatalf("fixture bug: shstrtab length %d, want 33", len(shstrtab))
	}
	copy(buf[120:153], shstrtab)

	text := []byte{0x13, 0, 0, 0, 0x13, 0, 0, 0, 0x13, 0, 0, 0, 0x13, 0, 0, 0}
	copy(buf[153:169], text)

	// symtab: entry 0 is the mandatory null symbol (left zero).
	sym1 := buf[193:217]
	ord.PutUint32(sym1[0:4], 1) // name "_start"
	sym1[4] = SymInfo(STBGlobal, STTFunc)
	ord.PutUint16(sym1[6:8], 2) // shndx: .text
	ord.PutUint64(sym1[8:16], 0x10000)
	ord.PutUint64(sym1[16:24], 8)

	sym2 := buf[217:241]
	ord.PutUint32(sym2[0:4], 8) // name "main"
	sym2[4] = SymInfo(STBGlobal, STTFunc)
	ord.PutUint16(sym2[6:8], 2)
	ord.PutUint64(sym2[8:16], 0x10008)
	ord.PutUint64(sym2[16:24], 8)

	strtab := append([]byte{0}, []byte("_start\x00main\x00")...)
	if len(strtab) != 13 {
		t.Fatalf("fixture bug: strtab length %d, want 13", len(strtab))
	}
	copy(buf[241:254], strtab)

	shdrs := buf[254:574]
	putShdr := func(i int, name, typ uint32, flags, addr, offset, size uint64, link uint32, addralign, entsize uint64) {
		s := shdrs[i*64 : i*64+64]
		ord.PutUint32(s[0:4], name)
		ord.PutUint32(s[4:8], typ)
		ord.PutUint64(s[8:16], flags)
		ord.PutUint64(s[16:24], addr)
		ord.PutUint64(s[24:32], offset)
		ord.PutUint64(s[32:40], size)
		ord.PutUint32(s[40:44], link)
		ord.PutUint64(s[48:56], addralign)
		ord.PutUint64(s[56:64], entsize)
	}
	putShdr(0, 0, SHTNull, 0, 0, 0, 0, 0, 0, 0)
	putShdr(1, 1, SHTStrTab, 0, 0, 120, 33, 0, 1, 0)
	putShdr(2, 11, SHTProgBits, SHFAlloc|SHFExecInstr, 0x10000, 153, 16, 0, 4, 0)
	putShdr(3, 17, SHTSymTab, 0, 0, 169, 72, 4, 1, 24)
	putShdr(4, 25, SHTStrTab, 0, 0, 241, 13, 0, 1, 0)

	return buf
}

func TestOpenParsesFixture(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.elf")
	if err := os.WriteFile(path, buildFixtureELF(t), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if c.Class != Class64 || c.Data != LSB {
		t.Fatalf("class/data = %v/%v, want ELF64/LSB", c.Class, c.Data)
	}
	if c.Header.Entry != 0x10000 {
		t.Errorf("e_entry = %#x, want 0x10000", c.Header.Entry)
	}
	if c.ShstrtabIdx != 1 || c.SymtabIdx != 3 || c.StrtabIdx != 4 {
		t.Errorf("shstrtab=%d symtab=%d strtab=%d, want 1/3/4", c.ShstrtabIdx, c.SymtabIdx, c.StrtabIdx)
	}
	if len(c.Symbols) != 3 {
		t.Fatalf("len(Symbols) = %d, want 3 (including the null entry)", len(c.Symbols))
	}

	sym, ok := c.SymbolByName("main")
	if !ok || sym.Value != 0x10008 {
		t.Fatalf("SymbolByName(main) = %+v, ok=%v, want value 0x10008", sym, ok)
	}
	sym, ok = c.SymbolByAddress(0x10000)
	if !ok || c.SymbolNameOf(sym) != "_start" {
		t.Fatalf("SymbolByAddress(0x10000) = %+v, ok=%v, want _start", sym, ok)
	}
}

func TestOpenHeadersOnlySkipsSectionData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.elf")
	if err := os.WriteFile(path, buildFixtureELF(t), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := OpenHeadersOnly(path)
	if err != nil {
		t.Fatalf("OpenHeadersOnly: %v", err)
	}
	if len(c.Sections) != 5 {
		t.Fatalf("len(Sections) = %d, want 5", len(c.Sections))
	}
	for i, s := range c.Sections {
		if s.Data != nil {
			t.Errorf("section %d has data in headers-only mode", i)
		}
	}
	if len(c.Symbols) != 0 {
		t.Error("headers-only mode should not materialise symbols")
	}
}

func TestWriteRoundTripIsByteIdentical(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "fixture.elf")
	original := buildFixtureELF(t)
	if err := os.WriteFile(srcPath, original, 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Open(srcPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	dstPath := filepath.Join(dir, "rewritten.elf")
	if err := Write(c, dstPath); err != nil {
		t.Fatalf("Write: %v", err)
	}

	rewritten, err := os.ReadFile(dstPath)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(rewritten, original) {
		t.Errorf("round trip is not byte-identical: got %d bytes, want %d bytes", len(rewritten), len(original))
	}

	reopened, err := Open(dstPath)
	if err != nil {
		t.Fatalf("Open(rewritten): %v", err)
	}
	if !reflect.DeepEqual(reopened.Header, c.Header) {
		t.Errorf("reopened header mismatch: got %+v, want %+v", reopened.Header, c.Header)
	}
	if !reflect.DeepEqual(reopened.Symbols, c.Symbols) {
		t.Errorf("reopened symbols mismatch: got %+v, want %+v", reopened.Symbols, c.Symbols)
	}
}

// TestWriteThenUpdateSymbolThenReload exercises the end-to-end scenario of
// relocating a symbol, saving, and observing the new address through both
// lookup paths on reload.
func TestWriteThenUpdateSymbolThenReload(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "fixture.elf")
	if err := os.WriteFile(srcPath, buildFixtureELF(t), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Open(srcPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	sym, ok := c.SymbolByName("main")
	if !ok {
		t.Fatal("main not found")
	}
	c.UpdateSymbolAddress(sym.Value, 0x10100)

	dstPath := filepath.Join(dir, "relocated.elf")
	if err := Write(c, dstPath); err != nil {
		t.Fatalf("Write: %v", err)
	}

	reopened, err := Open(dstPath)
	if err != nil {
		t.Fatalf("Open(relocated): %v", err)
	}
	sym, ok = reopened.SymbolByName("main")
	if !ok || sym.Value != 0x10100 {
		t.Fatalf("SymbolByName(main) after reload = %+v, ok=%v, want value 0x10100", sym, ok)
	}
	sym, ok = reopened.SymbolByAddress(0x10100)
	if !ok || reopened.SymbolNameOf(sym) != "main" {
		t.Fatalf("SymbolByAddress(0x10100) after reload = %+v, ok=%v, want main", sym, ok)
	}
}

func TestOpenRejectsInvalidMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.elf")
	if err := os.WriteFile(path, []byte("not an elf file"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(path)
	if err == nil {
		t.Fatal("expected an error for invalid magic")
	}
	var elfErr *Error
	if !errors.As(err, &elfErr) || elfErr.Kind != KindInvalidMagic {
		t.Fatalf("err = %v, want Kind=KindInvalidMagic", err)
	}
}

func TestOpenRejectsTooShortFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "short.elf")
	if err := os.WriteFile(path, []byte{0x7f, 'E', 'L'}, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(path)
	var elfErr *Error
	if !errors.As(err, &elfErr) || elfErr.Kind != KindInvalidMagic {
		t.Fatalf("err = %v, want Kind=KindInvalidMagic", err)
	}
}

func TestOpenRejectsTruncatedHeaders(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "truncated.elf")
	full := buildFixtureELF(t)
	// Claim a larger e_shoff/e_shnum than the truncated file can hold.
	truncated := full[:200]
	if err := os.WriteFile(path, truncated, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(path)
	var elfErr *Error
	if !errors.As(err, &elfErr) || elfErr.Kind != KindTruncatedHeaders {
		t.Fatalf("err = %v, want Kind=KindTruncatedHeaders", err)
	}
}

func TestOpenRejectsBadClass(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "badclass.elf")
	buf := buildFixtureELF(t)
	buf[eiClass] = 7
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(path)
	var elfErr *Error
	if !errors.As(err, &elfErr) || elfErr.Kind != KindBadClass {
		t.Fatalf("err = %v, want Kind=KindBadClass", err)
	}
}

func TestOpenRejectsBadVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "badversion.elf")
	buf := buildFixtureELF(t)
	binary.LittleEndian.PutUint32(buf[20:24], 2)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(path)
	var elfErr *Error
	if !errors.As(err, &elfErr) || elfErr.Kind != KindBadVersion {
		t.Fatalf("err = %v, want Kind=KindBadVersion", err)
	}
}
