package elfimage

import "testing"

// buildSymbolContainer constructs a container with a strtab and a handful
// of symbols at known addresses, bypassing the loader so these tests can
// exercise the index maintenance logic in isolation.
func buildSymbolContainer(t *testing.T, names []string, addrs []uint64) *Container {
	t.Helper()
	if len(names) != len(addrs) {
		t.Fatalf("names/addrs length mismatch")
	}
	c := NewContainer()
	c.Class = Class64
	c.Data = LSB

	strtab := []byte{0}
	nameOffsets := make([]uint32, len(names))
	for i, n := range names {
		nameOffsets[i] = uint32(len(strtab))
		strtab = append(strtab, []byte(n)...)
		strtab = append(strtab, 0)
	}
	c.Sections = []Section{
		{Header: SectionHeader{Type: SHTNull}},
		{Header: SectionHeader{Type: SHTStrTab}, Data: strtab},
	}
	c.StrtabIdx = 1

	for i := range names {
		c.Symbols = append(c.Symbols, Symbol{
			Name:  nameOffsets[i],
			Info:  SymInfo(STBGlobal, STTFunc),
			Value: addrs[i],
		})
	}
	c.RebuildIndices()
	return c
}

func TestSymbolByAddressAndName(t *testing.T) {
	c := buildSymbolContainer(t, []string{"_start", "main", "exit"}, []uint64{0x1000, 0x1040, 0x10a0})

	sym, ok := c.SymbolByAddress(0x1040)
	if !ok || c.SymbolNameOf(sym) != "main" {
		t.Fatalf("SymbolByAddress(0x1040) = %+v, ok=%v, want main", sym, ok)
	}

	sym, ok = c.SymbolByName("exit")
	if !ok || sym.Value != 0x10a0 {
		t.Fatalf("SymbolByName(exit) = %+v, ok=%v, want value 0x10a0", sym, ok)
	}

	if _, ok := c.SymbolByAddress(0x2000); ok {
		t.Error("SymbolByAddress(0x2000) should miss, no symbol at that address")
	}
	if _, ok := c.SymbolByName("nope"); ok {
		t.Error("SymbolByName(nope) should miss")
	}
}

func TestSymbolByNearestAddress(t *testing.T) {
	c := buildSymbolContainer(t, []string{"_start", "main", "exit"}, []uint64{0x1000, 0x1040, 0x10a0})

	if sym, ok := c.SymbolByNearestAddress(0x1050); !ok || c.SymbolNameOf(sym) != "main" {
		t.Errorf("nearest(0x1050) = %+v, want main", sym)
	}
	if sym, ok := c.SymbolByNearestAddress(0x1040); !ok || c.SymbolNameOf(sym) != "main" {
		t.Errorf("nearest(0x1040) (exact) = %+v, want main", sym)
	}
	if sym, ok := c.SymbolByNearestAddress(0xffff); !ok || c.SymbolNameOf(sym) != "exit" {
		t.Errorf("nearest(0xffff) above max should clamp to last = %+v, want exit", sym)
	}
	// Below the minimum address the lookup clamps to the first symbol
	// instead of reporting a miss.
	if sym, ok := c.SymbolByNearestAddress(0x10); !ok || c.SymbolNameOf(sym) != "_start" {
		t.Errorf("nearest(0x10) below minimum = %+v, ok=%v, want _start", sym, ok)
	}
}

func TestSymbolByNearestAddressEmpty(t *testing.T) {
	c := NewContainer()
	if _, ok := c.SymbolByNearestAddress(0x100); ok {
		t.Error("nearest lookup on an empty container should miss")
	}
}

func TestUpdateSymbolAddress(t *testing.T) {
	c := buildSymbolContainer(t, []string{"_start", "main", "exit"}, []uint64{0x1000, 0x1040, 0x10a0})

	c.UpdateSymbolAddress(0x1040, 0x1080)

	if _, ok := c.SymbolByAddress(0x1040); ok {
		t.Error("old address should no longer be indexed after UpdateSymbolAddress")
	}
	sym, ok := c.SymbolByAddress(0x1080)
	if !ok || c.SymbolNameOf(sym) != "main" {
		t.Fatalf("new address should resolve to main, got %+v ok=%v", sym, ok)
	}
	if sym, ok := c.SymbolByName("main"); !ok || sym.Value != 0x1080 {
		t.Errorf("SymbolByName(main).Value = %#x, want 0x1080", sym.Value)
	}
	if sym, ok := c.SymbolByNearestAddress(0x1090); !ok || c.SymbolNameOf(sym) != "main" {
		t.Errorf("nearest lookup after update did not reflect the re-sorted address, got %+v", sym)
	}
}

func TestUpdateSymbolAddressNoopWhenEqual(t *testing.T) {
	c := buildSymbolContainer(t, []string{"main"}, []uint64{0x1040})
	c.UpdateSymbolAddress(0x1040, 0x1040)
	if sym, ok := c.SymbolByAddress(0x1040); !ok || c.SymbolNameOf(sym) != "main" {
		t.Error("no-op update should leave the index untouched")
	}
}

func TestRebuildIndicesExcludesZeroAndUnnamed(t *testing.T) {
	c := buildSymbolContainer(t, []string{"real"}, []uint64{0x2000})
	// A zero-value symbol and one with an empty name (offset 0 in strtab,
	// which is always the empty string) must not be indexed.
	c.Symbols = append(c.Symbols,
		Symbol{Name: 0, Value: 0x3000},
		Symbol{Name: 1 /* "real"'s own name offset reused deliberately */, Value: 0},
	)
	c.RebuildIndices()
	if len(c.addrIndex) != 1 {
		t.Errorf("expected exactly 1 indexed symbol, got %d", len(c.addrIndex))
	}
}

func TestSectionIndexByType(t *testing.T) {
	c := NewContainer()
	c.Sections = []Section{
		{Header: SectionHeader{Type: SHTNull}},
		{Header: SectionHeader{Type: SHTStrTab}},
		{Header: SectionHeader{Type: SHTSymTab}},
	}
	if got := c.SectionIndexByType(SHTSymTab); got != 2 {
		t.Errorf("SectionIndexByType(SHTSymTab) = %d, want 2", got)
	}
	if got := c.SectionIndexByType(SHTRela); got != 0 {
		t.Errorf("SectionIndexByType(SHTRela) = %d, want 0 (collides with null section)", got)
	}
}

func TestOffsetAndByteAt(t *testing.T) {
	c := NewContainer()
	c.Sections = []Section{
		{Header: SectionHeader{Type: SHTNull}},
		{Header: SectionHeader{Type: SHTProgBits, Offset: 0x100}, Data: []byte{1, 2, 3, 4}},
	}
	idx, off, ok := c.Offset(0x102)
	if !ok || idx != 1 || off != 2 {
		t.Fatalf("Offset(0x102) = (%d, %d, %v), want (1, 2, true)", idx, off, ok)
	}
	b, err := c.ByteAt(0x102)
	if err != nil || len(b) != 2 || b[0] != 3 {
		t.Fatalf("ByteAt(0x102) = %v, %v", b, err)
	}
	if _, _, ok := c.Offset(0x200); ok {
		t.Error("Offset(0x200) should miss, no section covers it")
	}
	if _, err := c.ByteAt(0x200); err == nil {
		t.Error("ByteAt(0x200) should return an error, not panic, when no section covers the offset")
	}
}

func TestMaterialiseSymbolsRejectsMismatchedEntsize(t *testing.T) {
	c := NewContainer()
	c.Class = Class64
	c.Data = LSB
	c.Sections = []Section{
		{Header: SectionHeader{Type: SHTNull}},
		{Header: SectionHeader{Type: SHTSymTab, Entsize: 16}, Data: make([]byte, 16)},
	}
	c.SymtabIdx = 1
	if err := c.MaterialiseSymbols(); err == nil {
		t.Error("expected an error when sh_entsize does not match the class's symbol size")
	}
}
