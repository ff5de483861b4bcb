package rvmem

import "testing"

func TestLoadStoreRoundTrip(t *testing.T) {
	m := NewFlatMemory(0x1000, 64)
	if err := m.StoreU32(0x1004, 0xdeadbeef); err != nil {
		t.Fatal(err)
	}
	v, err := m.LoadU32(0x1004)
	if err != nil || v != 0xdeadbeef {
		t.Fatalf("LoadU32 = (%#x, %v), want (0xdeadbeef, nil)", v, err)
	}

	if err := m.StoreU64(0x1008, 0x0102030405060708); err != nil {
		t.Fatal(err)
	}
	got, err := m.LoadU64(0x1008)
	if err != nil || got != 0x0102030405060708 {
		t.Fatalf("LoadU64 = (%#x, %v)", got, err)
	}
}

func TestSignExtendingLoads(t *testing.T) {
	m := NewFlatMemory(0, 16)
	if err := m.StoreU8(0, 0xff); err != nil {
		t.Fatal(err)
	}
	if v, _ := m.LoadI8(0); v != -1 {
		t.Errorf("LoadI8(0xff) = %d, want -1", v)
	}
	if v, _ := m.LoadU8(0); v != 0xff {
		t.Errorf("LoadU8(0xff) = %#x, want 0xff", v)
	}

	if err := m.StoreU16(2, 0x8000); err != nil {
		t.Fatal(err)
	}
	if v, _ := m.LoadI16(2); v != -32768 {
		t.Errorf("LoadI16(0x8000) = %d, want -32768", v)
	}
}

func TestOutOfRangeAccess(t *testing.T) {
	m := NewFlatMemory(0x1000, 16)
	if _, err := m.LoadU32(0x1020); err == nil {
		t.Error("expected an AccessError reading past the end of memory")
	}
	if _, err := m.LoadU32(0x500); err == nil {
		t.Error("expected an AccessError reading before base")
	}
	if err := m.StoreU64(0x100f, 0); err == nil {
		t.Error("an 8-byte store starting at the last valid byte should overflow and error")
	}
}

func TestLoadSection(t *testing.T) {
	m := NewFlatMemory(0x10000, 32)
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	if err := LoadSection(m, 0x10004, data); err != nil {
		t.Fatal(err)
	}
	v, err := m.LoadU32(0x10004)
	if err != nil || v != 0x04030201 {
		t.Fatalf("LoadU32 after LoadSection = (%#x, %v), want (0x04030201, nil)", v, err)
	}
}
