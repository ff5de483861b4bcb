package elfimage

import (
	"reflect"
	"testing"
)

func TestEhdrRoundTrip(t *testing.T) {
	for _, class := range []Class{Class32, Class64} {
		for _, data := range []Endianness{LSB, MSB} {
			h := Header{
				Type:      ETExec,
				Machine:   EMRISCV,
				Version:   EVCurrent,
				Entry:     0x10078,
				Phoff:     uint64(EhdrSize(class)),
				Shoff:     0x2000,
				Flags:     0,
				Ehsize:    uint16(EhdrSize(class)),
				Phentsize: uint16(PhdrSize(class)),
				Phnum:     1,
				Shentsize: uint16(ShdrSize(class)),
				Shnum:     4,
				Shstrndx:  1,
			}
			copy(h.Ident[:4], elfMagic[:])
			buf, err := EncodeEhdr(h, class, data)
			if err != nil {
				t.Fatalf("class=%v data=%v: EncodeEhdr: %v", class, data, err)
			}
			if len(buf) != EhdrSize(class) {
				t.Fatalf("class=%v: encoded length %d, want %d", class, len(buf), EhdrSize(class))
			}
			got, err := DecodeEhdr(buf, class, data)
			if err != nil {
				t.Fatalf("class=%v data=%v: DecodeEhdr: %v", class, data, err)
			}
			if !reflect.DeepEqual(got, h) {
				t.Errorf("class=%v data=%v: round trip mismatch: got %+v, want %+v", class, data, got, h)
			}
		}
	}
}

func TestEhdrEncodeOverflowOnClass32(t *testing.T) {
	h := Header{Entry: 0x1_0000_0001}
	if _, err := EncodeEhdr(h, Class32, LSB); err == nil {
		t.Fatal("expected narrow overflow error encoding a >32-bit entry point for ELF32, got nil")
	}
}

func TestPhdrRoundTrip(t *testing.T) {
	for _, class := range []Class{Class32, Class64} {
		p := ProgHeader{
			Type:   PTLoad,
			Flags:  PFRead | PFExec,
			Offset: 0x1000,
			Vaddr:  0x10000,
			Paddr:  0x10000,
			Filesz: 0x500,
			Memsz:  0x600,
			Align:  0x1000,
		}
		buf, err := EncodePhdr(p, class, LSB)
		if err != nil {
			t.Fatalf("class=%v: EncodePhdr: %v", class, err)
		}
		got, err := DecodePhdr(buf, class, LSB)
		if err != nil {
			t.Fatalf("class=%v: DecodePhdr: %v", class, err)
		}
		if !reflect.DeepEqual(got, p) {
			t.Errorf("class=%v: round trip mismatch: got %+v, want %+v", class, got, p)
		}
	}
}

func TestShdrRoundTrip(t *testing.T) {
	for _, class := range []Class{Class32, Class64} {
		s := SectionHeader{
			Name:      5,
			Type:      SHTProgBits,
			Flags:     SHFAlloc | SHFExecInstr,
			Addr:      0x10000,
			Offset:    0x1000,
			Size:      0x200,
			Link:      0,
			Info:      0,
			Addralign: 4,
			Entsize:   0,
		}
		buf, err := EncodeShdr(s, class, MSB)
		if err != nil {
			t.Fatalf("class=%v: EncodeShdr: %v", class, err)
		}
		got, err := DecodeShdr(buf, class, MSB)
		if err != nil {
			t.Fatalf("class=%v: DecodeShdr: %v", class, err)
		}
		if !reflect.DeepEqual(got, s) {
			t.Errorf("class=%v: round trip mismatch: got %+v, want %+v", class, got, s)
		}
	}
}

func TestSymRoundTripPreservesInfoByteExact(t *testing.T) {
	for _, class := range []Class{Class32, Class64} {
		sym := Symbol{
			Name:  12,
			Info:  SymInfo(STBGlobal, STTFunc),
			Other: 0,
			Shndx: 2,
			Value: 0x10078,
			Size:  16,
		}
		buf, err := EncodeSym(sym, class, LSB)
		if err != nil {
			t.Fatalf("class=%v: EncodeSym: %v", class, err)
		}
		got, err := DecodeSym(buf, class, LSB)
		if err != nil {
			t.Fatalf("class=%v: DecodeSym: %v", class, err)
		}
		if got.Info != sym.Info || got.Other != sym.Other {
			t.Errorf("class=%v: st_info/st_other not byte-exact: got info=%#x other=%#x, want info=%#x other=%#x",
				class, got.Info, got.Other, sym.Info, sym.Other)
		}
		if !reflect.DeepEqual(got, sym) {
			t.Errorf("class=%v: round trip mismatch: got %+v, want %+v", class, got, sym)
		}
	}
}

func TestSymEncodeOverflowOnClass32(t *testing.T) {
	sym := Symbol{Value: 0x1_0000_0000}
	if _, err := EncodeSym(sym, Class32, LSB); err == nil {
		t.Fatal("expected narrow overflow error encoding a >32-bit st_value for ELF32, got nil")
	}
}

func TestNarrow32(t *testing.T) {
	if v, err := narrow32(0xffffffff); err != nil || v != 0xffffffff {
		t.Errorf("narrow32(0xffffffff) = (%d, %v), want (0xffffffff, nil)", v, err)
	}
	if _, err := narrow32(0x100000000); err == nil {
		t.Error("narrow32(0x100000000) should overflow")
	}
}
