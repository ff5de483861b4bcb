package pagetable

import "testing"

func TestModeShape(t *testing.T) {
	cases := []struct {
		m          Mode
		levels     int
		vaWidth    int
		pteBytes   int
	}{
		{Sv32, 2, 32, 4},
		{Sv39, 3, 39, 8},
		{Sv48, 4, 48, 8},
	}
	for _, tc := range cases {
		if tc.m.Levels != tc.levels {
			t.Errorf("%s: Levels = %d, want %d", tc.m.Name, tc.m.Levels, tc.levels)
		}
		if got := tc.m.VAWidth(); got != tc.vaWidth {
			t.Errorf("%s: VAWidth() = %d, want %d", tc.m.Name, got, tc.vaWidth)
		}
		if tc.m.PTEBytes != tc.pteBytes {
			t.Errorf("%s: PTEBytes = %d, want %d", tc.m.Name, tc.m.PTEBytes, tc.pteBytes)
		}
		if len(tc.m.VPNBits) != tc.levels {
			t.Errorf("%s: len(VPNBits) = %d, want %d", tc.m.Name, len(tc.m.VPNBits), tc.levels)
		}
	}
}

func TestSv39VPNExtraction(t *testing.T) {
	// va = offset 0x123, vpn0=0x1aa, vpn1=0x0ff, vpn2=0x01
	va := uint64(0x123) | uint64(0x1aa)<<12 | uint64(0x0ff)<<21 | uint64(0x01)<<30
	if got := Sv39.VPN(va, 0); got != 0x1aa {
		t.Errorf("VPN(va,0) = %#x, want 0x1aa", got)
	}
	if got := Sv39.VPN(va, 1); got != 0x0ff {
		t.Errorf("VPN(va,1) = %#x, want 0x0ff", got)
	}
	if got := Sv39.VPN(va, 2); got != 0x01 {
		t.Errorf("VPN(va,2) = %#x, want 0x01", got)
	}
}

func TestSv32PPNExtraction(t *testing.T) {
	pte := uint64(FlagV|FlagR) | uint64(0x3ffff)<<10
	if got := Sv32.PPN(pte); got != 0x3ffff {
		t.Errorf("PPN(pte) = %#x, want 0x3ffff", got)
	}
}

func TestHas(t *testing.T) {
	pte := uint64(FlagV | FlagR | FlagA)
	if !Has(pte, FlagV|FlagR) {
		t.Error("Has should report true when all requested flags are set")
	}
	if Has(pte, FlagV|FlagW) {
		t.Error("Has should report false when any requested flag is missing")
	}
}
