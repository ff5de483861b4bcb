package rvcpu

import "testing"

func TestX0HardwiredZero(t *testing.T) {
	s := NewState(XLen64)
	s.SetInt(0, 0xdeadbeef)
	if got := s.GetInt(0); got != 0 {
		t.Errorf("GetInt(0) = %#x after write, want 0", got)
	}
}

func TestSetIntTruncatesOnXLen32(t *testing.T) {
	s := NewState(XLen32)
	s.SetInt(5, 0x1_0000_0001)
	if got := s.GetInt(5); got != 1 {
		t.Errorf("GetInt(5) = %#x on RV32, want 0x1 (truncated)", got)
	}
}

func TestSetIntPreservesFullWidthOnXLen64(t *testing.T) {
	s := NewState(XLen64)
	s.SetInt(5, 0x1_0000_0001)
	if got := s.GetInt(5); got != 0x1_0000_0001 {
		t.Errorf("GetInt(5) = %#x on RV64, want 0x100000001", got)
	}
}

func TestReservationLifecycle(t *testing.T) {
	var r Reservation
	if r.Matches(0x1000) {
		t.Error("a fresh reservation should not match anything")
	}
	r.Set(0x1000)
	if !r.Matches(0x1000) {
		t.Error("Matches should succeed at the reserved address")
	}
	if r.Matches(0x1008) {
		t.Error("Matches should fail at a different address")
	}
	r.Clear()
	if r.Matches(0x1000) {
		t.Error("Matches should fail after Clear")
	}
}

func TestRoundingModeDynamicDefersToFCSR(t *testing.T) {
	s := NewState(XLen64)
	s.FCSR = RMRDN << fcsrRMShift
	if got := s.RoundingMode(RMDyn); got != RMRDN {
		t.Errorf("RoundingMode(RMDyn) = %d, want %d (from FCSR)", got, RMRDN)
	}
	if got := s.RoundingMode(RMRTZ); got != RMRTZ {
		t.Errorf("RoundingMode(RMRTZ) = %d, want %d (explicit field wins)", got, RMRTZ)
	}
}

func TestAccruedFlags(t *testing.T) {
	s := NewState(XLen64)
	s.FCSR = RMRNE << fcsrRMShift
	s.SetAccruedFlags(FFlagNX | FFlagOF)
	if got := s.AccruedFlags(); got != FFlagNX|FFlagOF {
		t.Errorf("AccruedFlags() = %#x, want %#x", got, FFlagNX|FFlagOF)
	}
	if s.RoundingMode(RMDyn) != RMRNE {
		t.Error("setting accrued flags should not disturb the rounding mode bits")
	}
}
