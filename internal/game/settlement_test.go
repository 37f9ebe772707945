package game

import "testing"

func TestSplitPotDefaultFee(t *testing.T) {
	// Two entries of 100 at a 20% platform fee.
	s := SplitPot(200, 20)

	if s.PlatformFee != 40 {
		t.Errorf("platform fee = %d, want 40", s.PlatformFee)
	}
	if s.WinnerShare != 160 {
		t.Errorf("winner share = %d, want 160", s.WinnerShare)
	}
}

func TestSplitPotConservation(t *testing.T) {
	// No currency unit may ever be lost or duplicated, whatever the fee
	// percentage or pot size.
	for _, feePercent := range []int{0, 1, 7, 20, 33, 50, 99, 100} {
		for pot := int64(0); pot <= 1000; pot++ {
			s := SplitPot(pot, feePercent)
			if s.PlatformFee+s.WinnerShare != pot {
				t.Fatalf("pot=%d fee%%=%d: fee %d + share %d != pot", pot, feePercent, s.PlatformFee, s.WinnerShare)
			}
			if s.PlatformFee < 0 || s.WinnerShare < 0 {
				t.Fatalf("pot=%d fee%%=%d: negative split %+v", pot, feePercent, s)
			}
		}
	}
}

func TestSplitPotRoundsFeeHalfUp(t *testing.T) {
	// 15 * 30% = 4.5, which rounds up to 5; the winner takes the exact
	// remainder.
	s := SplitPot(15, 30)
	if s.PlatformFee != 5 {
		t.Errorf("platform fee = %d, want 5", s.PlatformFee)
	}
	if s.WinnerShare != 10 {
		t.Errorf("winner share = %d, want 10", s.WinnerShare)
	}

	// 14 * 30% = 4.2 rounds down to 4.
	s = SplitPot(14, 30)
	if s.PlatformFee != 4 {
		t.Errorf("platform fee = %d, want 4", s.PlatformFee)
	}
}

func TestSplitPotZeroFee(t *testing.T) {
	s := SplitPot(200, 0)
	if s.PlatformFee != 0 || s.WinnerShare != 200 {
		t.Errorf("zero fee split = %+v, want fee 0 share 200", s)
	}
}
