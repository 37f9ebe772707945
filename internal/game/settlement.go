package game

// Settlement describes the one-time ledger adjustment for a finished match.
// It is computed as a pure function of the pot so it can be checked without
// touching account state.
type Settlement struct {
	Pot         int64 `json:"pot"`
	PlatformFee int64 `json:"platform_fee"`
	WinnerShare int64 `json:"winner_share"`
}

// SplitPot divides the pot between the platform and the winner. The fee is
// rounded half-up to the nearest currency unit and the winner share is the
// exact remainder, so PlatformFee+WinnerShare == Pot always holds and no unit
// is ever lost or duplicated.
func SplitPot(pot int64, feePercent int) Settlement {
	if pot < 0 {
		pot = 0
	}
	fee := (pot*int64(feePercent) + 50) / 100
	if fee > pot {
		fee = pot
	}
	return Settlement{
		Pot:         pot,
		PlatformFee: fee,
		WinnerShare: pot - fee,
	}
}
