package planner

// DecideSize clamps a desired allocation against the fee buffer, the wallet
// balance and the hard cap. All arguments are lamports. The result never
// exceeds any of the three bounds and is never negative: a wallet below the
// buffer simply affords 0.
func DecideSize(balanceLamports, desiredLamports, feeBufferLamports, hardCapLamports int64) int64 {
	affordable := balanceLamports - feeBufferLamports
	if affordable < 0 {
		affordable = 0
	}
	final := desiredLamports
	if affordable < final {
		final = affordable
	}
	if hardCapLamports < final {
		final = hardCapLamports
	}
	if final < 0 {
		final = 0
	}
	return final
}
