package utils

// CancellationFeePercent is the share of the paid amount kept on cancellation.
const CancellationFeePercent = 20

// RefundSplit divides a paid amount into refund and fee, both in minor units
// (1/100 of the currency unit). refund + fee always equals amount*100.
func RefundSplit(amount int64) (refundMinor, feeMinor int64) {
	if amount <= 0 {
		return 0, 0
	}
	total := ToMinorUnits(amount)
	feeMinor = total * CancellationFeePercent / 100
	return total - feeMinor, feeMinor
}

// ToMinorUnits converts whole currency units to minor units.
func ToMinorUnits(amount int64) int64 {
	return amount * 100
}

// FromMinorUnits converts minor units back to a decimal amount.
func FromMinorUnits(minor int64) float64 {
	return float64(minor) / 100
}
