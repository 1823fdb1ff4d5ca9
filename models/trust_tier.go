package models

// TrustTier buckets a trust score for the color-coded badge
type TrustTier string

const (
	TierExcellent TrustTier = "Excellent"
	TierGood      TrustTier = "Good"
	TierLow       TrustTier = "Low"
	TierFlagged   TrustTier = "Flagged"
)

func TierFor(score int) TrustTier {
	switch {
	case score >= 10:
		return TierExcellent
	case score >= 5:
		return TierGood
	case score >= 0:
		return TierLow
	default:
		return TierFlagged
	}
}
