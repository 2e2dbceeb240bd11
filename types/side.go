package types

// Side is a recommendation label: BUY, SELL, or HOLD (neither).
type Side string

const (
	SideTypeBuy  Side = "BUY"
	SideTypeSell Side = "SELL"
	SideTypeHold Side = "HOLD"
)

func ParseSide(s string) Side {
	switch Side(s) {
	case SideTypeBuy, SideTypeSell:
		return Side(s)
	}
	return SideTypeHold
}
