package transactions

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	AMOUNT_DECIMALS        = 7
	AMOUNT_SCALE    uint64 = 10_000_000
)

var ErrInvalidAmount = errors.New("invalid amount")

// FormatAmount renders stroops as a decimal with seven places, "10.0000000".
func FormatAmount(stroops uint64) string {
	return fmt.Sprintf(
		"%d.%07d", stroops/AMOUNT_SCALE, stroops%AMOUNT_SCALE,
	)
}

func ParseAmount(s string) (uint64, error) {
	whole, frac, _ := strings.Cut(strings.TrimSpace(s), ".")
	if len(whole) == 0 && len(frac) == 0 {
		return 0, ErrInvalidAmount
	}
	if len(frac) > AMOUNT_DECIMALS {
		return 0, fmt.Errorf("%w: more than %d decimals", ErrInvalidAmount, AMOUNT_DECIMALS)
	}

	var units uint64
	if len(whole) > 0 {
		w, err := strconv.ParseUint(whole, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s", ErrInvalidAmount, s)
		}
		if w > ^uint64(0)/AMOUNT_SCALE {
			return 0, fmt.Errorf("%w: overflow", ErrInvalidAmount)
		}
		units = w * AMOUNT_SCALE
	}
	if len(frac) > 0 {
		padded := frac + strings.Repeat("0", AMOUNT_DECIMALS-len(frac))
		f, err := strconv.ParseUint(padded, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s", ErrInvalidAmount, s)
		}
		if units+f < units {
			return 0, fmt.Errorf("%w: overflow", ErrInvalidAmount)
		}
		units += f
	}
	if units == 0 {
		return 0, fmt.Errorf("%w: must be positive", ErrInvalidAmount)
	}
	return units, nil
}
