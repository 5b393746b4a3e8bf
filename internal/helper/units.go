package helper

import (
	"errors"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimals is the number of minor-unit digits in one major currency unit.
const Decimals = 18

var ErrInvalidAmount = errors.New("invalid amount")

// ToMinorUnits converts a decimal major-unit amount, such as "0.02", into minor units.
// Digits beyond the minor-unit precision are truncated.
func ToMinorUnits(major string) (*big.Int, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(major))
	if err != nil {
		return nil, ErrInvalidAmount
	}

	return amount.Shift(Decimals).Truncate(0).BigInt(), nil
}

func FromMinorUnits(minor *big.Int) string {
	if minor == nil {
		return "0"
	}

	return decimal.NewFromBigInt(minor, -Decimals).String()
}
