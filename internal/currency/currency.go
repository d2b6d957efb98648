// Package currency converts and formats amounts between the two units of
// value the marketplace recognizes: emeralds and emerald blocks. The rate
// is the in-game crafting rate and never changes at runtime.
package currency

import (
	"errors"
	"fmt"
)

type Unit string

const (
	Emerald      Unit = "emerald"
	EmeraldBlock Unit = "emerald_block"
)

// One emerald block crafts from nine emeralds.
const emeraldsPerBlock = 9.0

var ErrUnknownCurrency = errors.New("unknown currency")

func Valid(u Unit) bool {
	return u == Emerald || u == EmeraldBlock
}

// Convert returns amount expressed in the "to" unit. It is pure and never
// fails for the two known units.
func Convert(amount float64, from, to Unit) (float64, error) {
	if !Valid(from) || !Valid(to) {
		return 0, ErrUnknownCurrency
	}
	if from == to {
		return amount, nil
	}
	if from == Emerald {
		return amount / emeraldsPerBlock, nil
	}
	return amount * emeraldsPerBlock, nil
}

// Format renders an amount with two decimals and the unit's display name.
// Unknown units fall back to the raw unit string so display never fails.
func Format(amount float64, u Unit) string {
	switch u {
	case Emerald:
		return fmt.Sprintf("%.2f emeralds", amount)
	case EmeraldBlock:
		return fmt.Sprintf("%.2f emerald blocks", amount)
	default:
		return fmt.Sprintf("%.2f %s", amount, string(u))
	}
}
