package mana

import (
	"errors"
	"fmt"
)

// ErrInsufficientMana is returned when a pool cannot pay a cost.
var ErrInsufficientMana = errors.New("insufficient mana")

// Pay spends cost from pool, with x as the value chosen for {X}.
// Colored symbols are paid first, then hybrid symbols (a color when available,
// otherwise the generic side), then generic preferring colorless mana.
// On failure the original pool is returned with an error wrapping ErrInsufficientMana.
func Pay(cost Cost, pool Pool, x int) (Pool, error) {
	if x < 0 {
		return pool, fmt.Errorf("negative value for X: %d", x)
	}
	p := pool
	var ok bool
	for _, t := range AllTypes {
		if p, ok = p.Spend(t, cost.Colored[t]); !ok {
			return pool, fmt.Errorf("%w: need %d {%s}", ErrInsufficientMana, cost.Colored[t], t)
		}
	}

	generic := cost.Generic + cost.X*x
	for _, h := range cost.Hybrid {
		paid := false
		for _, t := range h.Options {
			if p, ok = p.Spend(t, 1); ok {
				paid = true
				break
			}
		}
		if !paid {
			if h.GenericAlt == 0 {
				return pool, fmt.Errorf("%w: cannot pay hybrid symbol", ErrInsufficientMana)
			}
			generic += h.GenericAlt
		}
	}

	if p.Total() < generic {
		return pool, fmt.Errorf("%w: need %d generic, have %d", ErrInsufficientMana, generic, p.Total())
	}
	for _, t := range []Type{Colorless, White, Blue, Black, Red, Green} {
		if generic == 0 {
			break
		}
		spend := min(generic, p.Amounts[t])
		p, _ = p.Spend(t, spend)
		generic -= spend
	}
	return p, nil
}

// CanPay reports whether pool can pay cost with the given X.
func CanPay(cost Cost, pool Pool, x int) bool {
	_, err := Pay(cost, pool, x)
	return err == nil
}
