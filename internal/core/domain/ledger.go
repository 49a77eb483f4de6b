// Package domain defines the core domain models for tokfactory.
package domain

import (
	"fmt"
	"sort"
)

// Address identifies a balance owner. The ledger treats it as opaque;
// authentication of the caller happens before it reaches the ledger.
type Address string

// Ledger holds owner-keyed balances for a single token.
//
// Invariants:
//   - the sum of all balances equals Supply()
//   - no balance is ever negative (amounts are unsigned and debits are
//     bounded by the current holding)
//
// Ledger is not safe for concurrent use; Token serializes access to it.
type Ledger struct {
	balances map[Address]uint64

	// Cumulative counters. They may wrap on very long-lived tokens;
	// their difference stays exact in modular arithmetic.
	credited uint64
	debited  uint64
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		balances: make(map[Address]uint64),
	}
}

// Credit increases owner's balance by amount.
func (l *Ledger) Credit(owner Address, amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount.WithDetails("credit amount must be positive")
	}
	if owner == "" {
		return ErrInvalidAddress
	}
	current := l.balances[owner]
	if current+amount < current {
		return ErrInvalidAmount.WithDetails("credit overflows balance")
	}
	l.balances[owner] = current + amount
	l.credited += amount
	return nil
}

// Debit decreases owner's balance by amount.
func (l *Ledger) Debit(owner Address, amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount.WithDetails("debit amount must be positive")
	}
	current := l.balances[owner]
	if amount > current {
		return ErrInsufficientBalance.WithDetails(
			fmt.Sprintf("balance %d, requested %d", current, amount))
	}
	if current == amount {
		delete(l.balances, owner)
	} else {
		l.balances[owner] = current - amount
	}
	l.debited += amount
	return nil
}

// BalanceOf returns owner's balance, 0 for unknown owners.
func (l *Ledger) BalanceOf(owner Address) uint64 {
	return l.balances[owner]
}

// Transfer moves amount from one owner to another.
// Either both sides change or neither does.
func (l *Ledger) Transfer(from, to Address, amount uint64) error {
	if from == "" || to == "" {
		return ErrInvalidAddress
	}
	if err := l.Debit(from, amount); err != nil {
		return err
	}
	if err := l.Credit(to, amount); err != nil {
		// Unreachable while Sum() == Supply(): to's balance cannot
		// exceed supply. Put the debit back regardless.
		l.balances[from] += amount
		l.debited -= amount
		return err
	}
	return nil
}

// Supply returns total credited minus total debited.
func (l *Ledger) Supply() uint64 {
	return l.credited - l.debited
}

// Sum returns the sum of all balances.
func (l *Ledger) Sum() uint64 {
	var sum uint64
	for _, v := range l.balances {
		sum += v
	}
	return sum
}

// Holders returns the owners with a non-zero balance, sorted.
func (l *Ledger) Holders() []Address {
	holders := make([]Address, 0, len(l.balances))
	for owner := range l.balances {
		holders = append(holders, owner)
	}
	sort.Slice(holders, func(i, j int) bool { return holders[i] < holders[j] })
	return holders
}

// Balances returns a copy of the non-zero balances.
func (l *Ledger) Balances() map[Address]uint64 {
	out := make(map[Address]uint64, len(l.balances))
	for k, v := range l.balances {
		out[k] = v
	}
	return out
}

// VerifyConservation checks that the balances add up to the supply.
func (l *Ledger) VerifyConservation() error {
	if sum, supply := l.Sum(), l.Supply(); sum != supply {
		return ErrSupplyViolation.WithDetails(fmt.Sprintf("sum %d, supply %d", sum, supply))
	}
	return nil
}
