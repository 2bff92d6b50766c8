package registration

import (
	"fmt"
	"math/big"
	"sync"
)

// AmountRequired tracks a current amount against a required one. onChange is called every time
// the amount crosses the satisfied boundary, in either direction.
type AmountRequired struct {
	mu       sync.Mutex
	name     string
	current  *big.Int
	required *big.Int
	onChange func()
}

func NewAmountRequired(name string, required *big.Int, onChange func()) *AmountRequired {
	return &AmountRequired{
		name:     name,
		current:  new(big.Int),
		required: copyOrZero(required),
		onChange: onChange,
	}
}

func (a *AmountRequired) Name() string {
	return a.name
}

func (a *AmountRequired) Current() *big.Int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return new(big.Int).Set(a.current)
}

func (a *AmountRequired) Required() *big.Int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return new(big.Int).Set(a.required)
}

func (a *AmountRequired) SetCurrent(current *big.Int) {
	a.update(func() { a.current = copyOrZero(current) })
}

func (a *AmountRequired) SetRequired(required *big.Int) {
	a.update(func() { a.required = copyOrZero(required) })
}

func (a *AmountRequired) IsSatisfied() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.isSatisfied()
}

// Description renders a single status line, e.g. "Balance        | OK    | actual: 10 | required: 5".
func (a *AmountRequired) Description() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	status := "NOT OK"
	if a.isSatisfied() {
		status = "OK"
	}
	return fmt.Sprintf("%-14s | %-6s | actual: %s | required: %s", a.name, status, a.current, a.required)
}

func (a *AmountRequired) update(set func()) {
	a.mu.Lock()
	before := a.isSatisfied()
	set()
	after := a.isSatisfied()
	a.mu.Unlock()

	if before != after && a.onChange != nil {
		a.onChange()
	}
}

func (a *AmountRequired) isSatisfied() bool {
	return a.current.Cmp(a.required) >= 0
}

func copyOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
