package sim

import "fmt"

// ErrNoCredit is the reason reported when a sender spends a credit it does
// not hold.
const ErrNoCredit = "no credit available"

// A CreditCounter tracks the credits a sender holds on one directed channel.
// Every credit received is either still available or has been consumed by a
// send.
type CreditCounter struct {
	name      string
	available uint64
	received  uint64
	consumed  uint64

	// OnViolation builds the value to panic with when a credit is consumed
	// without being available. If nil, a plain string is used.
	OnViolation func(reason string) interface{}
}

// NewCreditCounter creates a counter with no credit.
func NewCreditCounter(name string) *CreditCounter {
	return &CreditCounter{name: name}
}

// Name returns the name of the channel the counter guards.
func (c *CreditCounter) Name() string {
	return c.name
}

// Add records credits returned by the receiver.
func (c *CreditCounter) Add(n uint32) {
	c.available += uint64(n)
	c.received += uint64(n)
}

// Available returns true if at least one credit can be consumed.
func (c *CreditCounter) Available() bool {
	return c.available > 0
}

// Count returns the number of credits currently held.
func (c *CreditCounter) Count() uint64 {
	return c.available
}

// Consume spends one credit. Spending a credit that is not held is a
// protocol error and panics.
func (c *CreditCounter) Consume() {
	if c.available == 0 {
		reason := fmt.Sprintf("%s: %s", c.name, ErrNoCredit)
		if c.OnViolation != nil {
			panic(c.OnViolation(reason))
		}

		panic(reason)
	}

	c.available--
	c.consumed++
}

// Received returns the total number of credits ever received.
func (c *CreditCounter) Received() uint64 {
	return c.received
}

// Consumed returns the total number of credits ever consumed.
func (c *CreditCounter) Consumed() uint64 {
	return c.consumed
}

// Conserved reports if every credit received is accounted for.
func (c *CreditCounter) Conserved() bool {
	return c.received == c.consumed+c.available
}
