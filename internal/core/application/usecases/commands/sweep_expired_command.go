package commands

import (
	"errors"
	"time"

	"dispatch/internal/pkg/guard"
)

var (
	ErrSweepExpiredCommandIsNotConstructed = errors.New(
		"SweepExpiredCommand must be created via NewSweepExpiredCommand constructor",
	)
	ErrTTLIsInvalid = errors.New("claim TTL must be greater than 0")
)

// SweepExpiredCommand represents one run of the expiry sweep: cancel every
// published delivery whose claim window of the given TTL has lapsed.
type SweepExpiredCommand struct { //nolint:recvcheck //using for validation
	ttl time.Duration

	guard guard.ConstructorGuard
}

// NewSweepExpiredCommand creates a sweep command with the given claim TTL.
func NewSweepExpiredCommand(ttl time.Duration) (SweepExpiredCommand, error) {
	cmd := SweepExpiredCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setTTL(ttl); err != nil {
		return SweepExpiredCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c SweepExpiredCommand) Validate() error {
	return c.guard.Validate(ErrSweepExpiredCommandIsNotConstructed)
}

// TTL returns how long a published delivery may wait for a claim.
func (c SweepExpiredCommand) TTL() time.Duration {
	return c.ttl
}

func (c *SweepExpiredCommand) setTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return ErrTTLIsInvalid
	}
	c.ttl = ttl
	return nil
}
