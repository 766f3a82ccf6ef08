package engine

import (
	"errors"
	"fmt"

	"github.com/boardwalklabs/boardwalk/internal/store"
)

// maxAllocateAttempts bounds the optimistic identifier retry loop.
const maxAllocateAttempts = 10

// allocateWithRetry runs the optimistic allocation loop: generate a
// candidate number, try to insert, and advance to the next candidate
// when the store reports a uniqueness conflict. Any other insert error
// aborts immediately. Exhausting the budget means identifier
// contention is too high to be worth hiding from the caller.
func allocateWithRetry(attempts int, candidate func(attempt int) int, insert func(number int) error) (int, error) {
	for attempt := 0; attempt < attempts; attempt++ {
		number := candidate(attempt)
		err := insert(number)
		if err == nil {
			return number, nil
		}
		if !errors.Is(err, store.ErrConflict) {
			return 0, err
		}
	}
	return 0, fmt.Errorf("could not allocate a ticket number after %d attempts", attempts)
}
