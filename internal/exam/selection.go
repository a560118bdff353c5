package exam

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/ironsheep/exam-builder/internal/store"
)

// ErrInsufficientPool is returned when more exercises are requested than the
// pool holds, or a negative number is requested.
var ErrInsufficientPool = errors.New("insufficient exercise pool")

// Select draws n distinct exercise ids from [0, pool) in random order.
//
// The whole id space is shuffled and the first n ids are taken, so every id
// appears at most once and the draw always terminates.
func Select(r *rand.Rand, n, pool int) ([]int, error) {
	if pool < 0 {
		pool = 0
	}
	if n < 0 || n > pool {
		return nil, fmt.Errorf("requested %d problems from a pool of %d: %w", n, pool, ErrInsufficientPool)
	}
	return r.Perm(pool)[:n], nil
}

// Resolve maps a global exercise id to its 1-based sheet and exercise.
func Resolve(id, perSheet int) store.Key {
	return store.Key{
		Sheet:    id/perSheet + 1,
		Exercise: id%perSheet + 1,
	}
}
