// Package ordering computes the per-voter order in which submissions are
// listed.
//
// The seed is derived from the voter identity. This is only safe because an
// identity is an unguessable keyed hash (see package identity): never pass a
// raw, client supplied value here, or voters could pick their own order.
package ordering

import (
	"math/rand/v2"
	"slices"

	"golang.org/x/crypto/blake2b"

	"github.com/vncsmyrnk/publicvoting/internal/core/identity"
)

// Personalize returns a permutation of ids that is stable for a given voter
// and set of ids. The input slice is not modified.
func Personalize(voter identity.ID, ids []int64) []int64 {
	order := slices.Clone(ids)
	slices.Sort(order)

	rng := rand.New(rand.NewChaCha8(blake2b.Sum256([]byte(voter))))
	for i := len(order) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	return order
}
