// Package keyschedule derives the two deterministic pseudo-random streams
// the site selector uses, from a single user password.
package keyschedule

import (
	"crypto/sha256"

	"github.com/zanicar/steganographer/mt19937"
)

// Streams holds the permutation and channel-choice generators derived
// from a password. Both must be derived identically on embed and on
// extract for the same password, or the site sequences will diverge.
type Streams struct {
	// Perm drives the Fisher-Yates permutation of the candidate list.
	Perm *mt19937.Source
	// Channel drives the per-bit R/G/B channel choice.
	Channel *mt19937.Source
}

// Derive computes SHA-256(password) and splits it into two 16-byte halves,
// each seeding an independent MT19937 generator.
func Derive(password []byte) Streams {
	hash := sha256.Sum256(password)
	return Streams{
		Perm:    mt19937.NewFromHash(hash[0:16]),
		Channel: mt19937.NewFromHash(hash[16:32]),
	}
}
