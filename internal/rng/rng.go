// Package rng provides the process-wide random source shared by pipeline
// stages. A Source is created once per invocation and handed to exactly one
// consumer; a second hand-off fails so no two stages can draw from the same
// stream.
package rng

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"

	"github.com/jsamuelsen11/ramp-pipeline/internal/domain"
)

// ErrConsumed is returned by Take once the generator has been handed out.
var ErrConsumed = domain.ErrRNGConsumed

// streamSalt derives the second PCG word from the seed so that a single
// 64-bit seed fully determines the generator state.
const streamSalt = 0x9e3779b97f4a7c15

// Source owns a seeded generator until it is taken.
type Source struct {
	seed          uint64
	deterministic bool
	taken         atomic.Bool
	r             *rand.Rand
}

// New returns a Source seeded with *seed, or with a seed drawn from
// crypto/rand when seed is nil.
func New(seed *uint64) (*Source, error) {
	if seed != nil {
		return newSource(*seed, true), nil
	}

	drawn, err := entropySeed()
	if err != nil {
		return nil, err
	}
	return newSource(drawn, false), nil
}

// FromSeed is New with a fixed seed.
func FromSeed(seed uint64) *Source {
	return newSource(seed, true)
}

func newSource(seed uint64, deterministic bool) *Source {
	return &Source{
		seed:          seed,
		deterministic: deterministic,
		r:             rand.New(rand.NewPCG(seed, seed^streamSalt)),
	}
}

// Seed returns the seed in use, including one drawn from entropy, so that a
// run can be reproduced with --rng-seed.
func (s *Source) Seed() uint64 {
	return s.seed
}

// Deterministic reports whether the seed was supplied by the caller.
func (s *Source) Deterministic() bool {
	return s.deterministic
}

// Take transfers the generator to the caller. Only the first call succeeds.
func (s *Source) Take() (*rand.Rand, error) {
	if s == nil {
		return nil, errors.New("rng: nil source")
	}
	if !s.taken.CompareAndSwap(false, true) {
		return nil, ErrConsumed
	}
	r := s.r
	s.r = nil
	return r, nil
}

// Taken reports whether the generator has been handed out.
func (s *Source) Taken() bool {
	return s.taken.Load()
}

func entropySeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("rng: read entropy seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
