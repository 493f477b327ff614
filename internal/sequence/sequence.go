// Package sequence generates stimulus digits and answers N-back sums.
package sequence

import (
	"math/rand"
	"time"
)

// Source produces randomized stimulus digits in [1, 9].
// Draws are independent; repeats are allowed.
type Source struct {
	rnd *rand.Rand
}

// NewSource returns a Source seeded with the current time.
func NewSource() *Source {
	return &Source{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededSource returns a deterministic Source for tests.
func NewSeededSource(seed int64) *Source {
	return &Source{rnd: rand.New(rand.NewSource(seed))}
}

// Next draws the next stimulus digit.
func (s *Source) Next() int {
	return s.rnd.Intn(9) + 1
}

// Buffer is the append-only log of presented digits for one session.
type Buffer struct {
	digits []int
}

// Reset clears the buffer for a new session.
func (b *Buffer) Reset() {
	b.digits = nil
}

// Append extends the log with a presented digit.
func (b *Buffer) Append(digit int) {
	b.digits = append(b.digits, digit)
}

// Len returns the number of presented digits.
func (b *Buffer) Len() int {
	return len(b.digits)
}

// Answer returns the expected response for the current digit at the given
// N-back depth: current + the digit nback positions earlier. The second
// return is false until the buffer holds at least nback+1 digits.
func (b *Buffer) Answer(nback int) (current, back, sum int, ok bool) {
	if nback < 1 || len(b.digits) < nback+1 {
		return 0, 0, 0, false
	}
	current = b.digits[len(b.digits)-1]
	back = b.digits[len(b.digits)-1-nback]
	return current, back, current + back, true
}
