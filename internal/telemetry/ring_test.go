package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingPushEvicts(t *testing.T) {
	r := NewRing[int](3)
	assert.Equal(t, []int{}, r.Values())

	for i := 1; i <= 5; i++ {
		r.Push(i)
	}
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, 3, r.Cap())
	assert.Equal(t, []int{3, 4, 5}, r.Values())
	assert.Equal(t, 3, r.At(0))
	assert.Equal(t, 5, r.At(2))
}

func TestRingValuesIsCopy(t *testing.T) {
	r := NewRing[int](2)
	r.Push(1)
	v := r.Values()
	v[0] = 42
	assert.Equal(t, 1, r.At(0))
}

func TestRingAtOutOfRange(t *testing.T) {
	r := NewRing[int](2)
	r.Push(1)
	assert.Panics(t, func() { r.At(1) })
}

func TestRingMinimumCapacity(t *testing.T) {
	r := NewRing[string](0)
	r.Push("a")
	r.Push("b")
	assert.Equal(t, []string{"b"}, r.Values())
}
