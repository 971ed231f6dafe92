package mixer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSampleStoreRejectsOddLength(t *testing.T) {
	_, err := NewSampleStore(3)
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestNewSampleStoreRejectsNonPositive(t *testing.T) {
	_, err := NewSampleStore(0)
	require.ErrorIs(t, err, ErrUnsupported)
	_, err = NewSampleStore(-2)
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestSampleStoreReadWrite(t *testing.T) {
	s, err := NewSampleStore(4)
	require.NoError(t, err)
	rw := s.SamplesRW()
	for i := range rw {
		rw[i] = int16(i + 1)
	}
	assert.Equal(t, []int16{1, 2, 3, 4}, s.SamplesRO())
	assert.Equal(t, 4, s.Len())
}

func TestSampleStoreRefcount(t *testing.T) {
	s, err := NewSampleStore(2)
	require.NoError(t, err)
	s.Retain()
	s.Release()
	assert.NotNil(t, s.samples, "store should still be alive with one outstanding owner")
	s.Release()
	assert.Nil(t, s.samples, "store should be freed once the last owner releases")
}
