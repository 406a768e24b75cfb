package allocator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMemArenaGrowIsMonotoneAndStable(t *testing.T) {
	ar, err := newMemArena(4096)
	require.NoError(t, err)

	assert.Zero(t, ar.low())
	assert.Zero(t, ar.high())

	base1, ok := ar.grow(1024)
	require.True(t, ok)
	assert.EqualValues(t, 0, base1)
	assert.EqualValues(t, 1024, ar.high())

	backing := &ar.bytes()[0]

	base2, ok := ar.grow(1024)
	require.True(t, ok)
	assert.EqualValues(t, 1024, base2)
	assert.EqualValues(t, 2048, ar.high())

	// The reservation is fixed up front; growing never relocates it, so
	// an offset captured before a later grow stays valid afterward.
	assert.Same(t, backing, &ar.bytes()[0])
}

func TestMemArenaGrowFailsPastCapacity(t *testing.T) {
	ar, err := newMemArena(1024)
	require.NoError(t, err)

	_, ok := ar.grow(1024)
	require.True(t, ok)

	_, ok = ar.grow(1)
	assert.False(t, ok)
	assert.EqualValues(t, 1024, ar.high())
}

func TestNewMemArenaRejectsZeroCapacity(t *testing.T) {
	_, err := newMemArena(0)
	assert.Error(t, err)
}

// TestAllocateReportsArenaExhaustedFromOSRefusal drives a Heap against a
// MockArena that backs its first grow with a real memArena (so the
// initial chunk and subsequent placements behave normally) but forces
// every later grow to fail, simulating the OS refusing to extend the
// mapping for a reason internal bookkeeping alone could never trigger
// deterministically.
func TestAllocateReportsArenaExhaustedFromOSRefusal(t *testing.T) {
	ctrl := gomock.NewController(t)

	real, err := newMemArena(1 << 20)
	require.NoError(t, err)

	mock := NewMockArena(ctrl)
	mock.EXPECT().grow(gomock.Any()).DoAndReturn(real.grow).Times(1)
	mock.EXPECT().grow(gomock.Any()).Return(uintptr(0), false).AnyTimes()
	mock.EXPECT().low().DoAndReturn(real.low).AnyTimes()
	mock.EXPECT().high().DoAndReturn(real.high).AnyTimes()
	mock.EXPECT().bytes().DoAndReturn(real.bytes).AnyTimes()

	h := &Heap{ar: mock, cfg: defaultConfig()}
	require.NoError(t, h.initHeap())

	highBefore := h.ar.high()

	p := h.Allocate(1 << 16) // bigger than the initial chunk, forces growHeap.
	assert.Nil(t, p)
	assert.Equal(t, highBefore, h.ar.high())
	require.Error(t, h.LastError())
}
