package core

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shade(t *testing.T, v uint8) *PixelBuffer {
	t.Helper()
	return filled(t, 4, 4, [3]uint8{v, v, v})
}

func TestHistoryBeforeLoad(t *testing.T) {
	h := NewHistory()
	assert.False(t, h.Loaded())
	assert.Nil(t, h.Current())
	assert.False(t, h.Undo())
	assert.False(t, h.Redo())
	assert.False(t, h.Reset())

	_, err := h.Commit(shade(t, 1))
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestHistoryCommitUndoRedo(t *testing.T) {
	h := NewHistory()
	h.Load(shade(t, 0))

	appended, err := h.Commit(shade(t, 1))
	require.NoError(t, err)
	assert.True(t, appended)
	_, err = h.Commit(shade(t, 2))
	require.NoError(t, err)
	assert.Equal(t, 3, h.Len())

	require.True(t, h.Undo())
	assert.True(t, shade(t, 1).Equal(h.Current()))
	assert.Equal(t, 1, h.RedoLen())

	require.True(t, h.Redo())
	assert.True(t, shade(t, 2).Equal(h.Current()))
	assert.False(t, h.CanRedo())

	require.True(t, h.Undo())
	require.True(t, h.Undo())
	assert.False(t, h.Undo(), "the original cannot be undone")
	assert.True(t, shade(t, 0).Equal(h.Current()))
	assert.Equal(t, 2, h.RedoLen())
}

func TestHistoryCommitClearsRedo(t *testing.T) {
	h := NewHistory()
	h.Load(shade(t, 0))
	_, _ = h.Commit(shade(t, 1))
	h.Undo()
	require.True(t, h.CanRedo())

	_, err := h.Commit(shade(t, 5))
	require.NoError(t, err)
	assert.False(t, h.CanRedo())
	assert.False(t, h.Redo())
}

func TestHistoryDuplicateCommit(t *testing.T) {
	h := NewHistory()
	h.Load(shade(t, 0))
	_, _ = h.Commit(shade(t, 1))
	h.Undo()

	appended, err := h.Commit(shade(t, 0))
	require.NoError(t, err)
	assert.False(t, appended)
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, 0, h.RedoLen(), "redo is discarded even when nothing is appended")

	_, err = h.Commit(nil)
	assert.ErrorIs(t, err, ErrInvalidBuffer)
}

func TestHistoryReset(t *testing.T) {
	h := NewHistory()
	orig := shade(t, 0)
	h.Load(orig)
	_, _ = h.Commit(shade(t, 1))
	_, _ = h.Commit(shade(t, 2))
	h.Undo()

	require.True(t, h.Reset())
	assert.Same(t, orig, h.Current())
	assert.Same(t, orig, h.Original())
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, 0, h.RedoLen())
}

func TestHistoryLoadReplacesSession(t *testing.T) {
	h := NewHistory()
	h.Load(shade(t, 0))
	_, _ = h.Commit(shade(t, 1))
	h.Undo()

	next := shade(t, 9)
	h.Load(next)
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, 0, h.RedoLen())
	assert.Same(t, next, h.Original())
}

// Random operation sequences against a slice model.
func TestHistoryRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 50; round++ {
		h := NewHistory()
		h.Load(shade(t, 0))
		model := []uint8{0}
		var redo []uint8

		for step := 0; step < 60; step++ {
			switch rng.Intn(4) {
			case 0:
				v := uint8(rng.Intn(4))
				appended, err := h.Commit(shade(t, v))
				require.NoError(t, err)
				redo = nil
				if model[len(model)-1] != v {
					model = append(model, v)
					assert.True(t, appended)
				} else {
					assert.False(t, appended)
				}
			case 1:
				ok := h.Undo()
				assert.Equal(t, len(model) > 1, ok)
				if ok {
					redo = append(redo, model[len(model)-1])
					model = model[:len(model)-1]
				}
			case 2:
				ok := h.Redo()
				assert.Equal(t, len(redo) > 0, ok)
				if ok {
					model = append(model, redo[len(redo)-1])
					redo = redo[:len(redo)-1]
				}
			case 3:
				if rng.Intn(5) == 0 {
					h.Reset()
					model = model[:1]
					redo = nil
				}
			}

			require.Equal(t, len(model), h.Len())
			require.Equal(t, len(redo), h.RedoLen())
			require.True(t, shade(t, model[len(model)-1]).Equal(h.Current()))
			require.True(t, shade(t, 0).Equal(h.Original()))
		}
	}
}
