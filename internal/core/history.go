// Linear undo/redo history of committed images
package core

import "sync"

// History owns the committed snapshots and the redo buffer.
// committed[0] is always the loaded image and committed is never empty after Load.
type History struct {
	mu          sync.RWMutex
	original    *PixelBuffer
	committed   []*PixelBuffer
	pendingRedo []*PixelBuffer
}

// NewHistory returns an empty history; call Load before anything else.
func NewHistory() *History {
	return &History{}
}

// Load starts a new history with img as both the original and the current image.
func (h *History) Load(img *PixelBuffer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.original = img
	h.committed = []*PixelBuffer{img}
	h.pendingRedo = nil
}

// Commit appends img unless it is sample-equal to the current image.
// The redo buffer is cleared either way. It reports whether img was appended.
func (h *History) Commit(img *PixelBuffer) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.committed) == 0 {
		return false, ErrNoImage
	}
	if img == nil {
		return false, ErrInvalidBuffer
	}

	h.pendingRedo = nil
	if h.committed[len(h.committed)-1].Equal(img) {
		return false, nil
	}
	h.committed = append(h.committed, img)
	return true, nil
}

// Undo moves the current image onto the redo buffer. The original can never be
// undone away, so Undo is a no-op with a single committed image.
func (h *History) Undo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.committed) <= 1 {
		return false
	}
	last := len(h.committed) - 1
	top := h.committed[last]
	h.committed[last] = nil
	h.committed = h.committed[:last]
	h.pendingRedo = append(h.pendingRedo, top)
	return true
}

// Redo restores the most recently undone image.
func (h *History) Redo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.pendingRedo) == 0 {
		return false
	}
	last := len(h.pendingRedo) - 1
	img := h.pendingRedo[last]
	h.pendingRedo[last] = nil
	h.pendingRedo = h.pendingRedo[:last]
	h.committed = append(h.committed, img)
	return true
}

// Reset drops every edit and the redo buffer, leaving only the original.
func (h *History) Reset() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.original == nil {
		return false
	}
	h.committed = []*PixelBuffer{h.original}
	h.pendingRedo = nil
	return true
}

// Current returns the top of the committed stack, or nil before Load.
func (h *History) Current() *PixelBuffer {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.committed) == 0 {
		return nil
	}
	return h.committed[len(h.committed)-1]
}

// Original returns the first loaded image.
func (h *History) Original() *PixelBuffer {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.original
}

func (h *History) Loaded() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.committed) > 0
}

// Len is the number of committed snapshots including the original.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.committed)
}

func (h *History) RedoLen() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.pendingRedo)
}

func (h *History) CanUndo() bool { return h.Len() > 1 }
func (h *History) CanRedo() bool { return h.RedoLen() > 0 }
