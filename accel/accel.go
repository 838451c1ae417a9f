// Package accel arbitrates residency on a single shared accelerator. The
// text model and the image model cannot fit in memory together, so at most
// one of them is loaded at any instant; acquiring one evicts the other.
package accel

import (
	"context"
	"fmt"
	"sync"

	"pyro/logger"
)

// Manager owns the accelerator slot. It is the sole mutator of model
// residency; generation ports must go through Acquire/Release and never load
// or unload a model themselves.
type Manager struct {
	mu sync.Mutex

	textLoader  TextLoader
	imageLoader ImageLoader
	memory      MemoryReporter

	occupant Occupant
	text     TextModel
	image    ImageModel
}

func NewManager(textLoader TextLoader, imageLoader ImageLoader, memory MemoryReporter) *Manager {
	return &Manager{
		textLoader:  textLoader,
		imageLoader: imageLoader,
		memory:      memory,
		occupant:    OccupantNone,
	}
}

// AcquireText returns the resident text model, evicting the image model
// first when it holds the slot. When loading fails the slot stays empty and
// the error is returned; the previous occupant is not reloaded.
func (m *Manager) AcquireText(ctx context.Context) (TextModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.occupant == OccupantText {
		return m.text, nil
	}

	m.evictLocked()

	if m.textLoader == nil {
		return nil, fmt.Errorf("no text model configured")
	}

	logger.Model("text").Debug("Loading text model")
	handle, err := m.textLoader.LoadText(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load text model: %w", err)
	}

	m.text = handle
	m.occupant = OccupantText
	return handle, nil
}

// AcquireImage is symmetric to AcquireText.
func (m *Manager) AcquireImage(ctx context.Context) (ImageModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.occupant == OccupantImage {
		return m.image, nil
	}

	m.evictLocked()

	if m.imageLoader == nil {
		return nil, fmt.Errorf("no image model configured")
	}

	logger.Model("image").Debug("Loading image model")
	handle, err := m.imageLoader.LoadImage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load image model: %w", err)
	}

	m.image = handle
	m.occupant = OccupantImage
	return handle, nil
}

// ReleaseText frees the text occupant if it is resident. No-op otherwise.
func (m *Manager) ReleaseText() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.occupant == OccupantText {
		m.evictLocked()
	}
}

// ReleaseImage frees the image occupant if it is resident. No-op otherwise.
func (m *Manager) ReleaseImage() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.occupant == OccupantImage {
		m.evictLocked()
	}
}

// ReleaseAll clears the slot whatever is resident.
func (m *Manager) ReleaseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictLocked()
}

// Status reports the resident occupant and, when queryable, accelerator
// memory accounting.
func (m *Manager) Status(ctx context.Context) Status {
	m.mu.Lock()
	occupant := m.occupant
	m.mu.Unlock()

	status := Status{Occupant: occupant}
	if m.memory == nil {
		return status
	}

	info, err := m.memory.MemoryInfo(ctx)
	if err != nil {
		logger.Debug("Accelerator memory query failed", "error", err)
		return status
	}
	status.Memory = info
	return status
}

// evictLocked releases whatever occupies the slot. Release blocks until the
// occupant's memory is reclaimed; errors are logged, the slot is cleared
// regardless so a fresh load can proceed.
func (m *Manager) evictLocked() {
	switch m.occupant {
	case OccupantText:
		logger.Model("text").Debug("Unloading text model to free accelerator memory")
		if err := m.text.Release(); err != nil {
			logger.Warn("Error releasing text model", "error", err)
		}
		m.text = nil
	case OccupantImage:
		logger.Model("image").Debug("Unloading image model to free accelerator memory")
		if err := m.image.Release(); err != nil {
			logger.Warn("Error releasing image model", "error", err)
		}
		m.image = nil
	}
	m.occupant = OccupantNone
}
