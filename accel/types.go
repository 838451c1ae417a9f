package accel

import "context"

// Occupant identifies which model, if any, is resident on the accelerator.
type Occupant string

const (
	OccupantNone  Occupant = "none"
	OccupantText  Occupant = "text"
	OccupantImage Occupant = "image"
)

// MemoryInfo reports accelerator memory accounting in gigabytes. Available is
// false when no accelerator can be queried; the numbers are then meaningless.
type MemoryInfo struct {
	Available   bool
	AllocatedGB float64
	ReservedGB  float64
	TotalGB     float64
	FreeGB      float64
}

// Status is a snapshot of the accelerator slot.
type Status struct {
	Occupant Occupant
	Memory   MemoryInfo
}

// TextModel is a loaded text model handle.
type TextModel interface {
	Complete(ctx context.Context, system string, prompt string) (string, error)
	Release() error
}

// ImageRequest describes one image synthesis call.
type ImageRequest struct {
	Prompt string
	Width  int
	Height int
	Steps  int
	Seed   uint32
}

// ImageModel is a loaded image model handle.
type ImageModel interface {
	Generate(ctx context.Context, req ImageRequest) ([]byte, error)
	Release() error
}

// TextLoader loads the text model onto the accelerator.
type TextLoader interface {
	LoadText(ctx context.Context) (TextModel, error)
}

// ImageLoader loads the image model onto the accelerator.
type ImageLoader interface {
	LoadImage(ctx context.Context) (ImageModel, error)
}

// MemoryReporter queries accelerator memory accounting.
type MemoryReporter interface {
	MemoryInfo(ctx context.Context) (MemoryInfo, error)
}
