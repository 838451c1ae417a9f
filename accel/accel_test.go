package accel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTextModel struct {
	released bool
}

func (f *fakeTextModel) Complete(ctx context.Context, system string, prompt string) (string, error) {
	return "ok", nil
}
func (f *fakeTextModel) Release() error {
	f.released = true
	return nil
}

type fakeImageModel struct {
	released bool
}

func (f *fakeImageModel) Generate(ctx context.Context, req ImageRequest) ([]byte, error) {
	return []byte{0x89}, nil
}
func (f *fakeImageModel) Release() error {
	f.released = true
	return nil
}

type fakeLoaders struct {
	textLoads  int
	imageLoads int
	textErr    error
	imageErr   error
	lastText   *fakeTextModel
	lastImage  *fakeImageModel
}

func (f *fakeLoaders) LoadText(ctx context.Context) (TextModel, error) {
	if f.textErr != nil {
		return nil, f.textErr
	}
	f.textLoads++
	f.lastText = &fakeTextModel{}
	return f.lastText, nil
}

func (f *fakeLoaders) LoadImage(ctx context.Context) (ImageModel, error) {
	if f.imageErr != nil {
		return nil, f.imageErr
	}
	f.imageLoads++
	f.lastImage = &fakeImageModel{}
	return f.lastImage, nil
}

func TestAcquireTextThenImage(t *testing.T) {
	loaders := &fakeLoaders{}
	m := NewManager(loaders, loaders, nil)
	ctx := context.Background()

	_, err := m.AcquireText(ctx)
	require.NoError(t, err)
	assert.Equal(t, OccupantText, m.Status(ctx).Occupant)

	_, err = m.AcquireImage(ctx)
	require.NoError(t, err)

	status := m.Status(ctx)
	assert.Equal(t, OccupantImage, status.Occupant)
	assert.True(t, loaders.lastText.released, "text model must be released before the image model loads")
}

func TestAcquireImageThenText(t *testing.T) {
	loaders := &fakeLoaders{}
	m := NewManager(loaders, loaders, nil)
	ctx := context.Background()

	_, err := m.AcquireImage(ctx)
	require.NoError(t, err)

	_, err = m.AcquireText(ctx)
	require.NoError(t, err)

	assert.Equal(t, OccupantText, m.Status(ctx).Occupant)
	assert.True(t, loaders.lastImage.released)
}

func TestAcquireResidentReturnsSameHandle(t *testing.T) {
	loaders := &fakeLoaders{}
	m := NewManager(loaders, loaders, nil)
	ctx := context.Background()

	first, err := m.AcquireText(ctx)
	require.NoError(t, err)
	second, err := m.AcquireText(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, loaders.textLoads, "resident model must not be reloaded")
}

func TestNeverBothResident(t *testing.T) {
	loaders := &fakeLoaders{}
	m := NewManager(loaders, loaders, nil)
	ctx := context.Background()

	// Any interleaving of acquire calls leaves exactly one occupant.
	acquires := []func() error{
		func() error { _, err := m.AcquireText(ctx); return err },
		func() error { _, err := m.AcquireImage(ctx); return err },
		func() error { _, err := m.AcquireImage(ctx); return err },
		func() error { _, err := m.AcquireText(ctx); return err },
		func() error { _, err := m.AcquireText(ctx); return err },
		func() error { _, err := m.AcquireImage(ctx); return err },
	}

	for i, acquire := range acquires {
		require.NoError(t, acquire())
		occupant := m.Status(ctx).Occupant
		assert.NotEqual(t, OccupantNone, occupant, "step %d", i)
	}
}

func TestReleaseIsNoOpWhenEmpty(t *testing.T) {
	loaders := &fakeLoaders{}
	m := NewManager(loaders, loaders, nil)

	m.ReleaseText()
	m.ReleaseImage()
	m.ReleaseAll()

	assert.Equal(t, OccupantNone, m.Status(context.Background()).Occupant)
}

func TestReleaseClearsSlot(t *testing.T) {
	loaders := &fakeLoaders{}
	m := NewManager(loaders, loaders, nil)
	ctx := context.Background()

	_, err := m.AcquireText(ctx)
	require.NoError(t, err)

	// Releasing the wrong occupant does nothing.
	m.ReleaseImage()
	assert.Equal(t, OccupantText, m.Status(ctx).Occupant)

	m.ReleaseText()
	assert.Equal(t, OccupantNone, m.Status(ctx).Occupant)
	assert.True(t, loaders.lastText.released)
}

func TestFailedLoadLeavesSlotEmpty(t *testing.T) {
	loaders := &fakeLoaders{imageErr: errors.New("out of memory")}
	m := NewManager(loaders, loaders, nil)
	ctx := context.Background()

	_, err := m.AcquireText(ctx)
	require.NoError(t, err)

	_, err = m.AcquireImage(ctx)
	require.Error(t, err)

	// The text occupant was evicted and the failed load must not leave a
	// half-initialized image occupant behind.
	assert.Equal(t, OccupantNone, m.Status(ctx).Occupant)
	assert.True(t, loaders.lastText.released)
}

type fakeMemory struct {
	info MemoryInfo
	err  error
}

func (f *fakeMemory) MemoryInfo(ctx context.Context) (MemoryInfo, error) {
	return f.info, f.err
}

func TestStatusMemory(t *testing.T) {
	loaders := &fakeLoaders{}
	mem := &fakeMemory{info: MemoryInfo{Available: true, TotalGB: 24, FreeGB: 20}}
	m := NewManager(loaders, loaders, mem)

	status := m.Status(context.Background())
	assert.True(t, status.Memory.Available)
	assert.Equal(t, 24.0, status.Memory.TotalGB)
}

func TestStatusMemoryUnavailable(t *testing.T) {
	loaders := &fakeLoaders{}
	mem := &fakeMemory{err: errors.New("no accelerator")}
	m := NewManager(loaders, loaders, mem)

	status := m.Status(context.Background())
	assert.False(t, status.Memory.Available)
}
