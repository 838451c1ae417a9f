package vars

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGenerator implements TextGenerator for testing
type stubGenerator struct {
	values []string
	err    error
	calls  int
}

func (s *stubGenerator) GenerateValues(ctx context.Context, name string, contextPrompt string, minCount int) ([]string, error) {
	s.calls++
	return s.values, s.err
}

// sequenceRand returns pre-seeded draws in order, repeating the last one.
func sequenceRand(draws ...int) func(int) int {
	i := 0
	return func(n int) int {
		draw := draws[len(draws)-1]
		if i < len(draws) {
			draw = draws[i]
			i++
		}
		return draw % n
	}
}

func newTestResolver(t *testing.T, generator TextGenerator) (*Resolver, *Store) {
	t.Helper()
	store := NewStore(t.TempDir())
	return NewResolver(store, generator), store
}

func TestResolveNoPlaceholders(t *testing.T) {
	r, _ := newTestResolver(t, nil)

	for _, prompt := range []string{
		"",
		"a cat sitting on a mat",
		"almost a _token_ but not quite",
		"a colon: but no parameters",
	} {
		assert.Equal(t, prompt, r.Resolve(context.Background(), prompt, true))
	}
}

func TestResolveRandomDraws(t *testing.T) {
	r, store := newTestResolver(t, nil)
	_, err := store.Save("cat_breed", "breeds", []string{"Persian", "Siamese", "Maine Coon"})
	require.NoError(t, err)

	r.intn = sequenceRand(0, 1)

	got := r.Resolve(context.Background(), "a __cat_breed__ sitting on a __cat_breed__ mat", false)
	assert.Equal(t, "a Persian sitting on a Siamese mat", got)
}

func TestResolveIndexed(t *testing.T) {
	r, store := newTestResolver(t, nil)
	_, err := store.Save("breed", "", []string{"Persian", "Siamese", "Maine Coon"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{"first-index", "a __breed:0__ cat", "a Persian cat"},
		{"last-index", "a __breed:2__ cat", "a Maine Coon cat"},
		{"out-of-range", "a __breed:0__ and __breed:5__", "a Persian and __breed:5__"},
		{"mixed", "__breed:1__ vs __breed:1__", "Siamese vs Siamese"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(context.Background(), tt.prompt, false))
		})
	}
}

func TestResolveIdempotent(t *testing.T) {
	r, store := newTestResolver(t, nil)
	_, err := store.Save("breed", "", []string{"Persian"})
	require.NoError(t, err)

	resolved := r.Resolve(context.Background(), "a __breed__ cat", false)
	assert.Equal(t, "a Persian cat", resolved)

	// A fully substituted prompt passes through untouched.
	assert.Equal(t, resolved, r.Resolve(context.Background(), resolved, true))
}

func TestResolveUnknownLeftUntouched(t *testing.T) {
	r, _ := newTestResolver(t, nil)

	prompt := "a __mystery_animal__ in the fog"
	assert.Equal(t, prompt, r.Resolve(context.Background(), prompt, false))
}

func TestResolveEmptyVariableLeftUntouched(t *testing.T) {
	r, store := newTestResolver(t, nil)
	_, err := store.Save("empty", "no values yet", nil)
	require.NoError(t, err)

	prompt := "a __empty__ prompt"
	assert.Equal(t, prompt, r.Resolve(context.Background(), prompt, false))
}

func TestResolveAutoGenerate(t *testing.T) {
	values := make([]string, 20)
	for i := range values {
		values[i] = "value" + string(rune('a'+i))
	}
	generator := &stubGenerator{values: values}

	r, store := newTestResolver(t, generator)
	r.intn = sequenceRand(3)

	got := r.Resolve(context.Background(), "a __new_thing__ appears", true)
	assert.Equal(t, "a valued appears", got)
	assert.Equal(t, 1, generator.calls)

	// The generated collection is persisted and retrievable.
	loaded := store.Load()
	variable, ok := loaded[Canonical("new_thing")]
	require.True(t, ok, "generated variable should be persisted")
	assert.Equal(t, values, variable.Values)
	assert.Equal(t, "Auto-generated values for new_thing", variable.Description)
}

func TestResolveAutoGenerateDisabled(t *testing.T) {
	generator := &stubGenerator{values: []string{"a", "b"}}
	r, _ := newTestResolver(t, generator)

	prompt := "a __missing__ thing"
	assert.Equal(t, prompt, r.Resolve(context.Background(), prompt, false))
	assert.Zero(t, generator.calls)
}

func TestResolveGenerationFailureTerminates(t *testing.T) {
	generator := &stubGenerator{err: errors.New("model unavailable")}
	r, _ := newTestResolver(t, generator)

	prompt := "a __doomed__ prompt"
	assert.Equal(t, prompt, r.Resolve(context.Background(), prompt, true))

	// The stall check stops the loop after the first fruitless pass.
	assert.Less(t, generator.calls, 10)
}

func TestResolveNestedVariables(t *testing.T) {
	r, store := newTestResolver(t, nil)
	_, err := store.Save("outer", "", []string{"a __inner__ scene"})
	require.NoError(t, err)
	_, err = store.Save("inner", "", []string{"moonlit"})
	require.NoError(t, err)

	got := r.Resolve(context.Background(), "paint __outer__", false)
	assert.Equal(t, "paint a moonlit scene", got)
}

func TestResolveCyclicVariableTerminates(t *testing.T) {
	r, store := newTestResolver(t, nil)
	// A variable whose value reintroduces its own token never settles; the
	// pass limit has to stop it.
	_, err := store.Save("loop", "", []string{"again __loop__"})
	require.NoError(t, err)

	got := r.Resolve(context.Background(), "__loop__", false)
	assert.Contains(t, got, "__loop__")
}

func TestResolveNamespacedVariable(t *testing.T) {
	r, store := newTestResolver(t, nil)
	_, err := store.Save("animals/cat_breed", "", []string{"Bengal"})
	require.NoError(t, err)

	got := r.Resolve(context.Background(), "a __animals/cat_breed__ cat", false)
	assert.Equal(t, "a Bengal cat", got)
}

func TestResolveCancelledContext(t *testing.T) {
	r, store := newTestResolver(t, nil)
	_, err := store.Save("breed", "", []string{"Persian"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Cancellation between iterations returns the prompt as it stands.
	assert.Equal(t, "a __breed__ cat", r.Resolve(ctx, "a __breed__ cat", false))
}
