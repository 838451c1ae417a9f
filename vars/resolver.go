package vars

import (
	"context"
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	"pyro/logger"
)

// tokenPattern finds __variable__ or __variable:index__ in a prompt.
// Slashes are allowed so variables can live in library subfolders.
var tokenPattern = regexp.MustCompile(`__[a-zA-Z0-9_\-/]+(?::\d+)?__`)

// TextGenerator produces candidate values for a variable that does not exist
// yet. An empty result (or error) means generation failed for this attempt.
type TextGenerator interface {
	GenerateValues(ctx context.Context, variableName string, contextPrompt string, minCount int) ([]string, error)
}

// Resolver substitutes prompt variables into a prompt, generating missing
// collections on demand through a TextGenerator.
type Resolver struct {
	store     *Store
	generator TextGenerator

	intn          func(n int) int
	maxIterations int
	minValues     int
}

func NewResolver(store *Store, generator TextGenerator) *Resolver {
	return &Resolver{
		store:         store,
		generator:     generator,
		intn:          rand.Intn,
		maxIterations: 10,
		minValues:     20,
	}
}

// Resolve substitutes every __variable__ and __variable:index__ token in the
// prompt. Bare tokens draw a random value, indexed tokens pick the value at
// that position. Unknown variables are generated through the TextGenerator
// when autoGenerate is set and the result is persisted for future prompts.
//
// Resolution never fails: tokens that cannot be resolved are left in place
// and the partially substituted prompt is returned as-is. Substitution runs
// in passes until no token remains, a pass makes no progress, or the
// pass limit is reached.
func (r *Resolver) Resolve(ctx context.Context, prompt string, autoGenerate bool) string {
	variables := r.store.Load()
	substituted := prompt

	for iteration := 0; iteration < r.maxIterations; iteration++ {
		if ctx.Err() != nil {
			logger.Debug("Resolution cancelled", "iteration", iteration)
			return substituted
		}

		matches := tokenPattern.FindAllString(substituted, -1)
		if len(matches) == 0 {
			break
		}

		madeSubstitution := false

		for _, token := range matches {
			name, index, indexed := parseToken(token)

			if _, known := variables[Canonical(name)]; !known && autoGenerate {
				variables = r.generateMissing(ctx, name, prompt, variables)
			}
			variable, known := variables[Canonical(name)]

			if indexed {
				if !known {
					continue
				}
				if index < len(variable.Values) {
					replacement := variable.Values[index]
					substituted = strings.Replace(substituted, token, replacement, 1)
					madeSubstitution = true
					logger.Debug("Substituted indexed variable", "token", token, "index", index, "value", replacement)
				} else {
					logger.Warn("Index out of range for variable", "token", token, "index", index, "values", len(variable.Values))
				}
				continue
			}

			if known && len(variable.Values) > 0 {
				replacement := variable.Values[r.intn(len(variable.Values))]
				substituted = strings.Replace(substituted, token, replacement, 1)
				madeSubstitution = true
				logger.Debug("Substituted variable", "token", token, "value", replacement)
			} else {
				logger.Warn("Unknown variable, leaving as-is", "token", token)
			}
		}

		// No progress means the remaining tokens are unresolvable.
		if !madeSubstitution {
			break
		}
	}

	return substituted
}

// generateMissing asks the TextGenerator for values, saves them and reloads
// the variable mapping so the rest of the pass can use them. Failure is soft:
// the variable simply stays unknown.
func (r *Resolver) generateMissing(ctx context.Context, name string, contextPrompt string, variables map[string]Variable) map[string]Variable {
	if r.generator == nil {
		return variables
	}

	log := logger.Variable(name)
	log.Info("Generating values for missing variable")

	values, err := r.generator.GenerateValues(ctx, name, contextPrompt, r.minValues)
	if err != nil {
		log.Warn("Variable generation failed", "error", err)
		return variables
	}
	if len(values) == 0 {
		log.Warn("Variable generation produced no values")
		return variables
	}

	path, err := r.store.Save(name, "Auto-generated values for "+name, values)
	if err != nil {
		log.Warn("Failed to save generated variable", "error", err)
		return variables
	}
	log.Info("Generated variable values", "count", len(values), "path", path)

	return r.store.Load()
}

// parseToken splits a matched token into its bare name and optional index.
func parseToken(token string) (name string, index int, indexed bool) {
	inner := strings.TrimSuffix(strings.TrimPrefix(token, delimiter), delimiter)
	if at := strings.IndexByte(inner, ':'); at >= 0 {
		idx, err := strconv.Atoi(inner[at+1:])
		if err != nil {
			return inner[:at], 0, false
		}
		return inner[:at], idx, true
	}
	return inner, 0, false
}
