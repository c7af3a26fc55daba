package script

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/nanomesh/nanomesh/pkg/object"
	"github.com/nanomesh/nanomesh/pkg/shapes"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms nanomesh Lisp source code before passing
// it to zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: random-shapes -> random_shapes
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a
		// minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer from a Sexp.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_cube) and plain strings ("cube").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toFamily converts a keyword or string to a shape family. Keywords use
// kebab-case (:truncated-octahedron); family names use underscores.
func toFamily(s zygo.Sexp) (shapes.Family, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return "", err
	}
	f, err := shapes.ParseFamily(strings.ReplaceAll(name, "-", "_"))
	if err != nil {
		return "", err
	}
	return f, nil
}

// toPool converts a list or array of family tokens to a pool slice.
func toPool(s zygo.Sexp) ([]shapes.Family, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	pool := make([]shapes.Family, 0, len(items))
	for _, item := range items {
		f, err := toFamily(item)
		if err != nil {
			return nil, err
		}
		pool = append(pool, f)
	}
	return pool, nil
}

// toExtent converts a list or array of six numbers to an extent.
func toExtent(s zygo.Sexp) (object.Extent, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return object.Extent{}, err
	}
	if len(items) != 6 {
		return object.Extent{}, fmt.Errorf("extent requires 6 bounds, got %d", len(items))
	}
	var e object.Extent
	for i, item := range items {
		f, err := toFloat64(item)
		if err != nil {
			return object.Extent{}, fmt.Errorf("bound %d: %w", i, err)
		}
		e[i] = f
	}
	for i := 0; i < 6; i += 2 {
		if e[i] > e[i+1] {
			return object.Extent{}, fmt.Errorf("extent bounds inverted on axis %d", i/2)
		}
	}
	return e, nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the nanomesh DSL builtins into a zygomys
// environment. The builtins record steps on the provided Plan during
// evaluation.
//
// Source code must be preprocessed with preprocessSource() before
// evaluation so that :keyword tokens are converted to recognizable
// string literals.
func registerBuiltins(env *zygo.Zlisp, p *Plan) {

	// -----------------------------------------------------------------------
	// (scene :seed 42 :extent [-0.5 0.5 -0.5 0.5 -0.5 0.5])
	// -----------------------------------------------------------------------
	env.AddFunction("scene", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		if v, ok := pa.kw["seed"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("scene: seed: %w", err)
			}
			p.Seed = int64(n)
			p.HasSeed = true
		}
		if v, ok := pa.kw["extent"]; ok {
			e, err := toExtent(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("scene: extent: %w", err)
			}
			p.Extent = &e
		}

		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (random-shapes :count 5 :pool [:cube :rod :truncated-octahedron])
	//
	// Note: registered as "random_shapes" because zygomys does not
	// support hyphens in identifiers. The preprocessor converts
	// random-shapes to random_shapes in the source.
	// -----------------------------------------------------------------------
	env.AddFunction("random_shapes", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		st, err := randomizedStep(StepRandomShapes, args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("random-shapes: %w", err)
		}
		p.Steps = append(p.Steps, st)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (core-shells :count 2 :pool [:cube :sphere])
	// -----------------------------------------------------------------------
	env.AddFunction("core_shells", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		st, err := randomizedStep(StepCoreShells, args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("core-shells: %w", err)
		}
		p.Steps = append(p.Steps, st)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (shape :family :rod :height 1.0 :diameter 0.4 :smoothing 0.05)
	// -----------------------------------------------------------------------
	env.AddFunction("shape", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		v, ok := pa.kw["family"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("shape: family is required")
		}
		family, err := toFamily(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("shape: family: %w", err)
		}

		recipe := shapes.DefaultRecipe(family)
		fields := map[string]*float64{
			"size":           &recipe.Size,
			"height":         &recipe.Height,
			"diameter":       &recipe.Diameter,
			"truncation":     &recipe.Truncation,
			"smoothing":      &recipe.Smoothing,
			"tip-smoothing":  &recipe.TipSmoothing,
			"edge-smoothing": &recipe.EdgeSmoothing,
		}
		for key, dst := range fields {
			if v, ok := pa.kw[key]; ok {
				f, err := toFloat64(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("shape: %s: %w", key, err)
				}
				*dst = f
			}
		}

		p.Steps = append(p.Steps, Step{Kind: StepShape, Recipe: recipe})
		return zygo.SexpNull, nil
	})
}

// randomizedStep parses the shared :count / :pool arguments of the
// randomized step builtins.
func randomizedStep(kind StepKind, args []zygo.Sexp) (Step, error) {
	pa := parseArgs(args)
	st := Step{Kind: kind, Count: 1}

	if v, ok := pa.kw["count"]; ok {
		n, err := toInt(v)
		if err != nil {
			return Step{}, fmt.Errorf("count: %w", err)
		}
		if n < 1 {
			return Step{}, fmt.Errorf("count must be at least 1, got %d", n)
		}
		st.Count = n
	}
	if v, ok := pa.kw["pool"]; ok {
		pool, err := toPool(v)
		if err != nil {
			return Step{}, fmt.Errorf("pool: %w", err)
		}
		if len(pool) == 0 {
			return Step{}, fmt.Errorf("pool must not be empty")
		}
		st.Pool = pool
	}
	return st, nil
}
