package script

import (
	"testing"

	"github.com/nanomesh/nanomesh/pkg/shapes"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(shape :family :cube)`,
			expect: `(shape "__kw_family" "__kw_cube")`,
		},
		{
			name:   "multiple keywords",
			input:  `(random-shapes :count 5 :pool [:rod])`,
			expect: `(random_shapes "__kw_count" 5 "__kw_pool" ["__kw_rod"])`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(core-shells :count 2)`,
			expect: `(core_shells "__kw_count" 2)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:tip-smoothing`,
			expect: `"__kw_tip-smoothing"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Builtin tests
// ---------------------------------------------------------------------------

func evalPlan(t *testing.T, source string) *Plan {
	t.Helper()
	eng := NewEngine()
	p, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if p == nil {
		t.Fatal("expected non-nil plan")
	}
	return p
}

func TestSceneSettings(t *testing.T) {
	p := evalPlan(t, `(scene :seed 42 :extent [-1.0 1.0 -1.0 1.0 -0.25 0.25])`)

	if !p.HasSeed || p.Seed != 42 {
		t.Errorf("seed = %d (set %v), want 42", p.Seed, p.HasSeed)
	}
	if p.Extent == nil {
		t.Fatal("expected extent override")
	}
	if p.Extent[0] != -1.0 || p.Extent[5] != 0.25 {
		t.Errorf("extent = %v", *p.Extent)
	}
}

func TestSceneDefaultsUntouched(t *testing.T) {
	p := evalPlan(t, `(scene)`)
	if p.HasSeed {
		t.Error("seed should stay unset")
	}
	if p.Extent != nil {
		t.Error("extent should stay unset")
	}
}

func TestRandomShapesStep(t *testing.T) {
	p := evalPlan(t, `(random-shapes :count 5 :pool [:cube :rod :truncated-octahedron])`)

	if len(p.Steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(p.Steps))
	}
	st := p.Steps[0]
	if st.Kind != StepRandomShapes {
		t.Errorf("kind = %s, want random-shapes", st.Kind)
	}
	if st.Count != 5 {
		t.Errorf("count = %d, want 5", st.Count)
	}
	want := []shapes.Family{shapes.Cube, shapes.Rod, shapes.TruncatedOctahedron}
	if len(st.Pool) != len(want) {
		t.Fatalf("pool = %v, want %v", st.Pool, want)
	}
	for i := range want {
		if st.Pool[i] != want[i] {
			t.Errorf("pool[%d] = %s, want %s", i, st.Pool[i], want[i])
		}
	}
}

func TestRandomShapesDefaults(t *testing.T) {
	p := evalPlan(t, `(random-shapes)`)
	st := p.Steps[0]
	if st.Count != 1 {
		t.Errorf("count = %d, want default 1", st.Count)
	}
	if st.Pool != nil {
		t.Errorf("pool = %v, want nil (full pool)", st.Pool)
	}
}

func TestCoreShellsStep(t *testing.T) {
	p := evalPlan(t, `(core-shells :count 2 :pool [:cube :sphere])`)

	st := p.Steps[0]
	if st.Kind != StepCoreShells {
		t.Errorf("kind = %s, want core-shells", st.Kind)
	}
	if st.Count != 2 {
		t.Errorf("count = %d, want 2", st.Count)
	}
}

func TestShapeStep(t *testing.T) {
	p := evalPlan(t, `
(shape :family :rod :height 1.2 :diameter 0.4 :smoothing 0.05)
`)

	if len(p.Steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(p.Steps))
	}
	st := p.Steps[0]
	if st.Kind != StepShape {
		t.Fatalf("kind = %s, want shape", st.Kind)
	}
	r := st.Recipe
	if r.Family != shapes.Rod {
		t.Errorf("family = %s, want rod", r.Family)
	}
	if r.Height != 1.2 || r.Diameter != 0.4 || r.Smoothing != 0.05 {
		t.Errorf("recipe = %+v", r)
	}
	// Unset fields keep the family defaults.
	if r.Size != 1.0 {
		t.Errorf("size = %g, want default 1.0", r.Size)
	}
}

func TestShapeKebabFields(t *testing.T) {
	p := evalPlan(t, `
(shape :family :truncated-triangle :tip-smoothing 0.02 :edge-smoothing 0.01)
`)
	r := p.Steps[0].Recipe
	if r.Family != shapes.TruncatedTriangle {
		t.Errorf("family = %s, want truncated_triangle", r.Family)
	}
	if r.TipSmoothing != 0.02 || r.EdgeSmoothing != 0.01 {
		t.Errorf("recipe = %+v", r)
	}
}

func TestStepOrderPreserved(t *testing.T) {
	p := evalPlan(t, `
(scene :seed 7)
(random-shapes :count 2)
(shape :family :cube)
(core-shells)
`)

	kinds := []StepKind{StepRandomShapes, StepShape, StepCoreShells}
	if len(p.Steps) != len(kinds) {
		t.Fatalf("expected %d steps, got %d", len(kinds), len(p.Steps))
	}
	for i, k := range kinds {
		if p.Steps[i].Kind != k {
			t.Errorf("step %d kind = %s, want %s", i, p.Steps[i].Kind, k)
		}
	}
	if got := p.ShapeCount(); got != 5 {
		t.Errorf("ShapeCount() = %d, want 5", got)
	}
}

func TestVariablesInScripts(t *testing.T) {
	p := evalPlan(t, `
(def n 3)
(random-shapes :count n)
`)
	if p.Steps[0].Count != 3 {
		t.Errorf("count = %d, want 3 from variable", p.Steps[0].Count)
	}
}

func TestRejectedArguments(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"unknown family", `(random-shapes :pool [:pyramid])`},
		{"empty pool", `(random-shapes :pool [])`},
		{"zero count", `(random-shapes :count 0)`},
		{"short extent", `(scene :extent [0.0 1.0])`},
		{"inverted extent", `(scene :extent [1.0 -1.0 0.0 1.0 0.0 1.0])`},
		{"missing family", `(shape :size 2.0)`},
		{"non-numeric size", `(shape :family :cube :size "big")`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := NewEngine()
			p, evalErrs, err := eng.Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if p != nil {
				t.Fatal("expected nil plan")
			}
			if len(evalErrs) == 0 {
				t.Fatal("expected eval errors")
			}
		})
	}
}
