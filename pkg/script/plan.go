package script

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nanomesh/nanomesh/pkg/config"
	"github.com/nanomesh/nanomesh/pkg/kernel"
	"github.com/nanomesh/nanomesh/pkg/object"
	"github.com/nanomesh/nanomesh/pkg/scene"
	"github.com/nanomesh/nanomesh/pkg/shapes"
)

// StepKind discriminates the generation steps a script can request.
type StepKind int

const (
	// StepRandomShapes places count shapes with randomized recipes.
	StepRandomShapes StepKind = iota
	// StepCoreShells places count core-shell pairs.
	StepCoreShells
	// StepShape places one shape built from an explicit recipe.
	StepShape
)

func (k StepKind) String() string {
	switch k {
	case StepRandomShapes:
		return "random-shapes"
	case StepCoreShells:
		return "core-shells"
	case StepShape:
		return "shape"
	}
	return fmt.Sprintf("StepKind(%d)", int(k))
}

// Step is one generation request recorded by a script builtin.
type Step struct {
	Kind StepKind

	// Count applies to the randomized step kinds.
	Count int

	// Pool restricts the families randomized steps draw from. Empty
	// means the kind's default pool.
	Pool []shapes.Family

	// Recipe carries the parameters of an explicit shape step.
	Recipe shapes.Recipe
}

// Plan is the output of evaluating a script: scene settings plus an
// ordered list of generation steps. Evaluation never touches a kernel
// engine; Execute applies the plan afterwards.
type Plan struct {
	// Seed overrides the configured random seed when HasSeed is set.
	Seed    int64
	HasSeed bool

	// Extent overrides the configured containment region when non-nil.
	Extent *object.Extent

	Steps []Step
}

// NewPlan returns an empty plan.
func NewPlan() *Plan {
	return &Plan{}
}

// ShapeCount totals the shapes the plan will place, counting a
// core-shell pair as two.
func (p *Plan) ShapeCount() int {
	n := 0
	for _, st := range p.Steps {
		switch st.Kind {
		case StepRandomShapes:
			n += st.Count
		case StepCoreShells:
			n += 2 * st.Count
		case StepShape:
			n++
		}
	}
	return n
}

// Execute runs the plan's steps against a fresh scene on the engine and
// returns the resulting meshes. Plan settings win over the config; a
// zero seed in both derives one from the clock.
func Execute(p *Plan, eng kernel.Engine, cfg config.Config, logger *log.Logger) ([]*kernel.Mesh, error) {
	seed := cfg.Seed
	if p.HasSeed {
		seed = p.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	extent := cfg.Extent
	if p.Extent != nil {
		extent = *p.Extent
	}

	builder := shapes.NewBuilder(eng,
		shapes.WithEpsilon(cfg.Epsilon),
		shapes.WithBevelSegments(cfg.BevelSegments),
		shapes.WithSphereSubdivisions(cfg.SphereSubdivisions))

	opts := []scene.Option{
		scene.WithExtent(extent),
		scene.WithRand(rand.New(rand.NewSource(seed))),
		scene.WithBuilder(builder),
		scene.WithRetryLimit(cfg.PlacementRetryLimit),
	}
	if logger != nil {
		opts = append(opts, scene.WithLogger(logger))
	}
	s, err := scene.Open(eng, opts...)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	for i, st := range p.Steps {
		if err := runStep(s, st); err != nil {
			return nil, fmt.Errorf("script: step %d (%s): %w", i, st.Kind, err)
		}
	}
	return s.Meshes()
}

func runStep(s *scene.Scene, st Step) error {
	switch st.Kind {
	case StepRandomShapes:
		pool := st.Pool
		if len(pool) == 0 {
			pool = shapes.AllFamilies
		}
		for i := 0; i < st.Count; i++ {
			if _, err := s.AddRandomShape(pool); err != nil {
				return err
			}
		}
		return nil
	case StepCoreShells:
		pool := st.Pool
		if len(pool) == 0 {
			pool = shapes.CoreShellFamilies
		}
		for i := 0; i < st.Count; i++ {
			if _, err := s.AddRandomCoreShell(pool); err != nil {
				return err
			}
		}
		return nil
	case StepShape:
		_, err := s.AddShape(st.Recipe)
		return err
	}
	return fmt.Errorf("unknown step kind %d", int(st.Kind))
}
