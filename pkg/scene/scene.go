// Package scene composes randomized nanoparticle shapes inside a
// containment region. A Scene owns its kernel engine's document state
// exclusively; only one Scene may be open at a time.
package scene

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/nanomesh/nanomesh/pkg/kernel"
	"github.com/nanomesh/nanomesh/pkg/object"
	"github.com/nanomesh/nanomesh/pkg/shapes"
)

// ErrSceneOpen reports an attempt to open a second Scene while one is
// still active.
var ErrSceneOpen = errors.New("scene: another scene is already open")

// DefaultExtent is the unit containment box centered at the origin.
var DefaultExtent = object.Extent{-0.5, 0.5, -0.5, 0.5, -0.5, 0.5}

const (
	defaultRetryLimit = 10000

	// Placed shapes target this fraction of the extent, drawn uniformly.
	shapeScaleLow  = 0.75
	shapeScaleHigh = 0.9

	// Core size as a fraction of the shell's enclosing sphere.
	coreScaleLow  = 0.5
	coreScaleHigh = 0.9

	// Placement region shrink factor, keeping shapes off the walls.
	placementShrink = 0.95
)

var (
	activeMu sync.Mutex
	active   bool
)

// Scene is an open composition session.
type Scene struct {
	eng        kernel.Engine
	builder    *shapes.Builder
	rng        *rand.Rand
	log        *log.Logger
	extent     object.Extent
	retryLimit int

	placed []placedShape
	closed bool
}

type placedShape struct {
	name string
	obj  *object.Object
}

// Option configures a Scene at open time.
type Option func(*Scene)

// WithExtent sets the containment region.
func WithExtent(e object.Extent) Option {
	return func(s *Scene) { s.extent = e }
}

// WithRand sets the random source. Scenes sharing one source must be
// used sequentially.
func WithRand(rng *rand.Rand) Option {
	return func(s *Scene) { s.rng = rng }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Scene) { s.log = l }
}

// WithRetryLimit bounds the placement rejection loop.
func WithRetryLimit(n int) Option {
	return func(s *Scene) { s.retryLimit = n }
}

// WithBuilder replaces the shape builder, carrying custom tolerances or
// refinement levels.
func WithBuilder(b *shapes.Builder) Option {
	return func(s *Scene) { s.builder = b }
}

// Open starts a composition session on the engine. It fails with
// ErrSceneOpen while another Scene is active; Close releases the slot.
func Open(eng kernel.Engine, opts ...Option) (*Scene, error) {
	activeMu.Lock()
	defer activeMu.Unlock()
	if active {
		return nil, ErrSceneOpen
	}

	s := &Scene{
		eng:        eng,
		rng:        rand.New(rand.NewSource(1)),
		extent:     DefaultExtent,
		retryLimit: defaultRetryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.builder == nil {
		s.builder = shapes.NewBuilder(eng)
	}
	if s.log == nil {
		s.log = log.NewWithOptions(os.Stderr, log.Options{Prefix: "scene"})
	}

	active = true
	return s, nil
}

// Close ends the session: every placed object is deleted from the
// engine and the active-scene slot is released. Extract Meshes before
// closing.
func (s *Scene) Close() {
	if s.closed {
		return
	}
	s.closed = true
	for _, p := range s.placed {
		if err := p.obj.Delete(); err != nil && !errors.Is(err, kernel.ErrDeleted) {
			s.log.Warn("deleting object on close", "name", p.name, "err", err)
		}
	}
	s.placed = nil
	activeMu.Lock()
	active = false
	activeMu.Unlock()
}

// Objects returns the placed objects in placement order.
func (s *Scene) Objects() []*object.Object {
	out := make([]*object.Object, len(s.placed))
	for i, p := range s.placed {
		out[i] = p.obj
	}
	return out
}

// Meshes extracts every placed object as an interchange mesh, named by
// family and placement index.
func (s *Scene) Meshes() ([]*kernel.Mesh, error) {
	out := make([]*kernel.Mesh, 0, len(s.placed))
	for i, p := range s.placed {
		m, err := p.obj.Mesh(fmt.Sprintf("%s_%03d", p.name, i))
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *Scene) track(name string, o *object.Object) {
	s.placed = append(s.placed, placedShape{name: name, obj: o})
}

// AddRandomShape builds a randomized shape from the pool, orients it
// randomly, scales it to a uniformly drawn fraction of the extent and
// places it inside the shrunk containment region.
func (s *Scene) AddRandomShape(pool []shapes.Family) (*object.Object, error) {
	if s.closed {
		return nil, errors.New("scene: closed")
	}
	if len(pool) == 0 {
		return nil, errors.New("scene: empty shape pool")
	}

	family := pool[s.rng.Intn(len(pool))]
	return s.AddShape(shapes.RandomRecipe(family, s.rng))
}

// AddShape builds an explicit recipe, then orients, scales and places it
// the same way randomly drawn shapes are.
func (s *Scene) AddShape(recipe shapes.Recipe) (*object.Object, error) {
	if s.closed {
		return nil, errors.New("scene: closed")
	}
	o, err := s.builder.Build(recipe)
	if err != nil {
		return nil, err
	}

	if _, err := o.RotateRandomly(s.rng); err != nil {
		return nil, err
	}
	if err := s.scaleToExtentFraction(o); err != nil {
		return nil, err
	}
	shift, err := o.PositionRandomly(s.rng, s.extent.Scaled(placementShrink), true, s.retryLimit)
	if err != nil {
		return nil, fmt.Errorf("scene: placing %s: %w", recipe.Family, err)
	}

	s.log.Debug("placed shape", "family", recipe.Family, "shift", shift)
	s.track(string(recipe.Family), o)
	return o, nil
}

// CoreShellPair is the result of core-shell composition: the core
// clipped to the shell, the shell hollowed by the core, and the drawn
// core fraction.
type CoreShellPair struct {
	Core  *object.Object
	Shell *object.Object

	// Ratio is the sampled core fraction: the core's enclosing sphere
	// diameter relative to the shell's, before clipping.
	Ratio float64
}

// AddRandomCoreShell builds a randomized core-shell pair: shell and core
// drawn independently from the pool, sharing one orientation and
// position, the core scaled to a fraction of the shell's enclosing
// sphere. The core is clipped to the shell and the shell is hollowed by
// a copy of the core, so the pair tiles the shell's volume without
// boundary overlap.
func (s *Scene) AddRandomCoreShell(pool []shapes.Family) (*CoreShellPair, error) {
	if s.closed {
		return nil, errors.New("scene: closed")
	}
	if len(pool) == 0 {
		return nil, errors.New("scene: empty shape pool")
	}

	shellFamily := pool[s.rng.Intn(len(pool))]
	shell, err := s.builder.Build(shapes.RandomRecipe(shellFamily, s.rng))
	if err != nil {
		return nil, err
	}
	orientation, err := shell.RotateRandomly(s.rng)
	if err != nil {
		return nil, err
	}
	if err := s.scaleToExtentFraction(shell); err != nil {
		return nil, err
	}
	shift, err := shell.PositionRandomly(s.rng, s.extent.Scaled(placementShrink), true, s.retryLimit)
	if err != nil {
		return nil, fmt.Errorf("scene: placing %s shell: %w", shellFamily, err)
	}

	coreFamily := pool[s.rng.Intn(len(pool))]
	core, err := s.builder.Build(shapes.RandomRecipe(coreFamily, s.rng))
	if err != nil {
		return nil, err
	}
	if err := core.Rotate(orientation); err != nil {
		return nil, err
	}
	shellDiameter, err := shell.EnclosingSphereDiameter()
	if err != nil {
		return nil, err
	}
	coreDiameter, err := core.EnclosingSphereDiameter()
	if err != nil {
		return nil, err
	}
	ratio := coreScaleLow + s.rng.Float64()*(coreScaleHigh-coreScaleLow)
	if err := core.ScaleUniform(ratio * shellDiameter / coreDiameter); err != nil {
		return nil, err
	}
	if err := core.Translate(shift); err != nil {
		return nil, err
	}

	// The shell is hollowed by a pristine copy of the core: using the
	// already-intersected core would leave boundary artifacts where the
	// two surfaces coincide.
	coreCopy, err := core.Copy()
	if err != nil {
		return nil, err
	}
	if err := core.ApplyBoolean(shell, kernel.BoolIntersect); err != nil {
		return nil, err
	}
	if err := shell.ApplyBoolean(coreCopy, kernel.BoolDifference); err != nil {
		return nil, err
	}
	if err := coreCopy.Delete(); err != nil {
		return nil, err
	}

	s.log.Debug("placed core-shell pair",
		"shell", shellFamily, "core", coreFamily, "ratio", ratio, "shift", shift)
	s.track(string(coreFamily)+"_core", core)
	s.track(string(shellFamily)+"_shell", shell)
	return &CoreShellPair{Core: core, Shell: shell, Ratio: ratio}, nil
}

// scaleToExtentFraction scales the object so its max dimension becomes a
// uniform draw from the target fraction range.
func (s *Scene) scaleToExtentFraction(o *object.Object) error {
	factor := shapeScaleLow + s.rng.Float64()*(shapeScaleHigh-shapeScaleLow)
	maxDim, err := o.MaxDimension()
	if err != nil {
		return err
	}
	return o.ScaleUniform(factor / maxDim)
}
