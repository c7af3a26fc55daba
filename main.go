// Command nanomesh generates randomized polyhedral nanoparticle meshes.
// It runs either a Lisp script describing the scene or a flag-driven
// randomized batch, and writes the resulting meshes as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/nanomesh/nanomesh/pkg/config"
	"github.com/nanomesh/nanomesh/pkg/kernel"
	"github.com/nanomesh/nanomesh/pkg/kernel/polymesh"
	"github.com/nanomesh/nanomesh/pkg/script"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML config file")
		scriptPath = flag.String("script", "", "scene script to run instead of a randomized batch")
		shapeCount = flag.Int("shapes", 0, "number of randomized shapes to place")
		pairCount  = flag.Int("core-shells", 0, "number of randomized core-shell pairs to place")
		seed       = flag.Int64("seed", 0, "random seed override (0 keeps the configured seed)")
		outPath    = flag.String("out", "", "output file (default stdout)")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "nanomesh"})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	if err := run(*configPath, *scriptPath, *shapeCount, *pairCount, *seed, *outPath, logger); err != nil {
		logger.Fatal("generation failed", "err", err)
	}
}

func run(configPath, scriptPath string, shapeCount, pairCount int, seed int64, outPath string, logger *log.Logger) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
	}
	if seed != 0 {
		cfg.Seed = seed
	}

	plan, err := buildPlan(scriptPath, shapeCount, pairCount)
	if err != nil {
		return err
	}
	if len(plan.Steps) == 0 {
		return fmt.Errorf("nothing to generate: pass -script or -shapes/-core-shells")
	}
	logger.Info("generating", "shapes", plan.ShapeCount())

	eng := polymesh.New(polymesh.WithWeldDistance(cfg.WeldDistance))
	meshes, err := script.Execute(plan, eng, cfg, logger)
	if err != nil {
		return err
	}

	return writeMeshes(meshes, outPath, logger)
}

// buildPlan evaluates the script when one is given, otherwise assembles
// a plan from the batch flags.
func buildPlan(scriptPath string, shapeCount, pairCount int) (*script.Plan, error) {
	if scriptPath != "" {
		source, err := os.ReadFile(scriptPath)
		if err != nil {
			return nil, err
		}
		plan, evalErrs, err := script.NewEngine().Evaluate(string(source))
		if err != nil {
			return nil, fmt.Errorf("evaluating %s: %w", scriptPath, err)
		}
		if len(evalErrs) > 0 {
			for _, e := range evalErrs {
				fmt.Fprintf(os.Stderr, "%s: %s\n", scriptPath, e.Error())
			}
			return nil, fmt.Errorf("%s: %d script error(s)", scriptPath, len(evalErrs))
		}
		return plan, nil
	}

	plan := script.NewPlan()
	if shapeCount > 0 {
		plan.Steps = append(plan.Steps, script.Step{Kind: script.StepRandomShapes, Count: shapeCount})
	}
	if pairCount > 0 {
		plan.Steps = append(plan.Steps, script.Step{Kind: script.StepCoreShells, Count: pairCount})
	}
	return plan, nil
}

func writeMeshes(meshes []*kernel.Mesh, outPath string, logger *log.Logger) error {
	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meshes); err != nil {
		return err
	}
	logger.Info("wrote meshes", "count", len(meshes), "to", outName(outPath))
	return nil
}

func outName(path string) string {
	if path == "" {
		return "stdout"
	}
	return path
}
