// Package generator drives one requirement-to-test-cases round trip:
// prompt construction, the engine call and response validation.
package generator

import (
	"context"
	"fmt"

	"autotestcase/internal/engine"
	"autotestcase/internal/logging"
	"autotestcase/internal/testcase"
)

// Generator produces test cases with a single engine.
type Generator struct {
	engine engine.Engine
}

// New creates a Generator backed by eng.
func New(eng engine.Engine) *Generator {
	return &Generator{engine: eng}
}

// Generate asks the engine for test cases covering requirement and returns
// the validated records. An empty slice is not an error here; callers decide
// whether zero cases is acceptable.
func (g *Generator) Generate(ctx context.Context, requirement string) ([]testcase.TestCase, error) {
	name := g.engine.Name()
	prompt := testcase.BuildPrompt(requirement)

	timer := logging.StartTimer(logging.CategoryAPI, name+" generation")
	content, err := g.engine.CompleteWithSystem(ctx, testcase.SystemPrompt, prompt)
	timer.StopWithInfo()
	if err != nil {
		return nil, fmt.Errorf("error calling %s API: %w", name, err)
	}
	logging.APIDebug("%s returned %d characters", name, len(content))

	cases, err := testcase.ParseResponse(content)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s response: %w", name, err)
	}

	logging.API("%s produced %d test cases (model=%s)", name, len(cases), g.engine.Model())
	return cases, nil
}
