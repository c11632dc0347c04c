package buildsys

import "context"

// Generator captures the project generator lifecycle the orchestrator
// drives: configure a binary directory once, then build named targets in it.
type Generator interface {
	// Configure generates the build system. Extra args are passed through.
	Configure(ctx context.Context, args ...string) error

	// Build compiles one target of the generated project.
	Build(ctx context.Context, target string) error

	// BuildDir is where the generated project and its output live.
	BuildDir() string
}
