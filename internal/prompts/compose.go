package prompts

import (
	"context"
	"fmt"
	"strings"
)

type defaults struct{}

// Defaults returns a Source serving only the built-in texts.
func Defaults() Source {
	return defaults{}
}

func (defaults) Instructions(_ context.Context, stage Stage) (string, error) {
	return DefaultInstructions(stage)
}

func (defaults) Spec(_ context.Context, stage Stage) (string, error) {
	return DefaultSpec(stage)
}

// Compose joins the instructions and spec for stage, separated by a blank
// line, with any sections (already formatted) placed between them.
func Compose(ctx context.Context, src Source, stage Stage, sections ...string) (string, error) {
	instructions, err := src.Instructions(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("load instructions for %s: %w", stage, err)
	}

	spec, err := src.Spec(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("load spec for %s: %w", stage, err)
	}

	parts := make([]string, 0, len(sections)+2)
	parts = append(parts, strings.TrimSpace(instructions))
	for _, s := range sections {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	parts = append(parts, strings.TrimSpace(spec))

	return strings.Join(parts, "\n\n"), nil
}
