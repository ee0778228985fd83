package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rustgen-dev/rustgen/internal/core/entities"
	"github.com/rustgen-dev/rustgen/internal/core/usecases"
)

var _ usecases.OutputWriter = (*OutputWriter)(nil)

// OutputWriter writes a template engine's rendered files to an output
// directory, creating parent directories as needed and refusing to
// overwrite existing files unless force is set.
type OutputWriter struct{}

// NewOutputWriter constructs an OutputWriter.
func NewOutputWriter() *OutputWriter { return &OutputWriter{} }

// Write writes every rendered file under outputDir. Without force, any
// file that already exists aborts the whole write with an
// OutputExistsError before anything is touched; with force, existing
// files are overwritten.
func (w *OutputWriter) Write(ctx context.Context, outputDir string, files []usecases.RenderedFile, force bool) error {
	if !force {
		for _, f := range files {
			target := filepath.Join(outputDir, filepath.FromSlash(f.Path))
			if _, err := os.Stat(target); err == nil {
				return &entities.OutputExistsError{Path: f.Path}
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("checking %s: %w", target, err)
			}
		}
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		target := filepath.Join(outputDir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", f.Path, err)
		}
		if err := os.WriteFile(target, f.Content, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", target, err)
		}
	}

	return nil
}
