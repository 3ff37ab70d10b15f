package workflows

import (
	"context"
	"fmt"
	"os"

	kerrors "github.com/PolarWolf314/kapu/internal/errors"
	logger "github.com/PolarWolf314/kapu/internal/logging"
	"github.com/PolarWolf314/kapu/internal/vault"
)

// InfoOptions configures the info workflow.
type InfoOptions struct {
	// Path is the artifact path.
	Path string

	Logger logger.Logger
}

// InfoResult contains the protection summary of an artifact.
type InfoResult struct {
	// Path is the artifact path.
	Path string

	// Lines is the human-readable summary, one feature per line.
	Lines []string

	// Files lists the artifact files currently on disk.
	Files []string

	// Metadata is the raw record, nil when the artifact is unprotected.
	Metadata *vault.Metadata
}

// Info describes the protection configured for an artifact without
// consuming an attempt.
//
// Returns ErrArtifactNotFound if nothing is stored at the path.
func Info(ctx context.Context, opts InfoOptions) (*InfoResult, error) {
	if !artifactExists(opts.Path) {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrArtifactNotFound, opts.Path)
	}

	manager := newManager(opts.Logger)
	lines, err := manager.Describe(opts.Path)
	if err != nil {
		return nil, err
	}

	result := &InfoResult{
		Path:  opts.Path,
		Lines: lines,
	}

	md, err := manager.Metadata(opts.Path)
	if err == nil {
		result.Metadata = md
	}

	for _, p := range []string{opts.Path, vault.MetadataPath(opts.Path), vault.DecoyPath(opts.Path)} {
		if _, err := os.Stat(p); err == nil {
			result.Files = append(result.Files, p)
		}
	}

	return result, nil
}
