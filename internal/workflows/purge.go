package workflows

import (
	"context"

	"github.com/PolarWolf314/kapu/internal/audit"
	logger "github.com/PolarWolf314/kapu/internal/logging"
)

// PurgeOptions configures the purge workflow.
type PurgeOptions struct {
	// Path is the artifact path.
	Path string

	Logger logger.Logger
}

// PurgeResult contains the outcome of a purge operation.
type PurgeResult struct {
	// Files lists the artifact files that existed before removal.
	Files []string
}

// Purge deletes an artifact and its sidecars without checking access.
//
// Returns ErrArtifactNotFound if nothing is stored at the path.
func Purge(ctx context.Context, opts PurgeOptions) (*PurgeResult, error) {
	info, err := Info(ctx, InfoOptions{Path: opts.Path, Logger: opts.Logger})
	if err != nil {
		return nil, err
	}

	if err := newManager(opts.Logger).Delete(opts.Path); err != nil {
		return nil, err
	}

	auditEntry := audit.LogWithUser(audit.OpDelete)
	auditEntry.Path = opts.Path
	auditEntry.Outcome = audit.OutcomeOK
	auditEntry.Message = "purged"
	audit.Log(auditEntry)

	return &PurgeResult{Files: info.Files}, nil
}
