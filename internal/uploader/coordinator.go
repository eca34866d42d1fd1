// Package uploader submits planned upload units to the document service,
// reconciles temporary ids against server-assigned ids, and drives the
// second-pass media attachment.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-docsync/blocks"
	"github.com/goliatone/go-docsync/internal/logging"
	"github.com/goliatone/go-docsync/internal/planner"
	"github.com/goliatone/go-docsync/internal/remote"
	"github.com/goliatone/go-docsync/pkg/interfaces"
)

var (
	ErrUnknownAnchor = errors.New("uploader: unit anchor has no server id")
	ErrMissingBlock  = errors.New("uploader: unit references a block missing from the forest")
)

// Coordinator owns the id mapping and revision accumulator for one upload.
// Instances are single-use per conversion; nothing escapes the call.
type Coordinator struct {
	api      interfaces.DocumentAPI
	resolver interfaces.MediaResolver
	retry    RetryConfig
	logger   interfaces.Logger
}

// NewCoordinator builds a coordinator around the document API.
func NewCoordinator(api interfaces.DocumentAPI, resolver interfaces.MediaResolver, retry RetryConfig, logger interfaces.Logger) *Coordinator {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Coordinator{api: api, resolver: resolver, retry: retry, logger: logger}
}

// Upload submits units strictly in order (later units may anchor on blocks
// created by earlier ones), then attaches media, and returns the final
// revision id.
func (c *Coordinator) Upload(
	ctx context.Context,
	handle interfaces.DocumentHandle,
	forest *blocks.Forest,
	units []planner.Unit,
	media map[string]*blocks.MediaReference,
	rootAnchor string,
) (string, error) {
	idMap := make(map[string]string)
	revision := handle.RevisionID

	for i, unit := range units {
		anchor, err := c.resolveAnchor(unit.Anchor, rootAnchor, idMap)
		if err != nil {
			return "", fmt.Errorf("unit %d: %w", i, err)
		}

		children, err := c.collect(forest, unit.Children)
		if err != nil {
			return "", fmt.Errorf("unit %d: %w", i, err)
		}
		descendants, err := c.collect(forest, unit.Descendants)
		if err != nil {
			return "", fmt.Errorf("unit %d: %w", i, err)
		}

		result, err := Retry(ctx, c.retry, func(ctx context.Context) (interfaces.CreateBlocksResult, error) {
			return c.api.CreateBlocks(ctx, handle.DocumentID, anchor, children, descendants)
		}, remote.IsRetryable, rateLimitOverride)
		if err != nil {
			return "", fmt.Errorf("uploader: submit unit %d: %w", i, err)
		}

		for _, rel := range result.Relations {
			idMap[rel.TemporaryID] = rel.BlockID
		}
		if result.RevisionID != "" {
			revision = result.RevisionID
		}

		c.logger.Debug("unit submitted",
			"unit", i,
			"anchor", anchor,
			"children", len(children),
			"descendants", len(descendants),
		)
	}

	if err := c.attachMedia(ctx, handle.DocumentID, forest, media, idMap); err != nil {
		return "", err
	}

	return revision, nil
}

// resolveAnchor maps a unit anchor to a submittable id. The document root
// anchor passes through; any other anchor is a temporary id created by an
// earlier unit and must already be in the id map.
func (c *Coordinator) resolveAnchor(anchor, rootAnchor string, idMap map[string]string) (string, error) {
	if anchor == rootAnchor {
		return anchor, nil
	}
	if real, ok := idMap[anchor]; ok {
		return real, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownAnchor, anchor)
}

func (c *Coordinator) collect(forest *blocks.Forest, ids []string) ([]*blocks.ContentBlock, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	out := make([]*blocks.ContentBlock, 0, len(ids))
	for _, id := range ids {
		block, ok := forest.Get(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingBlock, id)
		}
		out = append(out, block)
	}
	return out, nil
}

// attachMedia runs the second pass: resolve every image's media reference,
// upload the bytes scoped to the real server block, and apply the resulting
// token updates as one batch. Per-image failures are logged and skipped;
// they never abort the conversion.
func (c *Coordinator) attachMedia(
	ctx context.Context,
	documentID string,
	forest *blocks.Forest,
	media map[string]*blocks.MediaReference,
	idMap map[string]string,
) error {
	if len(media) == 0 {
		return nil
	}

	var updates []interfaces.BlockUpdate
	for _, block := range forest.Blocks() {
		if block.Kind != blocks.KindImage {
			continue
		}
		ref, ok := media[block.ID]
		if !ok {
			continue
		}

		serverID, ok := idMap[block.ID]
		if !ok {
			c.logger.Warn("no server id recorded for image block, skipping media",
				"block_id", block.ID)
			continue
		}

		data, filename, err := c.resolver.Resolve(ctx, ref)
		if err != nil {
			c.logger.Warn("failed to resolve image media, leaving block imageless",
				"block_id", block.ID, "error", err)
			continue
		}

		token, err := c.api.UploadMedia(ctx, serverID, filename, data)
		if err != nil {
			c.logger.Warn("failed to upload image media, leaving block imageless",
				"block_id", block.ID, "server_id", serverID, "error", err)
			continue
		}

		updates = append(updates, interfaces.BlockUpdate{BlockID: serverID, MediaToken: token})
		delete(media, block.ID)
	}

	if len(updates) == 0 {
		return nil
	}

	_, err := Retry(ctx, c.retry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.api.UpdateBlocks(ctx, documentID, updates)
	}, remote.IsRetryable, rateLimitOverride)
	if err != nil {
		return fmt.Errorf("uploader: apply media updates: %w", err)
	}
	return nil
}

// rateLimitOverride surfaces the server's reset hint as the retry delay.
func rateLimitOverride(err error) (time.Duration, bool) {
	return remote.RateLimitHint(err)
}
