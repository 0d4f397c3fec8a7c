package asset

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultInlineLimit caps the size of an image embedded in a label sheet.
const DefaultInlineLimit = 2 << 20

// Inliner turns stored asset references into data: URLs.
type Inliner struct {
	store  Store
	limit  int64
	logger zerolog.Logger
}

// NewInliner creates an inliner reading from store.
func NewInliner(store Store, logger zerolog.Logger) *Inliner {
	return &Inliner{
		store:  store,
		limit:  DefaultInlineLimit,
		logger: logger.With().Str("component", "asset-inliner").Logger(),
	}
}

// DataURL resolves ref to a base64 data: URL. The second return is false when
// ref is not a stored asset (external URL, missing object); callers then keep ref.
func (i *Inliner) DataURL(ctx context.Context, ref string) (string, bool, error) {
	if strings.HasPrefix(ref, "data:") {
		return ref, true, nil
	}

	key, ok := KeyFromURL(ref)
	if !ok {
		return "", false, nil
	}

	rc, err := i.store.Open(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			i.logger.Debug().Str("ref", ref).Msg("asset missing, keeping reference")
			return "", false, nil
		}
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		i.logger.Warn().Err(err).Str("ref", ref).Msg("failed to open asset, keeping reference")
		return "", false, nil
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, i.limit+1))
	if err != nil {
		return "", false, fmt.Errorf("failed to read asset %s: %w", key, err)
	}
	if int64(len(data)) > i.limit {
		i.logger.Warn().Str("ref", ref).Int64("limit", i.limit).Msg("asset too large to inline")
		return "", false, nil
	}

	return "data:" + ContentType(key) + ";base64," + base64.StdEncoding.EncodeToString(data), true, nil
}
