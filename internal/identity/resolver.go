// Package identity decides, once per process, which node attribute drives display grouping.
package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rohankatakam/graphscope/internal/errors"
	"github.com/rohankatakam/graphscope/internal/subgraph"
)

// Mode selects how the entity key is chosen
type Mode string

const (
	// ModeAuto inspects the label catalog: more than one label groups by label,
	// otherwise by the fallback property
	ModeAuto Mode = "auto"
	// ModeLabel always groups by label
	ModeLabel Mode = "label"
	// ModeProperty always groups by the fallback property
	ModeProperty Mode = "property"
)

// ParseMode parses a configured mode, defaulting to auto when empty
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeLabel:
		return ModeLabel, nil
	case ModeProperty:
		return ModeProperty, nil
	default:
		return "", fmt.Errorf("unknown identity mode %q (want auto, label or property)", s)
	}
}

// Options configures resolution
type Options struct {
	Mode             Mode
	FallbackProperty string
}

// Resolve returns the entity key. In auto mode the label catalog is read exactly once;
// explicit modes never touch the store. Any failure is a SchemaResolutionFailure and
// must abort startup.
func Resolve(ctx context.Context, catalog subgraph.LabelCatalog, opts Options) (subgraph.EntityKey, error) {
	logger := slog.Default().With("component", "identity")

	property := strings.TrimSpace(opts.FallbackProperty)
	if property == "" {
		property = subgraph.DefaultFallbackProperty
	}

	mode := opts.Mode
	if mode == "" {
		mode = ModeAuto
	}

	switch mode {
	case ModeLabel:
		logger.Info("entity key configured", "mode", mode, "key", "label")
		return subgraph.LabelKey(), nil
	case ModeProperty:
		logger.Info("entity key configured", "mode", mode, "key", property)
		return subgraph.PropertyKey(property), nil
	case ModeAuto:
	default:
		return subgraph.EntityKey{}, errors.SchemaResolutionFailure(nil, fmt.Sprintf("unknown identity mode %q", mode))
	}

	if catalog == nil {
		return subgraph.EntityKey{}, errors.SchemaResolutionFailure(nil, "auto identity mode requires a label catalog")
	}

	labels, err := catalog.Labels(ctx)
	if err != nil {
		return subgraph.EntityKey{}, errors.SchemaResolutionFailure(err, "failed to read label catalog")
	}

	distinct := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		distinct[l] = struct{}{}
	}

	key := subgraph.PropertyKey(property)
	if len(distinct) > 1 {
		key = subgraph.LabelKey()
	}

	logger.Info("entity key resolved", "mode", mode, "labels", len(distinct), "key", key.String())
	return key, nil
}
