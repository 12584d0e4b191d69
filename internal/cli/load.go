package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/metareg/api"
	"github.com/macropower/metareg/api/v1beta1/registries"
	"github.com/macropower/metareg/pkg/config"
	"github.com/macropower/metareg/pkg/log"
	"github.com/macropower/metareg/pkg/meta"
)

var (
	ErrNoRegistryFile = errors.New("no registry file found")

	tracer = otel.Tracer("metareg-cli")
)

// resolveFile returns the registry file to use: the --file flag if set,
// otherwise the nearest default file above the working directory.
func (ra *RootArgs) resolveFile() (string, error) {
	if ra.File != "" {
		return ra.File, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	path, err := api.FindFile(wd, defaultFileNames)
	if err != nil {
		return "", fmt.Errorf("find registry file: %w", err)
	}

	if path == "" {
		return "", fmt.Errorf("%w: use --file or create one of %v", ErrNoRegistryFile, defaultFileNames)
	}

	return path, nil
}

// loadRegistry loads the registry document at path and builds it.
func (ra *RootArgs) loadRegistry(ctx context.Context, path string) (*registries.Registry, *meta.Registry, error) {
	ctx, span := tracer.Start(ctx, "load", trace.WithAttributes(
		attribute.String("path", path),
	))
	defer span.End()

	logger := log.WithContext(ctx)

	doc, err := registries.Load(path, config.WithColor(ra.UseColor(os.Stderr)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load registry")

		return nil, nil, err //nolint:wrapcheck // Errors carry source annotations.
	}

	reg, err := doc.Build(registries.WithLogger(logger))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build registry")

		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	span.SetAttributes(
		attribute.String("owner", reg.Owner()),
		attribute.Int("rules", len(reg.Rules())),
	)

	logger.Debug("loaded registry",
		slog.String("path", path),
		slog.String("owner", reg.Owner()),
		slog.Int("attributes", reg.Attributes().Len()),
	)

	return doc, reg, nil
}
