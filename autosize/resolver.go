// Package autosize infers the size of a MIPLIB model instance from the name
// of its log file. A file called "<model>-init.csv" names the model; the
// model's catalog page on miplib.zib.de reports its variable count.
package autosize

import (
	"context"
)

// Resolution describes a successful size lookup.
type Resolution struct {
	Path    string `json:"path" yaml:"path"`
	Segment string `json:"file_name" yaml:"file_name"`
	Model   string `json:"model" yaml:"model"`
	URL     string `json:"url" yaml:"url"`
	Size    int    `json:"size" yaml:"size"`
}

// Resolver runs the lookup pipeline: file name, model name, catalog page,
// variable count. It holds no per-call state and is safe for concurrent
// use.
type Resolver struct {
	Fetcher PageFetcher
}

// NewResolver creates a resolver backed by fetcher. A nil fetcher selects a
// CatalogClient with default settings.
func NewResolver(fetcher PageFetcher) *Resolver {
	if fetcher == nil {
		fetcher = NewCatalogClient("", nil)
	}
	return &Resolver{Fetcher: fetcher}
}

// ResolveSize returns the variable count of the model named by path.
func (r *Resolver) ResolveSize(ctx context.Context, path string) (int, error) {
	res, err := r.Resolve(ctx, path)
	if err != nil {
		return 0, err
	}
	return res.Size, nil
}

// Resolve runs the pipeline for path and stops at the first failing step.
// The returned error is always one of the types implementing Error. No
// request is made unless the file name follows the NAME-init.csv
// convention.
func (r *Resolver) Resolve(ctx context.Context, path string) (*Resolution, error) {
	segment, err := FinalSegment(path)
	if err != nil {
		return nil, err
	}

	model, ok := DeriveModelName(segment)
	if !ok {
		return nil, &WrongFormatError{Name: segment}
	}

	page, err := r.Fetcher.FetchInstancePage(ctx, model)
	if err != nil {
		return nil, err
	}

	pageURL := r.pageURL(model)

	size, ok := ExtractVariableCount(page)
	if !ok {
		return nil, &SizeNotFoundError{Model: model, URL: pageURL}
	}

	return &Resolution{
		Path:    path,
		Segment: segment,
		Model:   model,
		URL:     pageURL,
		Size:    size,
	}, nil
}

// pageURL reports where the fetcher looked for model. Fetchers that do not
// expose their base URL are assumed to use the public catalog.
func (r *Resolver) pageURL(model string) string {
	if c, ok := r.Fetcher.(interface{ InstanceURL(string) string }); ok {
		return c.InstanceURL(model)
	}
	return InstanceURL(DefaultCatalogURL, model)
}
