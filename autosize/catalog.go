package autosize

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultCatalogURL is the MIPLIB site hosting the instance detail pages.
const DefaultCatalogURL = "https://miplib.zib.de"

// PageFetcher retrieves the catalog page describing a model instance.
type PageFetcher interface {
	FetchInstancePage(ctx context.Context, model string) (string, error)
}

// CatalogClient fetches instance detail pages from the MIPLIB catalog.
type CatalogClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewCatalogClient creates a catalog client. An empty baseURL selects
// DefaultCatalogURL and a nil httpClient selects http.DefaultClient.
func NewCatalogClient(baseURL string, httpClient *http.Client) *CatalogClient {
	if baseURL == "" {
		baseURL = DefaultCatalogURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &CatalogClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: httpClient,
	}
}

// InstanceURL builds the detail page URL for model under baseURL.
func InstanceURL(baseURL, model string) string {
	return strings.TrimRight(baseURL, "/") + "/instance_details_" + url.PathEscape(model) + ".html"
}

// InstanceURL returns the detail page URL for model on this catalog.
func (c *CatalogClient) InstanceURL(model string) string {
	return InstanceURL(c.BaseURL, model)
}

// FetchInstancePage issues a single GET for the model's detail page and
// returns the body of a 2xx response. Non-2xx responses produce a
// *RemoteLookupError; anything that fails below HTTP produces a
// *TransportError.
func (c *CatalogClient) FetchInstancePage(ctx context.Context, model string) (string, error) {
	pageURL := c.InstanceURL(model)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", &TransportError{URL: pageURL, Err: err}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", &TransportError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &RemoteLookupError{
			URL:        pageURL,
			StatusCode: resp.StatusCode,
			Reason:     http.StatusText(resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{URL: pageURL, Err: err}
	}

	return string(body), nil
}
