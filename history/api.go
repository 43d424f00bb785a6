package history

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pevans/mipsize/autosize"
)

// SizeResolver resolves a log path to a catalog resolution.
type SizeResolver interface {
	Resolve(ctx context.Context, path string) (*autosize.Resolution, error)
}

// APIServer represents the HTTP API server for size resolution and lookup
// history. The store is optional; without it resolutions are not recorded
// and the history routes answer 503.
type APIServer struct {
	resolver SizeResolver
	store    *LookupStore
}

// NewAPIServer creates a new API server.
func NewAPIServer(resolver SizeResolver, store *LookupStore) *APIServer {
	return &APIServer{
		resolver: resolver,
		store:    store,
	}
}

// SetupRouter configures the Gin router with all API routes.
func (s *APIServer) SetupRouter() *gin.Engine {
	router := gin.Default()

	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	api := router.Group("/api/v1")
	api.POST("/sizes", s.HandleResolveSize)
	api.GET("/lookups", s.HandleListLookups)
	api.GET("/lookups/:id", s.HandleGetLookup)
	api.DELETE("/lookups/:id", s.HandleDeleteLookup)

	return router
}

// ResolveSizeRequest represents the request for POST /api/v1/sizes.
type ResolveSizeRequest struct {
	Path string `json:"path" binding:"required"`
}

// ResolveSizeResponse represents the response for POST /api/v1/sizes.
type ResolveSizeResponse struct {
	*autosize.Resolution
	LookupID *uuid.UUID `json:"lookup_id,omitempty"`
}

// ListLookupsResponse represents the response for GET /api/v1/lookups.
type ListLookupsResponse struct {
	Lookups []Lookup `json:"lookups" yaml:"lookups"`
	Total   int      `json:"total" yaml:"total"`
}

// errorResponse creates a standardized error response.
func errorResponse(code, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

// resolveErrorStatus maps a resolution failure to an HTTP status.
func resolveErrorStatus(err error) int {
	var lookupErr *autosize.RemoteLookupError

	switch autosize.KindOf(err) {
	case autosize.KindPathExtraction, autosize.KindEncoding, autosize.KindWrongFormat:
		return http.StatusUnprocessableEntity
	case autosize.KindSizeNotFound:
		return http.StatusNotFound
	case autosize.KindRemoteLookup:
		if errors.As(err, &lookupErr) && lookupErr.StatusCode == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	case autosize.KindTransport:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// handleResolveError writes a resolution failure, keeping the catalog URL
// and status inspectable for remote lookup errors.
func (s *APIServer) handleResolveError(c *gin.Context, err error) {
	body := gin.H{
		"code":    string(autosize.KindOf(err)),
		"message": err.Error(),
	}

	var lookupErr *autosize.RemoteLookupError
	if errors.As(err, &lookupErr) {
		body["url"] = lookupErr.URL
		body["status"] = lookupErr.StatusCode
	}

	c.JSON(resolveErrorStatus(err), gin.H{"error": body})
}

// handleError maps store errors to HTTP responses.
func (s *APIServer) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrLookupNotFound):
		c.JSON(http.StatusNotFound, errorResponse("not_found", err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to process request"))
	}
}

// requireStore answers 503 when history is disabled.
func (s *APIServer) requireStore(c *gin.Context) bool {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse("history_disabled", "Lookup history is not enabled"))
		return false
	}
	return true
}

// HandleResolveSize handles POST /api/v1/sizes.
func (s *APIServer) HandleResolveSize(c *gin.Context) {
	var req ResolveSizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("bad_request", "Request body must include a path"))
		return
	}

	res, err := s.resolver.Resolve(c.Request.Context(), req.Path)

	var lookupID *uuid.UUID
	if s.store != nil {
		lookup, recordErr := s.store.Record(req.Path, res, err)
		if recordErr != nil {
			log.Printf("WARNING: failed to record lookup for %s: %v", req.Path, recordErr)
		} else {
			lookupID = &lookup.LookupID
		}
	}

	if err != nil {
		s.handleResolveError(c, err)
		return
	}

	c.JSON(http.StatusOK, ResolveSizeResponse{
		Resolution: res,
		LookupID:   lookupID,
	})
}

// HandleListLookups handles GET /api/v1/lookups.
func (s *APIServer) HandleListLookups(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}

	filter := LookupFilter{}

	if model := c.Query("model"); model != "" {
		filter.Model = &model
	}

	if failedParam := c.Query("failed"); failedParam != "" {
		failed, err := strconv.ParseBool(failedParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("bad_request", "Invalid failed"))
			return
		}
		filter.Failed = &failed
	}

	for param, dest := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, errorResponse("bad_request", "Invalid "+param))
			return
		}
		*dest = n
	}

	lookups, err := s.store.List(filter)
	if err != nil {
		s.handleError(c, err)
		return
	}

	total, err := s.store.Count(filter)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListLookupsResponse{
		Lookups: lookups,
		Total:   total,
	})
}

// HandleGetLookup handles GET /api/v1/lookups/{id}.
func (s *APIServer) HandleGetLookup(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}

	lookupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("bad_request", "Invalid lookup ID"))
		return
	}

	lookup, err := s.store.Get(lookupID)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, lookup)
}

// HandleDeleteLookup handles DELETE /api/v1/lookups/{id}.
func (s *APIServer) HandleDeleteLookup(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}

	lookupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("bad_request", "Invalid lookup ID"))
		return
	}

	if err := s.store.Delete(lookupID); err != nil {
		s.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
