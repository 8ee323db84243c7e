package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotify/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotify/internal/app"
	"github.com/jsamuelsen/quotify/internal/domain"
)

// QuoteHandler serves the quote navigation API.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{service: service}
}

func currentResponse(v app.View, withFetchedAt bool) dto.CurrentQuoteResponse {
	resp := dto.CurrentQuoteResponse{
		Quote:    dto.NewQuoteResponse(v.Quote),
		Position: dto.NewPositionResponse(v.Position),
	}

	if withFetchedAt && !v.FetchedAt.IsZero() {
		fetchedAt := v.FetchedAt.UTC()
		resp.FetchedAt = &fetchedAt
	}

	return resp
}

func respond(c *gin.Context, v app.View, err error, withFetchedAt bool) {
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, currentResponse(v, withFetchedAt))
}

// GetCurrent handles GET /api/v1/quotes/current. The batch is loaded on the
// first request.
func (h *QuoteHandler) GetCurrent(c *gin.Context) {
	v, err := h.service.Current(c.Request.Context())
	respond(c, v, err, true)
}

// Next handles POST /api/v1/quotes/next. An optional ?steps=N moves N places.
func (h *QuoteHandler) Next(c *gin.Context) {
	steps, ok := stepsParam(c)
	if !ok {
		return
	}

	v, err := h.service.Step(c.Request.Context(), steps)
	respond(c, v, err, false)
}

// Previous handles POST /api/v1/quotes/previous. An optional ?steps=N moves N places.
func (h *QuoteHandler) Previous(c *gin.Context) {
	steps, ok := stepsParam(c)
	if !ok {
		return
	}

	v, err := h.service.Step(c.Request.Context(), -steps)
	respond(c, v, err, false)
}

// Refresh handles POST /api/v1/quotes/refresh, replacing the batch regardless
// of its age.
func (h *QuoteHandler) Refresh(c *gin.Context) {
	v, err := h.service.Refresh(c.Request.Context())
	respond(c, v, err, true)
}

// Share handles GET /api/v1/quotes/current/share.
func (h *QuoteHandler) Share(c *gin.Context) {
	shared, err := h.service.Share(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ShareResponse{
		Text:     shared.Text,
		ShareURL: shared.URL,
		Quote:    dto.NewQuoteResponse(shared.Quote),
		Position: dto.NewPositionResponse(shared.Position),
	})
}

// ListBatch handles GET /api/v1/quotes/batch?cursor=&limit=. A cursor issued
// for an earlier batch is rejected with 409.
func (h *QuoteHandler) ListBatch(c *gin.Context) {
	var req dto.PaginationRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.AbortWithCode(c, dto.ErrorCodeValidation, "invalid pagination parameters", dto.ValidationErrors(err))
		return
	}

	offset := 0
	var version int64

	cursor, err := req.DecodeCursor()
	switch {
	case err == nil:
		offset, version = cursor.Offset, cursor.Version
	case !errors.Is(err, dto.ErrNoCursor):
		dto.AbortWithCode(c, dto.ErrorCodeBadRequest, "invalid cursor", nil)
		return
	}

	page, err := h.service.Page(c.Request.Context(), offset, req.GetLimit())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	current := page.FetchedAt.UnixMilli()
	if cursor != nil && version != current {
		dto.HandleError(c, domain.NewConflictError("quote batch", "the batch was replaced since the cursor was issued"))
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedResponse(dto.NewQuoteResponses(page.Quotes), page.Offset, page.Total, current))
}

// stepsParam reads ?steps, defaulting to 1. It writes the error response
// itself and reports false on a bad value.
func stepsParam(c *gin.Context) (int, bool) {
	raw := c.Query("steps")
	if raw == "" {
		return 1, true
	}

	steps, err := strconv.Atoi(raw)
	if err != nil || steps < 1 {
		dto.HandleError(c, domain.NewValidationError("steps", "must be a positive integer"))
		return 0, false
	}

	return steps, true
}

// RegisterQuoteRoutes registers the quote routes under rg.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("/current", h.GetCurrent)
	quotes.GET("/current/share", h.Share)
	quotes.POST("/next", h.Next)
	quotes.POST("/previous", h.Previous)
	quotes.POST("/refresh", h.Refresh)
	quotes.GET("/batch", h.ListBatch)
}
