package handlers

import (
	"errors"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/sevenx/marketplace/internal/models"
	"github.com/sevenx/marketplace/internal/service/search"
	"github.com/sevenx/marketplace/internal/util"
)

type SearchHandler struct {
	DB      *gorm.DB
	ES      *elasticsearch.Client
	ESIndex string
}

// Search runs a full-text product search. Elasticsearch is preferred; when
// it is unavailable or fails, the handler falls back to a SQL LIKE scan so
// search keeps working in degraded mode.
func (h *SearchHandler) Search(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return errorResponse(c, http.StatusBadRequest, errors.New("query parameter q is required"))
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	if h.ES != nil {
		total, products, err := search.Search(c.Request().Context(), h.ES, h.ESIndex, query, from, limit)
		if err == nil {
			return c.JSON(http.StatusOK, echo.Map{
				"products": products,
				"total":    total,
				"page":     page,
				"size":     limit,
				"source":   "elasticsearch",
			})
		}
		c.Logger().Errorf("elasticsearch search error, falling back to sql: %v", err)
	}

	pattern := "%" + query + "%"
	q := h.DB.Model(&models.Product{}).
		Where("is_active = ?", true).
		Where("name LIKE ? OR description LIKE ? OR brand LIKE ? OR category LIKE ?",
			pattern, pattern, pattern, pattern)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	var products []models.Product
	if err := q.Order("rating DESC").Offset(from).Limit(limit).Find(&products).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"products": products,
		"total":    total,
		"page":     page,
		"size":     limit,
		"source":   "database",
	})
}
