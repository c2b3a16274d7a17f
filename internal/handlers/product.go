package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/sevenx/marketplace/internal/ai"
	"github.com/sevenx/marketplace/internal/models"
	"github.com/sevenx/marketplace/internal/service/search"
	"github.com/sevenx/marketplace/internal/util"
)

type ProductHandler struct {
	DB      *gorm.DB
	ES      *elasticsearch.Client
	ESIndex string
	AI      *ai.Client
}

type productRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Brand       string   `json:"brand"`
	Images      []string `json:"images"`
	Tags        []string `json:"tags"`
	Inventory   uint     `json:"inventory"`
}

func (h *ProductHandler) indexProduct(c echo.Context, p *models.Product) {
	if h.ES == nil {
		return
	}
	if err := search.IndexProduct(c.Request().Context(), h.ES, h.ESIndex, p); err != nil {
		c.Logger().Errorf("elasticsearch index error: %v", err)
	}
}

// List returns active products with pagination metadata. Category, brand and
// price bounds narrow the listing.
func (h *ProductHandler) List(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	q := h.DB.Model(&models.Product{}).Where("is_active = ?", true)
	if category := c.QueryParam("category"); category != "" {
		q = q.Where("category = ?", category)
	}
	if brand := c.QueryParam("brand"); brand != "" {
		q = q.Where("brand = ?", brand)
	}
	if minPrice := c.QueryParam("min_price"); minPrice != "" {
		if v, err := strconv.ParseFloat(minPrice, 64); err == nil {
			q = q.Where("price >= ?", v)
		}
	}
	if maxPrice := c.QueryParam("max_price"); maxPrice != "" {
		if v, err := strconv.ParseFloat(maxPrice, 64); err == nil {
			q = q.Where("price <= ?", v)
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	order := "id DESC"
	switch c.QueryParam("sort") {
	case "price_asc":
		order = "price ASC"
	case "price_desc":
		order = "price DESC"
	case "rating":
		order = "rating DESC"
	}

	var products []models.Product
	if err := q.Order(order).Offset(from).Limit(limit).Find(&products).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"products": products,
		"total":    total,
		"page":     page,
		"size":     limit,
	})
}

func (h *ProductHandler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, errors.New("product not found"))
	}

	var reviews []models.Review
	h.DB.Where("product_id = ? AND is_approved = ?", product.ID, true).
		Order("id DESC").Limit(10).Find(&reviews)

	return c.JSON(http.StatusOK, echo.Map{
		"product": product,
		"reviews": reviews,
	})
}

// Create adds a product owned by the calling seller. When an AI client is
// configured, a generated description is attached alongside the seller's own.
func (h *ProductHandler) Create(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if req.Name == "" || req.Category == "" || req.Price <= 0 {
		return errorResponse(c, http.StatusBadRequest, errors.New("name, category and a positive price are required"))
	}

	product := models.Product{
		SellerID:    userID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Brand:       req.Brand,
		Images:      req.Images,
		Tags:        req.Tags,
		Inventory:   req.Inventory,
		IsActive:    true,
	}

	if h.AI.Enabled() {
		if desc, err := h.AI.GenerateDescription(c.Request().Context(), req.Name, req.Category, req.Brand); err == nil {
			product.AIDescription = desc
		} else {
			c.Logger().Errorf("ai description error: %v", err)
		}
	}

	if err := h.DB.Create(&product).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	h.DB.Model(&models.SellerProfile{}).
		Where("user_id = ?", userID).
		Update("total_products", gorm.Expr("total_products + 1"))

	h.indexProduct(c, &product)

	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) Update(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, errors.New("product not found"))
	}
	if product.SellerID != userID && userRole(c) != models.RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "not your product")
	}

	var req struct {
		Name        *string   `json:"name"`
		Description *string   `json:"description"`
		Price       *float64  `json:"price"`
		Category    *string   `json:"category"`
		Brand       *string   `json:"brand"`
		Images      *[]string `json:"images"`
		Tags        *[]string `json:"tags"`
		Inventory   *uint     `json:"inventory"`
		IsActive    *bool     `json:"is_active"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return errorResponse(c, http.StatusBadRequest, errors.New("price must be positive"))
		}
		product.Price = *req.Price
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Brand != nil {
		product.Brand = *req.Brand
	}
	if req.Images != nil {
		product.Images = *req.Images
	}
	if req.Tags != nil {
		product.Tags = *req.Tags
	}
	if req.Inventory != nil {
		product.Inventory = *req.Inventory
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := h.DB.Save(&product).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	h.indexProduct(c, &product)

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Delete(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, errors.New("product not found"))
	}
	if product.SellerID != userID && userRole(c) != models.RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "not your product")
	}

	if err := h.DB.Delete(&product).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	h.DB.Model(&models.SellerProfile{}).
		Where("user_id = ? AND total_products > 0", product.SellerID).
		Update("total_products", gorm.Expr("total_products - 1"))

	if h.ES != nil {
		if err := search.DeleteProduct(c.Request().Context(), h.ES, h.ESIndex, product.ID); err != nil {
			c.Logger().Errorf("elasticsearch delete error: %v", err)
		}
	}

	return c.NoContent(http.StatusNoContent)
}

// MyProducts lists the calling seller's products, active or not.
func (h *ProductHandler) MyProducts(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	var total int64
	h.DB.Model(&models.Product{}).Where("seller_id = ?", userID).Count(&total)

	var products []models.Product
	if err := h.DB.Where("seller_id = ?", userID).
		Order("id DESC").Offset(from).Limit(limit).
		Find(&products).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"products": products,
		"total":    total,
		"page":     page,
		"size":     limit,
	})
}

func (h *ProductHandler) Categories(c echo.Context) error {
	var categories []string
	if err := h.DB.Model(&models.Product{}).
		Where("is_active = ?", true).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": categories})
}

func (h *ProductHandler) Brands(c echo.Context) error {
	var brands []string
	if err := h.DB.Model(&models.Product{}).
		Where("is_active = ? AND brand <> ''", true).
		Distinct("brand").
		Order("brand").
		Pluck("brand", &brands).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"brands": brands})
}

// Recommendations returns products related to the user's wishlist and past
// orders, topped up with best-rated products when history is thin.
func (h *ProductHandler) Recommendations(c echo.Context) error {
	limit := parseIntDefault(c.QueryParam("limit"), 10)
	if limit < 1 || limit > 50 {
		limit = 10
	}

	var categories []string
	if userID := OptionalID(c); userID != nil {
		h.DB.Model(&models.Product{}).
			Distinct("category").
			Where("id IN (?)", h.DB.Model(&models.WishlistItem{}).
				Select("product_id").Where("user_id = ?", *userID)).
			Pluck("category", &categories)
	}

	var products []models.Product
	if len(categories) > 0 {
		h.DB.Where("is_active = ? AND category IN ?", true, categories).
			Order("rating DESC").Limit(limit).Find(&products)
	}

	if len(products) < limit {
		var top []models.Product
		exclude := make([]uint, 0, len(products))
		for _, p := range products {
			exclude = append(exclude, p.ID)
		}
		q := h.DB.Where("is_active = ?", true)
		if len(exclude) > 0 {
			q = q.Where("id NOT IN ?", exclude)
		}
		q.Order("rating DESC").Limit(limit - len(products)).Find(&top)
		products = append(products, top...)
	}

	return c.JSON(http.StatusOK, echo.Map{"products": products})
}
