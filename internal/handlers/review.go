package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/sevenx/marketplace/internal/models"
	"github.com/sevenx/marketplace/internal/notify"
	"github.com/sevenx/marketplace/internal/util"
)

type ReviewHandler struct {
	DB     *gorm.DB
	Notify *notify.Service
}

// Create stores a review and folds its rating into the product aggregates.
// One review per user per product.
func (h *ReviewHandler) Create(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if req.Rating < 1 || req.Rating > 5 {
		return errorResponse(c, http.StatusBadRequest, errors.New("rating must be between 1 and 5"))
	}

	var product models.Product
	if err := h.DB.First(&product, productID).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, errors.New("product not found"))
	}

	var existing models.Review
	if err := h.DB.Where("product_id = ? AND user_id = ?", productID, userID).
		First(&existing).Error; err == nil {
		return errorResponse(c, http.StatusConflict, errors.New("you have already reviewed this product"))
	}

	review := models.Review{
		ProductID: uint(productID),
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		// Running average over the previous aggregate, no rescan of all rows.
		newCount := product.ReviewsCount + 1
		newRating := (product.Rating*float64(product.ReviewsCount) + float64(req.Rating)) / float64(newCount)
		return tx.Model(&product).Updates(map[string]interface{}{
			"rating":        newRating,
			"reviews_count": newCount,
		}).Error
	})
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	h.DB.Model(&models.SellerProfile{}).
		Where("user_id = ?", product.SellerID).
		Update("average_rating", h.DB.Model(&models.Product{}).
			Select("COALESCE(AVG(NULLIF(rating,0)),0)").
			Where("seller_id = ?", product.SellerID))

	h.Notify.Send(c.Request().Context(), product.SellerID, notify.TypeProductReview,
		"New review",
		"Your product "+product.Name+" received a new review.",
		map[string]interface{}{"product_id": product.ID, "rating": req.Rating},
		nil)

	return c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) List(c echo.Context) error {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	var total int64
	h.DB.Model(&models.Review{}).
		Where("product_id = ? AND is_approved = ?", productID, true).
		Count(&total)

	var reviews []models.Review
	if err := h.DB.Where("product_id = ? AND is_approved = ?", productID, true).
		Order("id DESC").Offset(from).Limit(limit).
		Find(&reviews).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"reviews": reviews,
		"total":   total,
		"page":    page,
		"size":    limit,
	})
}
