package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/sevenx/marketplace/internal/models"
)

type ProfileHandler struct {
	DB *gorm.DB
}

func (h *ProfileHandler) GetProfile(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, errors.New("user not found"))
	}

	var addresses []models.Address
	h.DB.Where("user_id = ?", userID).Find(&addresses)

	return c.JSON(http.StatusOK, echo.Map{
		"user":      user,
		"addresses": addresses,
	})
}

func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	var req struct {
		Name   *string `json:"name"`
		Phone  *string `json:"phone"`
		Avatar *string `json:"avatar"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, errors.New("user not found"))
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Phone != nil {
		// Changing the phone number invalidates its verified status.
		updates["phone"] = *req.Phone
		if *req.Phone != user.Phone {
			updates["phone_verified"] = false
		}
	}
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}

	if len(updates) > 0 {
		if err := h.DB.Model(&user).Updates(updates).Error; err != nil {
			return errorResponse(c, http.StatusInternalServerError, err)
		}
	}

	return c.JSON(http.StatusOK, user)
}

func (h *ProfileHandler) UpdateLanguage(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	var req struct {
		Language string `json:"language"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	supported := map[string]bool{"en": true, "es": true, "fr": true, "de": true, "ar": true, "ru": true}
	if !supported[req.Language] {
		return errorResponse(c, http.StatusBadRequest, errors.New("unsupported language"))
	}

	if err := h.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Update("language", req.Language).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"language": req.Language})
}

func (h *ProfileHandler) AddAddress(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	var req models.Address
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	req.ID = 0
	req.UserID = userID

	if req.IsDefault {
		h.DB.Model(&models.Address{}).Where("user_id = ?", userID).Update("is_default", false)
	}

	if err := h.DB.Create(&req).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusCreated, req)
}

func (h *ProfileHandler) DeleteAddress(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	if err := h.DB.Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Address{}).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.NoContent(http.StatusNoContent)
}
