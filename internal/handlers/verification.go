package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/sevenx/marketplace/internal/models"
	"github.com/sevenx/marketplace/internal/verification"
)

type VerificationHandler struct {
	DB     *gorm.DB
	Verify *verification.Service
}

func (h *VerificationHandler) SendPhoneVerification(c echo.Context) error {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if req.Phone == "" {
		return errorResponse(c, http.StatusBadRequest, errors.New("phone is required"))
	}

	res := h.Verify.SendSMS(c.Request().Context(), req.Phone, verification.PurposeVerification)
	if !res.Success {
		return c.JSON(http.StatusInternalServerError, res)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *VerificationHandler) VerifyPhone(c echo.Context) error {
	var req struct {
		Phone string `json:"phone"`
		Code  string `json:"code"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	if !h.Verify.VerifyCode(c.Request().Context(), req.Phone, req.Code, verification.PurposeVerification) {
		return c.JSON(http.StatusBadRequest, verification.Result{
			Success: false,
			Message: "Invalid verification code",
		})
	}

	if err := h.DB.Model(&models.User{}).
		Where("phone = ?", req.Phone).
		Update("phone_verified", true).Error; err != nil {
		c.Logger().Errorf("failed to update phone_verified: %v", err)
	}

	return c.JSON(http.StatusOK, verification.Result{
		Success: true,
		Message: "Phone verified successfully",
	})
}

func (h *VerificationHandler) SendEmailVerification(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if req.Email == "" {
		return errorResponse(c, http.StatusBadRequest, errors.New("email is required"))
	}

	res := h.Verify.SendEmail(c.Request().Context(), req.Email, verification.PurposeVerification)
	if !res.Success {
		return c.JSON(http.StatusInternalServerError, res)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *VerificationHandler) VerifyEmail(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	if !h.Verify.VerifyCode(c.Request().Context(), req.Email, req.Code, verification.PurposeVerification) {
		return c.JSON(http.StatusBadRequest, verification.Result{
			Success: false,
			Message: "Invalid verification code",
		})
	}

	if err := h.DB.Model(&models.User{}).
		Where("email = ?", req.Email).
		Update("email_verified", true).Error; err != nil {
		c.Logger().Errorf("failed to update email_verified: %v", err)
	}

	return c.JSON(http.StatusOK, verification.Result{
		Success: true,
		Message: "Email verified successfully",
	})
}
