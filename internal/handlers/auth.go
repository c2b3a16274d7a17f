package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/sevenx/marketplace/internal/hash"
	authmw "github.com/sevenx/marketplace/internal/middleware/auth"
	"github.com/sevenx/marketplace/internal/models"
	"github.com/sevenx/marketplace/internal/mykafka"
	"github.com/sevenx/marketplace/internal/verification"
)

type AuthHandler struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
	Producer      *mykafka.Producer
	Verify        *verification.Service
}

type sellerApplication struct {
	BusinessName        string `json:"business_name"`
	BusinessDescription string `json:"business_description"`
	BusinessEmail       string `json:"business_email"`
	BusinessPhone       string `json:"business_phone"`
	BusinessAddress     string `json:"business_address"`
	TaxID               string `json:"tax_id"`
	Website             string `json:"website"`
}

func (h *AuthHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", fmt.Sprint(event["user_id"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Email             string             `json:"email"`
		Password          string             `json:"password"`
		Name              string             `json:"name"`
		Phone             string             `json:"phone"`
		Role              string             `json:"role"`
		SellerApplication *sellerApplication `json:"seller_application"`
	}

	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return errorResponse(c, http.StatusBadRequest, errors.New("email, password and name are required"))
	}

	var existing models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return errorResponse(c, http.StatusConflict, errors.New("user already exists"))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	role := models.RoleCustomer
	if req.Role == models.RoleSeller && req.SellerApplication != nil {
		role = models.RoleCustomer // upgraded to seller only after admin approval
	}

	user := models.User{
		Email:        req.Email,
		PasswordHash: pwHash,
		Name:         req.Name,
		Phone:        req.Phone,
		Role:         role,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	if req.SellerApplication != nil {
		profile := models.SellerProfile{
			UserID:              user.ID,
			BusinessName:        req.SellerApplication.BusinessName,
			BusinessDescription: req.SellerApplication.BusinessDescription,
			BusinessEmail:       req.SellerApplication.BusinessEmail,
			BusinessPhone:       req.SellerApplication.BusinessPhone,
			BusinessAddress:     req.SellerApplication.BusinessAddress,
			TaxID:               req.SellerApplication.TaxID,
			Website:             req.SellerApplication.Website,
			Status:              models.SellerStatusPending,
		}
		if err := h.DB.Create(&profile).Error; err != nil {
			c.Logger().Errorf("failed to create seller profile: %v", err)
		}
	}

	// Kick off email verification; registration succeeds either way.
	if h.Verify != nil {
		h.Verify.SendEmail(c.Request().Context(), user.Email, verification.PurposeVerification)
	}

	h.publish(c, map[string]any{
		"type":    "user_registered",
		"user_id": user.ID,
		"email":   user.Email,
	})

	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err)
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	if !user.IsActive {
		return echo.NewHTTPError(http.StatusForbidden, "account is deactivated")
	}

	accessToken, err := authmw.SignAccessToken(user.ID, user.Role, h.JWTSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create access token")
	}

	refreshToken, err := authmw.SignRefreshToken(user.ID, user.Role, h.RefreshSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create refresh token")
	}

	if err := authmw.SaveRefreshToken(h.DB, refreshToken, user.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	c.SetCookie(authmw.CreateCookie("accessToken", accessToken, "/", time.Now().Add(15*time.Minute)))
	c.SetCookie(authmw.CreateCookie("refreshToken", refreshToken, "/", time.Now().Add(7*24*time.Hour)))

	h.publish(c, map[string]any{
		"type":    "user_logged_in",
		"user_id": user.ID,
		"email":   user.Email,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"role":          user.Role,
		"is_admin":      user.Role == models.RoleAdmin,
	})
}

func (h *AuthHandler) LogOut(c echo.Context) error {
	refreshCookie, err := c.Cookie("refreshToken")
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	result := h.DB.Model(&models.RefreshToken{}).
		Where("token = ?", refreshCookie.Value).
		Update("revoked", true)
	if result.Error != nil {
		return errorResponse(c, http.StatusInternalServerError, result.Error)
	}

	expired := time.Now().Add(-1 * time.Hour)
	c.SetCookie(authmw.CreateCookie("accessToken", "", "/", expired))
	c.SetCookie(authmw.CreateCookie("refreshToken", "", "/", expired))

	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, errors.New("user not found"))
	}

	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, errors.New("user not found"))
	}

	if !hash.CheckPassword(user.PasswordHash, req.OldPassword) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid current password")
	}

	pwHash, err := hash.HashPassword(req.NewPassword)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	if err := h.DB.Model(&user).Update("password_hash", pwHash).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// ForgotPassword issues a password-reset code to the account's email or
// phone. The response does not reveal whether the account exists.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req struct {
		Identifier string `json:"identifier"`
		Method     string `json:"method"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var user models.User
	err := h.DB.Where("email = ? OR phone = ?", req.Identifier, req.Identifier).First(&user).Error
	if err != nil {
		return c.JSON(http.StatusOK, verification.Result{
			Success: true,
			Message: "If the account exists, a reset code has been sent",
		})
	}

	var res verification.Result
	if req.Method == verification.MethodSMS && user.Phone != "" {
		res = h.Verify.SendSMS(c.Request().Context(), user.Phone, verification.PurposePasswordReset)
	} else {
		res = h.Verify.SendEmail(c.Request().Context(), user.Email, verification.PurposePasswordReset)
	}

	return c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req struct {
		Identifier  string `json:"identifier"`
		Code        string `json:"code"`
		NewPassword string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if req.NewPassword == "" {
		return errorResponse(c, http.StatusBadRequest, errors.New("new password is required"))
	}

	if !h.Verify.VerifyCode(c.Request().Context(), req.Identifier, req.Code, verification.PurposePasswordReset) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid verification code")
	}

	var user models.User
	if err := h.DB.Where("email = ? OR phone = ?", req.Identifier, req.Identifier).First(&user).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, errors.New("user not found"))
	}

	pwHash, err := hash.HashPassword(req.NewPassword)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	if err := h.DB.Model(&user).Update("password_hash", pwHash).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "password reset successfully"})
}
