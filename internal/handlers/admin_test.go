package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sevenx/marketplace/internal/models"
)

func TestSellerApprovalPromotesRole(t *testing.T) {
	env := newTestEnv(t)

	admin := env.createUser("admin@example.com", models.RoleAdmin)
	applicant := env.createUser("applicant@example.com", models.RoleCustomer)
	profile := models.SellerProfile{
		UserID:        applicant.ID,
		BusinessName:  "Acme",
		BusinessEmail: "biz@acme.com",
		Status:        models.SellerStatusPending,
	}
	require.NoError(t, env.DB.Create(&profile).Error)

	rec, c := env.doJSONRequest(http.MethodPatch, "/admin/sellers/1/status", map[string]string{
		"status": models.SellerStatusApproved,
	})
	asUser(c, admin)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(profile.ID))
	require.NoError(t, env.Admin.UpdateSellerStatus(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var user models.User
	require.NoError(t, env.DB.First(&user, applicant.ID).Error)
	require.Equal(t, models.RoleSeller, user.Role)

	// The decision leaves an audit trail.
	var entry models.AdminActionLog
	require.NoError(t, env.DB.First(&entry).Error)
	require.Equal(t, admin.ID, entry.AdminID)
	require.Equal(t, "seller_status_change", entry.ActionType)

	// Suspension demotes back to customer.
	rec2, c2 := env.doJSONRequest(http.MethodPatch, "/admin/sellers/1/status", map[string]string{
		"status": models.SellerStatusSuspended,
	})
	asUser(c2, admin)
	c2.SetParamNames("id")
	c2.SetParamValues(fmt.Sprint(profile.ID))
	require.NoError(t, env.Admin.UpdateSellerStatus(c2))
	require.Equal(t, http.StatusOK, rec2.Code)

	require.NoError(t, env.DB.First(&user, applicant.ID).Error)
	require.Equal(t, models.RoleCustomer, user.Role)
}

func TestUpdateUserStatusAndRole(t *testing.T) {
	env := newTestEnv(t)

	admin := env.createUser("admin@example.com", models.RoleAdmin)
	target := env.createUser("target@example.com", models.RoleCustomer)

	rec, c := env.doJSONRequest(http.MethodPatch, "/admin/users/1/status", map[string]interface{}{
		"is_active": false,
	})
	asUser(c, admin)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(target.ID))
	require.NoError(t, env.Admin.UpdateUserStatus(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var user models.User
	require.NoError(t, env.DB.First(&user, target.ID).Error)
	require.False(t, user.IsActive)

	rec2, c2 := env.doJSONRequest(http.MethodPatch, "/admin/users/1/role", map[string]string{
		"role": "superuser",
	})
	asUser(c2, admin)
	c2.SetParamNames("id")
	c2.SetParamValues(fmt.Sprint(target.ID))
	require.NoError(t, env.Admin.UpdateUserRole(c2))
	require.Equal(t, http.StatusBadRequest, rec2.Code)
}
