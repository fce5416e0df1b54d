package workflow

import (
	"testing"

	"github.com/growship/commerce_backend/models"
)

func strPtr(s string) *string { return &s }

func TestEvaluatePOPermission(t *testing.T) {
	brandA := "brand-a"
	brandB := "brand-b"
	distributor1 := "dist-1"
	distributor2 := "dist-2"

	po := &models.PurchaseOrder{
		BrandId:       brandA,
		DistributorId: strPtr(distributor1),
		Status:        models.PurchaseOrderStatusSubmitted,
		CreatedBy:     "creator-id",
	}

	cases := []struct {
		name    string
		actor   models.UserProfile
		action  string
		allowed bool
	}{
		{
			"super admin bypasses scoping",
			models.UserProfile{ID: "u1", Role: models.RoleSuperAdmin, BrandId: brandB},
			"approve", true,
		},
		{
			"wrong brand denied",
			models.UserProfile{ID: "u2", Role: models.RoleBrandAdmin, BrandId: brandB},
			"view", false,
		},
		{
			"brand admin may approve",
			models.UserProfile{ID: "u3", Role: models.RoleBrandAdmin, BrandId: brandA},
			"approve", true,
		},
		{
			"brand user may not approve",
			models.UserProfile{ID: "u4", Role: models.RoleBrandUser, BrandId: brandA},
			"approve", false,
		},
		{
			"brand user may submit",
			models.UserProfile{ID: "u4", Role: models.RoleBrandUser, BrandId: brandA},
			"submit", true,
		},
		{
			"creator cannot approve own po",
			models.UserProfile{ID: "creator-id", Role: models.RoleBrandAdmin, BrandId: brandA},
			"approve", false,
		},
		{
			"creator cannot reject own po",
			models.UserProfile{ID: "creator-id", Role: models.RoleBrandAdmin, BrandId: brandA},
			"reject", false,
		},
		{
			"distributor user scoped to own distributor",
			models.UserProfile{ID: "u5", Role: models.RoleDistributorUser, BrandId: brandA, DistributorId: strPtr(distributor1)},
			"view", true,
		},
		{
			"other distributor denied",
			models.UserProfile{ID: "u6", Role: models.RoleDistributorUser, BrandId: brandA, DistributorId: strPtr(distributor2)},
			"view", false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := EvaluatePOPermission(&tc.actor, po, tc.action)
			if result.Allowed != tc.allowed {
				t.Errorf("allowed = %v (reason %q), want %v", result.Allowed, result.Reason, tc.allowed)
			}
			if !result.Allowed && result.Reason == "" {
				t.Error("deny must carry a reason")
			}
		})
	}
}

// self-approval is denied regardless of how privileged the role is
func TestSelfApprovalDeniedForEveryRole(t *testing.T) {
	po := &models.PurchaseOrder{
		BrandId:   "brand-a",
		Status:    models.PurchaseOrderStatusSubmitted,
		CreatedBy: "creator-id",
	}
	roles := []models.RoleName{
		models.RoleSuperAdmin,
		models.RoleBrandAdmin,
		models.RoleBrandUser,
		models.RoleManufacturer,
	}
	for _, role := range roles {
		actor := models.UserProfile{ID: "creator-id", Role: role, BrandId: "brand-a"}
		for _, action := range []string{"approve", "reject"} {
			if result := EvaluatePOPermission(&actor, po, action); result.Allowed {
				t.Errorf("role %s may %s their own purchase order", role, action)
			}
		}
	}
}

func TestEvaluateOrderPermission(t *testing.T) {
	brandA := "brand-a"
	distributor1 := "dist-1"

	order := &models.Order{
		BrandId:       brandA,
		DistributorId: strPtr(distributor1),
	}

	cases := []struct {
		name    string
		actor   models.UserProfile
		action  string
		allowed bool
	}{
		{
			"super admin allowed",
			models.UserProfile{ID: "u1", Role: models.RoleSuperAdmin},
			"cancel", true,
		},
		{
			"wrong brand denied",
			models.UserProfile{ID: "u2", Role: models.RoleBrandUser, BrandId: "brand-b"},
			"view", false,
		},
		{
			"distributor admin may view",
			models.UserProfile{ID: "u3", Role: models.RoleDistributorAdmin, BrandId: brandA, DistributorId: strPtr(distributor1)},
			"view", true,
		},
		{
			"distributor admin may not modify",
			models.UserProfile{ID: "u3", Role: models.RoleDistributorAdmin, BrandId: brandA, DistributorId: strPtr(distributor1)},
			"ship", false,
		},
		{
			"distributor user may modify own",
			models.UserProfile{ID: "u4", Role: models.RoleDistributorUser, BrandId: brandA, DistributorId: strPtr(distributor1)},
			"cancel", true,
		},
		{
			"brand user unrestricted within brand",
			models.UserProfile{ID: "u5", Role: models.RoleBrandUser, BrandId: brandA},
			"ship", true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := EvaluateOrderPermission(&tc.actor, order, tc.action)
			if result.Allowed != tc.allowed {
				t.Errorf("allowed = %v (reason %q), want %v", result.Allowed, result.Reason, tc.allowed)
			}
		})
	}
}
