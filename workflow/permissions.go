package workflow

import (
	"context"

	"github.com/growship/commerce_backend/models"
	"github.com/growship/commerce_backend/utils"
)

type PermissionResult struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Entity and actor loaders shared by the gate and the transition
// executors, swapped out in tests. Entity loads are unscoped: the gate
// needs to tell "not found" from "wrong brand", and a super_admin context
// may carry no brand id at all.
var (
	loadPurchaseOrder = func(ctx context.Context, id int) (*models.PurchaseOrder, error) {
		return utils.FetchSingleModel[models.PurchaseOrder](ctx, id, "Lines")
	}
	loadOrder = func(ctx context.Context, id int) (*models.Order, error) {
		return utils.FetchSingleModel[models.Order](ctx, id)
	}
	loadActor = func(ctx context.Context, userId string) (*models.UserProfile, error) {
		return models.GetUserProfile(ctx, userId)
	}
)

func allow() PermissionResult {
	return PermissionResult{Allowed: true}
}

func deny(reason string) PermissionResult {
	return PermissionResult{Allowed: false, Reason: reason}
}

func isDistributorRole(role models.RoleName) bool {
	return role == models.RoleDistributorAdmin || role == models.RoleDistributorUser
}

func roleAllowed(role models.RoleName, allowed []models.RoleName) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// EvaluatePOPermission applies the gate rules in order against an already
// loaded actor and purchase order. Read-only, no side effects.
func EvaluatePOPermission(actor *models.UserProfile, po *models.PurchaseOrder, action string) PermissionResult {
	// self-approval is forbidden for everyone; super_admin only bypasses
	// the brand/distributor scoping below
	if (action == "approve" || action == "reject") && po.CreatedBy == actor.ID {
		return deny("cannot approve or reject your own purchase order")
	}
	if actor.Role == models.RoleSuperAdmin {
		return allow()
	}
	if actor.BrandId != po.BrandId {
		return deny("no access to this brand")
	}
	if isDistributorRole(actor.Role) {
		if po.DistributorId == nil || actor.DistributorId == nil || *po.DistributorId != *actor.DistributorId {
			return deny("no access to this distributor's purchase orders")
		}
	}
	if action == "approve" || action == "reject" {
		t := GetPOTransition(po.Status, action)
		allowedRoles := approverRoles
		if t != nil && len(t.AllowedRoles) > 0 {
			allowedRoles = t.AllowedRoles
		}
		if !roleAllowed(actor.Role, allowedRoles) {
			return deny("role " + string(actor.Role) + " is not allowed to " + action + " purchase orders")
		}
	}
	return allow()
}

// EvaluateOrderPermission mirrors the purchase order gate for sales
// orders. distributor_admin may view but never modify orders.
func EvaluateOrderPermission(actor *models.UserProfile, order *models.Order, action string) PermissionResult {
	if actor.Role == models.RoleSuperAdmin {
		return allow()
	}
	if actor.BrandId != order.BrandId {
		return deny("no access to this brand")
	}
	if isDistributorRole(actor.Role) {
		if order.DistributorId == nil || actor.DistributorId == nil || *order.DistributorId != *actor.DistributorId {
			return deny("no access to this distributor's orders")
		}
		if actor.Role == models.RoleDistributorAdmin && action != "view" {
			return deny("distributor admins cannot modify orders")
		}
	}
	return allow()
}

// CheckPOPermission resolves actor and entity, then applies the gate.
// Failures come back as a structured deny, never as an error.
func CheckPOPermission(ctx context.Context, userId string, poId int, action string) PermissionResult {
	po, err := loadPurchaseOrder(ctx, poId)
	if err != nil {
		return deny("purchase order not found")
	}
	actor, err := loadActor(ctx, userId)
	if err != nil {
		return deny("profile not found")
	}
	return EvaluatePOPermission(actor, po, action)
}

func CheckOrderPermission(ctx context.Context, userId string, orderId int, action string) PermissionResult {
	order, err := loadOrder(ctx, orderId)
	if err != nil {
		return deny("order not found")
	}
	actor, err := loadActor(ctx, userId)
	if err != nil {
		return deny("profile not found")
	}
	return EvaluateOrderPermission(actor, order, action)
}
