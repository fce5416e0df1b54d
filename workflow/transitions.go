package workflow

import (
	"fmt"

	"github.com/growship/commerce_backend/models"
)

// Transition is one legal edge of a status state machine. RequiresApproval
// edges additionally restrict the actor's role to AllowedRoles.
type Transition struct {
	From             string
	To               string
	Action           string
	RequiresApproval bool
	AllowedRoles     []models.RoleName
}

var approverRoles = []models.RoleName{models.RoleBrandAdmin, models.RoleSuperAdmin}

var poTransitions = []Transition{
	{From: "draft", To: "submitted", Action: "submit"},
	{From: "submitted", To: "approved", Action: "approve", RequiresApproval: true, AllowedRoles: approverRoles},
	{From: "submitted", To: "rejected", Action: "reject", RequiresApproval: true, AllowedRoles: approverRoles},
	{From: "approved", To: "ordered", Action: "order"},
	{From: "ordered", To: "received", Action: "receive"},
	{From: "draft", To: "cancelled", Action: "cancel"},
	{From: "submitted", To: "cancelled", Action: "cancel"},
	{From: "approved", To: "cancelled", Action: "cancel"},
	{From: "ordered", To: "cancelled", Action: "cancel"},
}

var orderTransitions = []Transition{
	{From: "pending", To: "processing", Action: "process"},
	{From: "processing", To: "shipped", Action: "ship"},
	// direct ship skips processing; inventory sync runs allocate then
	// fulfill back to back for it
	{From: "pending", To: "shipped", Action: "ship"},
	{From: "shipped", To: "delivered", Action: "deliver"},
	{From: "pending", To: "cancelled", Action: "cancel"},
	{From: "processing", To: "cancelled", Action: "cancel"},
}

func findTransition(table []Transition, from string, to string) *Transition {
	for i := range table {
		if table[i].From == from && table[i].To == to {
			return &table[i]
		}
	}
	return nil
}

func findTransitionByAction(table []Transition, from string, action string) *Transition {
	for i := range table {
		if table[i].From == from && table[i].Action == action {
			return &table[i]
		}
	}
	return nil
}

func availableActions(table []Transition, from string) []string {
	var actions []string
	seen := map[string]bool{}
	for _, t := range table {
		if t.From == from && !seen[t.Action] {
			actions = append(actions, t.Action)
			seen[t.Action] = true
		}
	}
	return actions
}

/* purchase orders */

func IsValidPOTransition(from models.PurchaseOrderStatus, to models.PurchaseOrderStatus) bool {
	return findTransition(poTransitions, string(from), string(to)) != nil
}

// GetNextPOStatus resolves an action name against the current status.
// Returns nil when no edge matches.
func GetNextPOStatus(from models.PurchaseOrderStatus, action string) *models.PurchaseOrderStatus {
	t := findTransitionByAction(poTransitions, string(from), action)
	if t == nil {
		return nil
	}
	next := models.PurchaseOrderStatus(t.To)
	return &next
}

func GetPOTransition(from models.PurchaseOrderStatus, action string) *Transition {
	return findTransitionByAction(poTransitions, string(from), action)
}

func GetAvailablePOActions(from models.PurchaseOrderStatus) []string {
	return availableActions(poTransitions, string(from))
}

/* orders */

func IsValidOrderTransition(from models.OrderStatus, to models.OrderStatus) bool {
	return findTransition(orderTransitions, string(from), string(to)) != nil
}

func GetNextOrderStatus(from models.OrderStatus, action string) *models.OrderStatus {
	t := findTransitionByAction(orderTransitions, string(from), action)
	if t == nil {
		return nil
	}
	next := models.OrderStatus(t.To)
	return &next
}

func GetAvailableOrderActions(from models.OrderStatus) []string {
	return availableActions(orderTransitions, string(from))
}

// InvalidTransitionError names the attempted pair for direct display.
func InvalidTransitionError(entity string, from string, to string) error {
	return fmt.Errorf("%s cannot move from %s to %s", entity, from, to)
}
