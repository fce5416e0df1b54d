package models

/* order lifecycle */

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPartial  PaymentStatus = "partial"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPartial, PaymentStatusPaid, PaymentStatusRefunded:
		return true
	}
	return false
}

/* purchase order lifecycle */

type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft     PurchaseOrderStatus = "draft"
	PurchaseOrderStatusSubmitted PurchaseOrderStatus = "submitted"
	PurchaseOrderStatusApproved  PurchaseOrderStatus = "approved"
	PurchaseOrderStatusRejected  PurchaseOrderStatus = "rejected"
	PurchaseOrderStatusOrdered   PurchaseOrderStatus = "ordered"
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "received"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "cancelled"
)

func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusDraft, PurchaseOrderStatusSubmitted, PurchaseOrderStatusApproved,
		PurchaseOrderStatusRejected, PurchaseOrderStatusOrdered, PurchaseOrderStatusReceived,
		PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

type POLineStatus string

const (
	POLineStatusPending           POLineStatus = "pending"
	POLineStatusApproved          POLineStatus = "approved"
	POLineStatusPartiallyApproved POLineStatus = "partially_approved"
	POLineStatusBackordered       POLineStatus = "backordered"
	POLineStatusRejected          POLineStatus = "rejected"
	POLineStatusCancelled         POLineStatus = "cancelled"
)

func (s POLineStatus) IsValid() bool {
	switch s {
	case POLineStatusPending, POLineStatusApproved, POLineStatusPartiallyApproved,
		POLineStatusBackordered, POLineStatusRejected, POLineStatusCancelled:
		return true
	}
	return false
}

/* stock ledger */

type InventoryTransactionType string

const (
	TransactionOrderAllocated   InventoryTransactionType = "ORDER_ALLOCATED"
	TransactionOrderFulfilled   InventoryTransactionType = "ORDER_FULFILLED"
	TransactionOrderCancelled   InventoryTransactionType = "ORDER_CANCELLED"
	TransactionPOApproved       InventoryTransactionType = "PO_APPROVED"
	TransactionPOReceived       InventoryTransactionType = "PO_RECEIVED"
	TransactionPOCancelled      InventoryTransactionType = "PO_CANCELLED"
	TransactionManualAdjustment InventoryTransactionType = "MANUAL_ADJUSTMENT"
)

/* notifications */

type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "low"
	NotificationPriorityMedium NotificationPriority = "medium"
	NotificationPriorityHigh   NotificationPriority = "high"
	NotificationPriorityUrgent NotificationPriority = "urgent"
)

type NotificationFrequency string

const (
	FrequencyInstant NotificationFrequency = "instant"
	FrequencyDaily   NotificationFrequency = "daily"
	FrequencyWeekly  NotificationFrequency = "weekly"
)

/* calendar */

type CalendarEventStatus string

const (
	CalendarEventStatusUpcoming  CalendarEventStatus = "upcoming"
	CalendarEventStatusDone      CalendarEventStatus = "done"
	CalendarEventStatusOverdue   CalendarEventStatus = "overdue"
	CalendarEventStatusCancelled CalendarEventStatus = "cancelled"
)

/* accounts */

type RoleName string

const (
	RoleSuperAdmin       RoleName = "super_admin"
	RoleBrandAdmin       RoleName = "brand_admin"
	RoleBrandUser        RoleName = "brand_user"
	RoleManufacturer     RoleName = "manufacturer"
	RoleDistributorAdmin RoleName = "distributor_admin"
	RoleDistributorUser  RoleName = "distributor_user"
)

func (r RoleName) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleBrandAdmin, RoleBrandUser, RoleManufacturer,
		RoleDistributorAdmin, RoleDistributorUser:
		return true
	}
	return false
}

type UserStatus string

const (
	UserStatusPending  UserStatus = "pending"
	UserStatusApproved UserStatus = "approved"
	UserStatusRejected UserStatus = "rejected"
	UserStatusDisabled UserStatus = "disabled"
)
