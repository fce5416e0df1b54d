package models

import "gorm.io/gorm"

func MigrateDatabase(db *gorm.DB) error {
	return db.AutoMigrate(
		&Brand{},
		&Distributor{},
		&UserProfile{},
		&Product{},
		&Order{},
		&PurchaseOrder{},
		&PurchaseOrderLine{},
		&InventoryTransaction{},
		&NotificationType{},
		&NotificationRoleSetting{},
		&NotificationPreference{},
		&Notification{},
		&DigestItem{},
		&CalendarEvent{},
		&History{},
	)
}
