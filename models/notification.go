package models

import (
	"context"
	"errors"
	"time"

	"github.com/growship/commerce_backend/config"
	"github.com/growship/commerce_backend/utils"
)

// NotificationType is the catalog of event kinds the dispatcher knows.
// TypeKey is the stable identifier (e.g. "order_status_changed",
// "stock_low", "po_submitted").
type NotificationType struct {
	ID                    int                   `gorm:"primaryKey" json:"id"`
	TypeKey               string                `gorm:"type:varchar(100);uniqueIndex;not null" json:"type_key"`
	Title                 string                `gorm:"type:varchar(255)" json:"title"`
	Category              string                `gorm:"type:varchar(50)" json:"category"`
	DefaultPriority       NotificationPriority  `gorm:"type:varchar(20);default:medium" json:"default_priority"`
	DefaultFreq           NotificationFrequency `gorm:"type:varchar(20);default:instant" json:"default_freq"`
	DefaultActionRequired bool                  `gorm:"default:false" json:"default_action_required"`
	IsActive              bool                  `gorm:"default:true" json:"is_active"`
	CreatedAt             time.Time             `json:"created_at"`
}

// NotificationRoleSetting decides which roles of a brand receive a given
// notification type. No row means the role does not receive it.
type NotificationRoleSetting struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	BrandId   string    `gorm:"type:char(36);index:idx_role_setting,unique" json:"brand_id"`
	TypeKey   string    `gorm:"type:varchar(100);index:idx_role_setting,unique" json:"type_key"`
	Role      RoleName  `gorm:"type:varchar(50);index:idx_role_setting,unique" json:"role"`
	Enabled   bool      `gorm:"default:true" json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NotificationPreference is a per-user opt-out / frequency override.
type NotificationPreference struct {
	ID        int                    `gorm:"primaryKey" json:"id"`
	UserId    string                 `gorm:"type:char(36);index:idx_notify_pref,unique" json:"user_id"`
	TypeKey   string                 `gorm:"type:varchar(100);index:idx_notify_pref,unique" json:"type_key"`
	Enabled   bool                   `gorm:"default:true" json:"enabled"`
	Frequency *NotificationFrequency `gorm:"type:varchar(20)" json:"frequency"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

type Notification struct {
	ID             int                  `gorm:"primaryKey" json:"id"`
	BrandId        string               `gorm:"type:char(36);index" json:"brand_id"`
	UserId         string               `gorm:"type:char(36);index;not null" json:"user_id"`
	TypeKey        string               `gorm:"type:varchar(100);index" json:"type_key"`
	Title          string               `gorm:"type:varchar(255)" json:"title"`
	Message        string               `gorm:"type:text" json:"message"`
	Priority       NotificationPriority `gorm:"type:varchar(20);default:medium" json:"priority"`
	ReferenceType  string               `gorm:"type:varchar(30)" json:"reference_type"`
	ReferenceId    int                  `json:"reference_id"`
	ActionRequired bool                 `gorm:"default:false" json:"action_required"`
	ActionUrl      string               `gorm:"type:varchar(500)" json:"action_url"`
	IsRead         bool                 `gorm:"default:false;index" json:"is_read"`
	ReadAt         *time.Time           `json:"read_at"`
	ExpiresAt      *time.Time           `json:"expires_at"`
	CreatedAt      time.Time            `json:"created_at"`
}

// DigestItem is a queued entry for users on daily/weekly frequency. A
// scheduled flush (or the pubsub push handler) rolls due items into one
// summary notification.
type DigestItem struct {
	ID            int                   `gorm:"primaryKey" json:"id"`
	BrandId       string                `gorm:"type:char(36);index" json:"brand_id"`
	UserId        string                `gorm:"type:char(36);index;not null" json:"user_id"`
	TypeKey       string                `gorm:"type:varchar(100)" json:"type_key"`
	Title         string                `gorm:"type:varchar(255)" json:"title"`
	Message       string                `gorm:"type:text" json:"message"`
	Priority      NotificationPriority  `gorm:"type:varchar(20)" json:"priority"`
	Frequency     NotificationFrequency `gorm:"type:varchar(20)" json:"frequency"`
	ReferenceType string                `gorm:"type:varchar(30)" json:"reference_type"`
	ReferenceId   int                   `json:"reference_id"`
	FlushedAt     *time.Time            `gorm:"index" json:"flushed_at"`
	CreatedAt     time.Time             `json:"created_at"`
}

func ListNotifications(ctx context.Context, unreadOnly bool, limit int, offset int) ([]*Notification, error) {
	db := config.GetDB()
	userId, _ := utils.GetUserIdFromContext(ctx)

	dbCtx := db.WithContext(ctx).Where("user_id = ?", userId)
	if unreadOnly {
		dbCtx = dbCtx.Where("is_read = ?", false)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []*Notification
	if err := dbCtx.Order("id DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func UnreadNotificationCount(ctx context.Context) (int64, error) {
	db := config.GetDB()
	userId, _ := utils.GetUserIdFromContext(ctx)

	var count int64
	err := db.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userId, false).
		Count(&count).Error
	return count, err
}

// MarkNotificationRead is owner-only: the WHERE includes user_id so one
// user can never read-flag another's row.
func MarkNotificationRead(ctx context.Context, id int) error {
	db := config.GetDB()
	userId, _ := utils.GetUserIdFromContext(ctx)

	now := time.Now()
	result := db.WithContext(ctx).Model(&Notification{}).
		Where("id = ? AND user_id = ?", id, userId).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

func MarkAllNotificationsRead(ctx context.Context) (int64, error) {
	db := config.GetDB()
	userId, _ := utils.GetUserIdFromContext(ctx)

	now := time.Now()
	result := db.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userId, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now})
	return result.RowsAffected, result.Error
}

type UpdatePreferenceInput struct {
	TypeKey   string  `json:"type_key" binding:"required"`
	Enabled   *bool   `json:"enabled"`
	Frequency *string `json:"frequency"`
}

func UpsertNotificationPreference(ctx context.Context, input UpdatePreferenceInput) (*NotificationPreference, error) {
	db := config.GetDB()
	userId, _ := utils.GetUserIdFromContext(ctx)

	var freq *NotificationFrequency
	if input.Frequency != nil {
		f := NotificationFrequency(*input.Frequency)
		switch f {
		case FrequencyInstant, FrequencyDaily, FrequencyWeekly:
			freq = &f
		default:
			return nil, errors.New("invalid frequency")
		}
	}

	var pref NotificationPreference
	err := db.WithContext(ctx).Where("user_id = ? AND type_key = ?", userId, input.TypeKey).First(&pref).Error
	if err != nil {
		pref = NotificationPreference{
			UserId:  userId,
			TypeKey: input.TypeKey,
			Enabled: true,
		}
	}
	if input.Enabled != nil {
		pref.Enabled = *input.Enabled
	}
	if freq != nil {
		pref.Frequency = freq
	}
	if err := db.WithContext(ctx).Save(&pref).Error; err != nil {
		return nil, err
	}
	return &pref, nil
}
