package models

import (
	"context"
	"time"

	"github.com/growship/commerce_backend/config"
	"github.com/growship/commerce_backend/utils"
)

// CalendarEvent mirrors order/PO milestones onto the admin calendar.
// Synced events are keyed by (brand, event_type, related_type, related_id)
// so a re-sync updates in place instead of duplicating. IsCustom rows are
// user-created and never touched by the sync.
type CalendarEvent struct {
	ID          int                 `gorm:"primaryKey" json:"id"`
	BrandId     string              `gorm:"type:char(36);index:idx_calendar_key,unique" json:"brand_id"`
	EventType   string              `gorm:"type:varchar(50);index:idx_calendar_key,unique" json:"event_type"`
	RelatedType string              `gorm:"type:varchar(30);index:idx_calendar_key,unique" json:"related_type"`
	RelatedId   int                 `gorm:"index:idx_calendar_key,unique" json:"related_id"`
	Title       string              `gorm:"type:varchar(255)" json:"title"`
	Description string              `gorm:"type:text" json:"description"`
	EventDate   time.Time           `gorm:"index" json:"event_date"`
	Status      CalendarEventStatus `gorm:"type:varchar(20);default:upcoming" json:"status"`
	IsCustom    bool                `gorm:"default:false" json:"is_custom"`
	CreatedBy   string              `gorm:"type:char(36)" json:"created_by"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

type NewCalendarEvent struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	EventDate   time.Time `json:"event_date" binding:"required"`
}

func CreateCustomCalendarEvent(ctx context.Context, input NewCalendarEvent) (*CalendarEvent, error) {
	db := config.GetDB()
	brandId, _ := utils.GetBrandIdFromContext(ctx)
	userId, _ := utils.GetUserIdFromContext(ctx)

	event := CalendarEvent{
		BrandId:     brandId,
		EventType:   "custom",
		RelatedType: "user",
		RelatedId:   0,
		Title:       input.Title,
		Description: input.Description,
		EventDate:   input.EventDate,
		Status:      CalendarEventStatusUpcoming,
		IsCustom:    true,
		CreatedBy:   userId,
	}
	if err := db.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func ListCalendarEvents(ctx context.Context, from time.Time, to time.Time) ([]*CalendarEvent, error) {
	db := config.GetDB()
	brandId, _ := utils.GetBrandIdFromContext(ctx)

	dbCtx := db.WithContext(ctx).Where("brand_id = ?", brandId)
	if !from.IsZero() {
		dbCtx = dbCtx.Where("event_date >= ?", from)
	}
	if !to.IsZero() {
		dbCtx = dbCtx.Where("event_date <= ?", to)
	}
	var events []*CalendarEvent
	if err := dbCtx.Order("event_date").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
