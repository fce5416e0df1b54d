package workflow

import (
	"context"
	"time"

	"github.com/growship/commerce_backend/config"
	"github.com/growship/commerce_backend/models"
	"github.com/growship/commerce_backend/utils"
)

type NotificationPayload struct {
	BrandId       string                      `json:"brand_id"`
	DistributorId *string                     `json:"distributor_id,omitempty"`
	TargetUserId  string                      `json:"target_user_id,omitempty"`
	Roles         []models.RoleName           `json:"roles,omitempty"`
	Title         string                      `json:"title"`
	Message       string                      `json:"message"`
	Priority      models.NotificationPriority `json:"priority,omitempty"`
	ReferenceType string                      `json:"reference_type,omitempty"`
	ReferenceId   int                         `json:"reference_id,omitempty"`
	ActionUrl     string                      `json:"action_url,omitempty"`
	ExcludeUserId string                      `json:"exclude_user_id,omitempty"`
}

type DispatchResult struct {
	Success           bool   `json:"success"`
	NotificationsSent int    `json:"notifications_sent"`
	Error             string `json:"error,omitempty"`
}

func dispatchFail(err error) DispatchResult {
	return DispatchResult{Success: false, Error: err.Error()}
}

/* cached settings lookups, 60s TTL */

func getTypeConfig(ctx context.Context, typeKey string) *models.NotificationType {
	cacheKey := utils.SettingsCacheKey("global", "type", typeKey)
	if cached, ok := utils.GetCachedSettings[models.NotificationType](ctx, cacheKey); ok {
		return cached
	}

	db := config.GetDB()
	var nt models.NotificationType
	if err := db.WithContext(ctx).First(&nt, "type_key = ?", typeKey).Error; err != nil {
		// unknown keys fall back to a sane default so internal events
		// (stock alerts, lifecycle events) work without seeding
		nt = models.NotificationType{
			TypeKey:         typeKey,
			DefaultPriority: models.NotificationPriorityMedium,
			DefaultFreq:     models.FrequencyInstant,
			IsActive:        true,
		}
	}
	utils.SetCachedSettings(ctx, cacheKey, &nt)
	return &nt
}

func getEnabledRoles(ctx context.Context, brandId string, typeKey string) []models.RoleName {
	cacheKey := utils.SettingsCacheKey(brandId, "roles", typeKey)
	if cached, ok := utils.GetCachedSettings[[]models.RoleName](ctx, cacheKey); ok {
		return *cached
	}

	db := config.GetDB()
	var settings []models.NotificationRoleSetting
	err := db.WithContext(ctx).
		Where("brand_id = ? AND type_key = ? AND enabled = ?", brandId, typeKey, true).
		Find(&settings).Error
	if err != nil {
		config.LogError(config.GetLogger(), "workflow", "getEnabledRoles", typeKey, brandId, err)
		return nil
	}
	roles := make([]models.RoleName, 0, len(settings))
	for _, s := range settings {
		roles = append(roles, s.Role)
	}
	utils.SetCachedSettings(ctx, cacheKey, &roles)
	return roles
}

// ClearSettingsCache must be called by every settings-mutation path; the
// 60s TTL otherwise serves stale role settings.
func ClearSettingsCache(ctx context.Context, brandId string) {
	utils.InvalidateCachedSettings(ctx, utils.SettingsCacheKey(brandId, "*"))
	utils.InvalidateCachedSettings(ctx, utils.SettingsCacheKey("global", "*"))
}

/* recipient resolution */

// FilterRecipients drops the excluded user and de-duplicates users that
// matched through several roles, preserving first-seen order.
func FilterRecipients(userIds []string, excludeUserId string) []string {
	out := make([]string, 0, len(userIds))
	seen := map[string]bool{}
	for _, id := range userIds {
		if id == "" || id == excludeUserId || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func narrowRoles(enabled []models.RoleName, subset []models.RoleName) []models.RoleName {
	if len(subset) == 0 {
		return enabled
	}
	var out []models.RoleName
	for _, r := range enabled {
		if roleAllowed(r, subset) {
			out = append(out, r)
		}
	}
	return out
}

// resolveRoleUsers maps one enabled role to concrete approved user ids.
// super_admin is global, distributor roles are scoped to the event's
// distributor, everything else is scoped to the brand.
func resolveRoleUsers(ctx context.Context, role models.RoleName, payload NotificationPayload) []string {
	db := config.GetDB()
	query := db.WithContext(ctx).Model(&models.UserProfile{}).
		Where("role = ? AND user_status = ?", role, models.UserStatusApproved)

	switch {
	case role == models.RoleSuperAdmin:
		// global
	case isDistributorRole(role):
		if payload.DistributorId == nil {
			return nil
		}
		query = query.Where("distributor_id = ?", *payload.DistributorId)
	default:
		query = query.Where("brand_id = ?", payload.BrandId)
	}

	var ids []string
	if err := query.Pluck("id", &ids).Error; err != nil {
		config.LogError(config.GetLogger(), "workflow", "resolveRoleUsers", string(role), payload.BrandId, err)
		return nil
	}
	return ids
}

func getPreference(ctx context.Context, userId string, typeKey string) *models.NotificationPreference {
	db := config.GetDB()
	var pref models.NotificationPreference
	if err := db.WithContext(ctx).Where("user_id = ? AND type_key = ?", userId, typeKey).First(&pref).Error; err != nil {
		return nil
	}
	return &pref
}

// effectiveFrequency is the user's override when present, else the type
// default. A disabled preference removes the recipient entirely.
func effectiveFrequency(nt *models.NotificationType, pref *models.NotificationPreference) (models.NotificationFrequency, bool) {
	if pref != nil {
		if !pref.Enabled {
			return "", false
		}
		if pref.Frequency != nil {
			return *pref.Frequency, true
		}
	}
	return nt.DefaultFreq, true
}

/* dispatch */

// DispatchNotification resolves recipients for a type key and fans the
// event out, instant rows inserted directly and digest frequencies queued.
// Zero eligible recipients is a successful no-op.
func DispatchNotification(ctx context.Context, typeKey string, payload NotificationPayload) DispatchResult {
	nt := getTypeConfig(ctx, typeKey)
	if !nt.IsActive {
		return DispatchResult{Success: true, NotificationsSent: 0}
	}

	priority := payload.Priority
	if priority == "" {
		priority = nt.DefaultPriority
	}

	var recipients []string
	if payload.TargetUserId != "" {
		profile, err := models.GetUserProfile(ctx, payload.TargetUserId)
		if err != nil {
			return dispatchFail(err)
		}
		enabled := getEnabledRoles(ctx, payload.BrandId, typeKey)
		if len(enabled) > 0 && !roleAllowed(profile.Role, enabled) {
			return DispatchResult{Success: true, NotificationsSent: 0}
		}
		recipients = []string{payload.TargetUserId}
	} else {
		roles := narrowRoles(getEnabledRoles(ctx, payload.BrandId, typeKey), payload.Roles)
		var ids []string
		for _, role := range roles {
			ids = append(ids, resolveRoleUsers(ctx, role, payload)...)
		}
		recipients = FilterRecipients(ids, payload.ExcludeUserId)
	}

	if len(recipients) == 0 {
		return DispatchResult{Success: true, NotificationsSent: 0}
	}

	var instant []models.Notification
	var queued []models.DigestItem
	for _, userId := range recipients {
		freq, enabled := effectiveFrequency(nt, getPreference(ctx, userId, typeKey))
		if !enabled {
			continue
		}
		if freq == models.FrequencyInstant {
			instant = append(instant, models.Notification{
				BrandId:        payload.BrandId,
				UserId:         userId,
				TypeKey:        typeKey,
				Title:          payload.Title,
				Message:        payload.Message,
				Priority:       priority,
				ReferenceType:  payload.ReferenceType,
				ReferenceId:    payload.ReferenceId,
				ActionRequired: nt.DefaultActionRequired,
				ActionUrl:      payload.ActionUrl,
			})
		} else {
			queued = append(queued, models.DigestItem{
				BrandId:       payload.BrandId,
				UserId:        userId,
				TypeKey:       typeKey,
				Title:         payload.Title,
				Message:       payload.Message,
				Priority:      priority,
				Frequency:     freq,
				ReferenceType: payload.ReferenceType,
				ReferenceId:   payload.ReferenceId,
			})
		}
	}

	db := config.GetDB()
	sent := 0
	if len(instant) > 0 {
		if err := db.WithContext(ctx).Create(&instant).Error; err != nil {
			return dispatchFail(err)
		}
		sent += len(instant)
	}
	if len(queued) > 0 {
		if err := db.WithContext(ctx).Create(&queued).Error; err != nil {
			return dispatchFail(err)
		}
		sent += len(queued)
		publishDigestHandoff(ctx, typeKey, queued)
	}

	return DispatchResult{Success: true, NotificationsSent: sent}
}

// best effort: digest rows are durable, the scheduled flush catches
// anything the push path misses
func publishDigestHandoff(ctx context.Context, typeKey string, items []models.DigestItem) {
	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)
	for _, item := range items {
		_, err := config.PublishDigestQueued(ctx, config.DigestMessage{
			BrandId:       item.BrandId,
			UserId:        item.UserId,
			TypeKey:       typeKey,
			Frequency:     string(item.Frequency),
			QueuedAt:      time.Now(),
			CorrelationId: correlationId,
		})
		if err != nil {
			config.LogWarn(config.GetLogger(), "workflow", "publishDigestHandoff", typeKey, err.Error())
			return
		}
	}
}

// FlushDigestItems rolls a user's unflushed digest rows into one summary
// notification. Invoked from the pubsub push handler and the scheduled
// flush binary.
func FlushDigestItems(ctx context.Context, brandId string, userId string) (int, error) {
	db := config.GetDB()

	var items []models.DigestItem
	err := db.WithContext(ctx).
		Where("user_id = ? AND flushed_at IS NULL", userId).
		Order("id").
		Find(&items).Error
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}

	title := "Activity digest"
	message := ""
	for i, item := range items {
		if i > 0 {
			message += "\n"
		}
		message += item.Title
	}

	now := time.Now()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return 0, tx.Error
	}
	summary := models.Notification{
		BrandId:  brandId,
		UserId:   userId,
		TypeKey:  "digest_summary",
		Title:    title,
		Message:  message,
		Priority: models.NotificationPriorityLow,
	}
	if err := tx.Create(&summary).Error; err != nil {
		tx.Rollback()
		return 0, err
	}
	ids := make([]int, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	if err := tx.Model(&models.DigestItem{}).Where("id IN ?", ids).Update("flushed_at", &now).Error; err != nil {
		tx.Rollback()
		return 0, err
	}
	if err := tx.Commit().Error; err != nil {
		return 0, err
	}
	return len(items), nil
}
