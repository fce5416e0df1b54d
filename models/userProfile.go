package models

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/growship/commerce_backend/config"
	"github.com/growship/commerce_backend/utils"
)

// UserProfile is the account record. Role + brand/distributor scope drive
// every permission decision; DistributorId is nil for brand-side roles.
type UserProfile struct {
	ID            string     `gorm:"primaryKey;type:char(36)" json:"id"`
	Email         string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password      string     `gorm:"type:varchar(255);not null" json:"-"`
	FullName      string     `gorm:"type:varchar(255)" json:"full_name"`
	Phone         string     `gorm:"type:varchar(50)" json:"phone"`
	Role          RoleName   `gorm:"type:varchar(50);index;not null" json:"role"`
	BrandId       string     `gorm:"type:char(36);index" json:"brand_id"`
	DistributorId *string    `gorm:"type:char(36);index" json:"distributor_id"`
	UserStatus    UserStatus `gorm:"type:varchar(20);default:pending" json:"user_status"`
	LastLoginAt   *time.Time `json:"last_login_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type NewUserProfile struct {
	Email         string  `json:"email" binding:"required,email"`
	Password      string  `json:"password" binding:"required,min=8"`
	FullName      string  `json:"full_name"`
	Phone         string  `json:"phone"`
	Role          string  `json:"role" binding:"required"`
	BrandId       string  `json:"brand_id"`
	DistributorId *string `json:"distributor_id"`
}

func CreateUserProfile(ctx context.Context, input NewUserProfile) (*UserProfile, error) {
	db := config.GetDB()

	role := RoleName(input.Role)
	if !role.IsValid() {
		return nil, errors.New("invalid role")
	}
	if role != RoleSuperAdmin && input.BrandId == "" {
		return nil, errors.New("brand_id is required for non super admin accounts")
	}
	if (role == RoleDistributorAdmin || role == RoleDistributorUser) && input.DistributorId == nil {
		return nil, errors.New("distributor_id is required for distributor accounts")
	}
	if err := utils.ValidatePhoneNumber(input.Phone); err != nil {
		return nil, err
	}

	var count int64
	if err := db.WithContext(ctx).Model(&UserProfile{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("email already registered")
	}

	profile := UserProfile{
		ID:            uuid.NewString(),
		Email:         input.Email,
		Password:      utils.HashPassword(input.Password),
		FullName:      input.FullName,
		Phone:         input.Phone,
		Role:          role,
		BrandId:       input.BrandId,
		DistributorId: input.DistributorId,
		UserStatus:    UserStatusPending,
	}
	if err := db.WithContext(ctx).Create(&profile).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			return nil, errors.New("email already registered")
		}
		return nil, err
	}
	return &profile, nil
}

func GetUserProfile(ctx context.Context, id string) (*UserProfile, error) {
	db := config.GetDB()
	var profile UserProfile
	if err := db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &profile, nil
}

func GetUserProfileByEmail(ctx context.Context, email string) (*UserProfile, error) {
	db := config.GetDB()
	var profile UserProfile
	if err := db.WithContext(ctx).First(&profile, "email = ?", email).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &profile, nil
}

func Login(ctx context.Context, email string, password string) (string, *UserProfile, error) {
	profile, err := GetUserProfileByEmail(ctx, email)
	if err != nil {
		return "", nil, errors.New("invalid email or password")
	}
	if err := utils.ComparePassword(profile.Password, password); err != nil {
		return "", nil, errors.New("invalid email or password")
	}
	if profile.UserStatus != UserStatusApproved {
		return "", nil, errors.New("account is not approved")
	}

	token, err := utils.JwtGenerate(ctx, profile.ID, string(profile.Role))
	if err != nil {
		return "", nil, err
	}

	db := config.GetDB()
	now := time.Now()
	if err := db.WithContext(ctx).Model(&UserProfile{}).Where("id = ?", profile.ID).Update("last_login_at", &now).Error; err != nil {
		config.LogWarn(config.GetLogger(), "models", "Login", "last_login_at", err.Error())
	}

	return token, profile, nil
}

func UpdateUserStatus(ctx context.Context, id string, status UserStatus) (*UserProfile, error) {
	db := config.GetDB()

	profile, err := GetUserProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(profile).Update("user_status", status).Error; err != nil {
		return nil, err
	}
	profile.UserStatus = status
	return profile, nil
}
