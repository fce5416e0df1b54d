package utils

import (
	"context"
	"errors"
	"reflect"

	"github.com/growship/commerce_backend/config"
)

// check if id exists, using brand_id in WHERE, return RecordNotFound error
func ValidateResourceId[T any](ctx context.Context, brandId string, id interface{}) error {

	count, err := ResourceCountWhere[T](ctx, brandId, "id = ?", id)
	if err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}

	return nil
}

// check if ALL ids exist, using brand_id in WHERE, return RecordNotFound error
func ValidateResourcesId[M any, ID comparable](ctx context.Context, brandId string, ids []ID) error {
	unqIds := UniqueSlice(ids)

	count, err := ResourceCountWhere[M](ctx, brandId, "id IN ?", unqIds)
	if err != nil {
		return err
	}
	if count != int64(len(unqIds)) {
		return ErrorRecordNotFound
	}

	return nil
}

func ValidateUnique[T any](ctx context.Context, brandId string, column string, value interface{}, exceptId interface{}) error {
	var count int64
	var err error
	if reflect.ValueOf(exceptId).IsZero() {
		count, err = ResourceCountWhere[T](ctx, brandId, column+" = ?", value)
	} else {
		count, err = ResourceCountWhere[T](ctx, brandId, column+" = ? AND NOT id = ?", value, exceptId)
	}

	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New("duplicate " + column)
	}
	return nil
}

// count records, using WHERE brand_id = ? AND $condition
// brand_id can be blank for super admin
func ResourceCountWhere[T any](ctx context.Context, brandId string, condition string, value ...interface{}) (int64, error) {
	var model T

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&model)
	var count int64
	if brandId != "" {
		dbCtx = dbCtx.Where("brand_id = ?", brandId)
	}
	dbCtx = dbCtx.Where(condition, value...)
	if err := dbCtx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
