package handlers

import (
	"context"
	"fmt"
	"gorm.io/gorm"
	"net/http"
	"stix-ui/app/server/utils"
)

// Methods cannot have type parameters, so these are plain functions
func validateIDs[M any](db *gorm.DB, ids []uint) (error, int) {
	if len(ids) > 0 {
		var (
			count int64
			model M
		)
		if err := db.
			Model(&model).
			Where("id IN ?", ids).
			Count(&count).Error; err != nil {
			// Query failed
			return fmt.Errorf("count: %w", err), http.StatusInternalServerError
		} else if int(count) != len(ids) {
			// Some ids do not exist
			return fmt.Errorf("count ids mismatch"), http.StatusBadRequest
		}
	}

	return nil, http.StatusOK
}

// valueTaken reports whether another row already uses value in column.
func valueTaken[M any](db *gorm.DB, column string, value string, excludeID uint) (bool, error) {
	var (
		count int64
		model M
	)
	query := db.Model(&model).Where(column+" = ?", value)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("count %s: %w", column, err)
	}
	return count > 0, nil
}

// choice resolves a select value. An unknown id becomes a form error, not a failure.
func (a *App) choice(ctx context.Context, errs FormErrors, field string, value string, validate func(*gorm.DB, []uint) (error, int)) (*uint, error) {
	id, err := utils.ParseOptionalID(value)
	if err != nil {
		errs.Add(field, msgInvalidChoice)
		return nil, nil
	}
	if id == nil {
		return nil, nil
	}

	if err, statusCode := validate(a.db.WithContext(ctx), []uint{*id}); err != nil {
		if statusCode == http.StatusBadRequest {
			errs.Add(field, msgInvalidChoice)
			return nil, nil
		}
		return nil, err
	}

	return id, nil
}
