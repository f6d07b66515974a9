// Package repository implements the data access layer for the application.
package repository

import (
	"errors"
	"strings"

	"critique/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, pgUniqueViolation)
}

// uniqueViolation reports which of fields the violated constraint names.
// The first field is blamed when the message names none of them.
func uniqueViolation(err error, message string, fields ...string) *models.AppError {
	detail := strings.ToLower(err.Error())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		detail = strings.ToLower(pgErr.ConstraintName + " " + pgErr.Detail)
	}

	appErr := models.NewValidationError(message)
	for _, f := range fields {
		if strings.Contains(detail, f) {
			appErr.WithField(f, message)
		}
	}
	if len(appErr.Fields) == 0 && len(fields) > 0 {
		appErr.WithField(fields[0], message)
	}
	return appErr
}

// notFoundOr converts ErrRecordNotFound into NOT_FOUND and anything else into INTERNAL_ERROR.
func notFoundOr(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

// clampPage keeps list queries bounded.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// paginate counts the rows matched by q and loads one page of them into dest.
// find may add ordering or preloads to the page query only.
func paginate(q *gorm.DB, limit, offset int, dest interface{}, find func(*gorm.DB) *gorm.DB) (int64, error) {
	limit, offset = clampPage(limit, offset)

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, err
	}
	page := q.Session(&gorm.Session{}).Limit(limit).Offset(offset)
	if find != nil {
		page = find(page)
	}
	if err := page.Find(dest).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(r.Replace(s)) + "%"
}
