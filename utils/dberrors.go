package utils

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// UniqueViolationField trả về tên cột bị trùng khi err là lỗi vi phạm unique,
// ok=false nếu không phải.
func UniqueViolationField(err error) (field string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != "23505" {
			return "", false
		}
		return fieldFromConstraint(pgErr.ConstraintName), true
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		if liteErr.ExtendedCode != sqlite3.ErrConstraintUnique && liteErr.ExtendedCode != sqlite3.ErrConstraintPrimaryKey {
			return "", false
		}
		// "UNIQUE constraint failed: users.phone"
		msg := liteErr.Error()
		if idx := strings.LastIndex(msg, ": "); idx >= 0 {
			cols := strings.Split(msg[idx+2:], ", ")
			last := cols[len(cols)-1]
			if dot := strings.LastIndex(last, "."); dot >= 0 {
				last = last[dot+1:]
			}
			return last, true
		}
		return "", true
	}
	return "", false
}

// idx_users_phone -> phone, idx_enrollment_member_class -> gym_class
func fieldFromConstraint(name string) string {
	switch {
	case strings.HasPrefix(name, "idx_enrollment_"):
		return "gym_class"
	case strings.HasPrefix(name, "idx_"):
		parts := strings.SplitN(strings.TrimPrefix(name, "idx_"), "_", 2)
		if len(parts) == 2 {
			return parts[1]
		}
	case strings.HasSuffix(name, "_key"):
		// tên constraint mặc định của postgres: <table>_<column>_key
		trimmed := strings.TrimSuffix(name, "_key")
		if idx := strings.Index(trimmed, "_"); idx >= 0 {
			return trimmed[idx+1:]
		}
	}
	return name
}
