package repository

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"repair-desk/internal/domain"
)

// jsonColumn adapts a Go value to a JSONB column in both directions
type jsonColumn[T any] struct {
	v *T
}

func asJSON[T any](v *T) jsonColumn[T] {
	return jsonColumn[T]{v: v}
}

// Value implements driver.Valuer
func (c jsonColumn[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(c.v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode json column: %w", err)
	}
	return b, nil
}

// Scan implements sql.Scanner
func (c jsonColumn[T]) Scan(src interface{}) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported json column type %T", src)
	}
	return json.Unmarshal(b, c.v)
}

// rangeClause builds a WHERE fragment bounding column by r, numbering
// placeholders from argIndex
func rangeClause(column string, r domain.DateRange, argIndex int) (string, []interface{}) {
	clause := ""
	args := []interface{}{}

	add := func(cond string, v time.Time) {
		if clause == "" {
			clause = "WHERE "
		} else {
			clause += " AND "
		}
		clause += fmt.Sprintf(cond, column, argIndex)
		args = append(args, v)
		argIndex++
	}

	if !r.From.IsZero() {
		add("%s >= $%d", r.From)
	}
	if !r.To.IsZero() {
		add("%s < $%d", r.To)
	}
	return clause, args
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
