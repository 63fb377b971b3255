package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
)

type fakeResult struct {
	rows int64
	err  error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestExpectOne(t *testing.T) {
	execErr := errors.New("exec failed")
	rowsErr := errors.New("rows unavailable")

	tests := []struct {
		name    string
		result  sql.Result
		err     error
		wantErr error
	}{
		{"one row", fakeResult{rows: 1}, nil, nil},
		{"no rows", fakeResult{rows: 0}, nil, ErrNotFound},
		{"exec error", nil, execErr, execErr},
		{"rows affected error", fakeResult{err: rowsErr}, nil, rowsErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := expectOne(tt.result, tt.err); !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNullableRoundTrip(t *testing.T) {
	if nullTime(nil).Valid {
		t.Error("nil time should be NULL")
	}
	if timePtr(sql.NullTime{}) != nil {
		t.Error("NULL time should be nil")
	}
	now := time.Now().UTC()
	if got := timePtr(nullTime(&now)); got == nil || !got.Equal(now) {
		t.Errorf("Expected %v, got %v", now, got)
	}

	if nullInt(nil).Valid || intPtr(sql.NullInt64{}) != nil {
		t.Error("nil int should map to NULL and back")
	}
	score := 85
	if got := intPtr(nullInt(&score)); got == nil || *got != 85 {
		t.Errorf("Expected 85, got %v", got)
	}
}

func TestMapUnique(t *testing.T) {
	unique := &pq.Error{Code: "23505", Constraint: "trainers_external_id_key"}
	foreignKey := &pq.Error{Code: "23503"}
	plain := errors.New("connection reset")

	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"nil", nil, nil},
		{"unique violation", unique, ErrDuplicate},
		{"wrapped unique violation", fmt.Errorf("insert: %w", unique), ErrDuplicate},
		{"other constraint", foreignKey, foreignKey},
		{"not a driver error", plain, plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapUnique(tt.err)
			if tt.wantErr == nil {
				if got != nil {
					t.Errorf("Expected nil, got %v", got)
				}
				return
			}
			if !errors.Is(got, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, got)
			}
		})
	}
}
