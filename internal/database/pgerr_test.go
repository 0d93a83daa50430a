package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"sqlstate form", errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"), true},
		{"bare code", errors.New("ERROR: duplicate key 23505"), true},
		{"fk violation", errors.New("ERROR: violates foreign key constraint (SQLSTATE 23503)"), false},
		{"other error", errors.New("connection refused"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err))
		})
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, IsForeignKeyViolation(errors.New("insert violates foreign key constraint SQLSTATE 23503")))
	assert.False(t, IsForeignKeyViolation(errors.New("SQLSTATE 23505")))
	assert.False(t, IsForeignKeyViolation(nil))
}
