package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrateURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "postgres://u:p@localhost:5432/food?sslmode=disable", want: "pgx5://u:p@localhost:5432/food?sslmode=disable"},
		{in: "postgresql://localhost/food", want: "pgx5://localhost/food"},
		{in: "pgx5://localhost/food", want: "pgx5://localhost/food"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, migrateURL(tt.in))
		})
	}
}
