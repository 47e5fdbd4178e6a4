package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseName(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"mongodb://localhost:27017/cards_app", "cards_app"},
		{"mongodb://localhost:27017", DefaultDatabase},
		{"mongodb+srv://u:p@cluster.example.net/prod?retryWrites=true", "prod"},
	}

	for _, tt := range tests {
		got, err := DatabaseName(tt.uri)
		require.NoError(t, err, tt.uri)
		assert.Equal(t, tt.want, got, tt.uri)
	}

	_, err := DatabaseName("mongodb://%zz")
	assert.Error(t, err)
}
