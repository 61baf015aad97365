package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/cmms-api/pkg/config"
)

func TestPoolSize(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.DBConfig
		max, min int32
	}{
		{"por defecto", config.DBConfig{}, 25, 2},
		{"explícito", config.DBConfig{MaxConns: 10, MinConns: 4}, 10, 4},
		{"mínimo acotado al máximo", config.DBConfig{MaxConns: 1}, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			maxConns, minConns := poolSize(tt.cfg)
			assert.Equal(t, tt.max, maxConns)
			assert.Equal(t, tt.min, minConns)
		})
	}
}
