package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPoolWithDefaults(t *testing.T) {
	p := Pool{}.withDefaults()
	require.Equal(t, defaultMaxIdleConns, p.MaxIdleConns)
	require.Equal(t, defaultMaxOpenConns, p.MaxOpenConns)
	require.Equal(t, defaultConnMaxLifetime, p.ConnMaxLifetime)

	p = Pool{MaxIdleConns: 2, MaxOpenConns: 5, ConnMaxLifetime: time.Minute}.withDefaults()
	require.Equal(t, 2, p.MaxIdleConns)
	require.Equal(t, 5, p.MaxOpenConns)
	require.Equal(t, time.Minute, p.ConnMaxLifetime)
}
