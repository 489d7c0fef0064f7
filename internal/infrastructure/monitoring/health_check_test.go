package monitoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckAllHealthy(t *testing.T) {
	hc := NewHealthChecker()
	hc.AddCheck("storage", func(context.Context) error { return nil }, time.Second)
	hc.AddCheck("events", func(context.Context) error { return nil }, time.Second)

	status := hc.CheckAll(context.Background())
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "healthy", status.Checks["storage"])
	assert.Equal(t, "healthy", status.Checks["events"])
}

func TestCheckAllReportsFailure(t *testing.T) {
	hc := NewHealthChecker()
	hc.AddCheck("storage", func(context.Context) error { return nil }, time.Second)
	hc.AddCheck("events", func(context.Context) error {
		return errors.New("connection refused")
	}, time.Second)

	status := hc.CheckAll(context.Background())
	assert.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, "healthy", status.Checks["storage"])
	assert.Equal(t, "connection refused", status.Checks["events"])
}

func TestCheckAllEnforcesTimeout(t *testing.T) {
	hc := NewHealthChecker()
	hc.AddCheck("slow", func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	}, 10*time.Millisecond)

	status := hc.CheckAll(context.Background())
	assert.Equal(t, "unhealthy", status.Status)
}

func TestCheckAllNoChecks(t *testing.T) {
	status := NewHealthChecker().CheckAll(context.Background())
	assert.Equal(t, "healthy", status.Status)
	assert.Empty(t, status.Checks)
}
