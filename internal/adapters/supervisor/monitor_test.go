package supervisor_test

import (
	"context"
	"os"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/respawn/internal/adapters/supervisor"
)

func TestParentMonitor_FiresWhenParentGone(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		probes := 0
		gone := 0
		m := &supervisor.ParentMonitor{
			ParentPID: 4242,
			Interval:  time.Second,
			Probe: func(pid int) bool {
				assert.Equal(t, 4242, pid)
				probes++
				return probes < 3
			},
			OnGone: func() { gone++ },
		}

		start := time.Now()
		assert.True(t, m.Run(context.Background()))
		assert.Equal(t, 3*time.Second, time.Since(start))
		assert.Equal(t, 1, gone)
	})
}

func TestParentMonitor_StopsWithContext(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		m := &supervisor.ParentMonitor{
			ParentPID: 1,
			Probe:     func(int) bool { return true },
			OnGone:    func() { t.Fatal("parent is alive") },
		}
		assert.False(t, m.Run(ctx))
	})
}

func TestNewParentMonitor_Defaults(t *testing.T) {
	m := supervisor.NewParentMonitor(os.Getppid())
	assert.Equal(t, supervisor.DefaultProbeInterval, m.Interval)
	assert.True(t, m.Probe(os.Getppid()), "the test binary's parent is alive")
	assert.False(t, m.Probe(os.Getpid()), "a pid other than the parent does not count")
}
