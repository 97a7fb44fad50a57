package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/respawn/internal/core/domain"
)

func TestChildEnv_RoundTrip(t *testing.T) {
	env := domain.ChildEnv{
		SocketPath: "/tmp/respawn-1/ipc.sock",
		Extensions: []string{".ts", ".tsx"},
		ESM:        true,
		ParentPID:  4242,
		ChannelFD:  3,
	}

	vars := map[string]string{}
	for _, kv := range env.Environ() {
		k, v, _ := cut(kv)
		vars[k] = v
	}
	assert.Equal(t, ".ts,.tsx", vars[domain.EnvExtensions])
	assert.Equal(t, "true", vars[domain.EnvESM])

	got, ok := domain.ChildEnvFromLookup(func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	})
	assert.True(t, ok)
	assert.Equal(t, env, got)
}

func TestChildEnv_OmitsZeroOptionalFields(t *testing.T) {
	env := domain.ChildEnv{SocketPath: "/s"}
	assert.Len(t, env.Environ(), 3)
}

func TestChildEnvFromLookup_NoSocket(t *testing.T) {
	_, ok := domain.ChildEnvFromLookup(func(string) (string, bool) { return "", false })
	assert.False(t, ok)
}

func TestMergeEnv(t *testing.T) {
	base := []string{"PATH=/bin", "HOME=/root", domain.EnvSocketPath + "=/old"}
	merged := domain.MergeEnv(base, []string{domain.EnvSocketPath + "=/new", "EXTRA=1"})

	assert.Equal(t, []string{"PATH=/bin", "HOME=/root", domain.EnvSocketPath + "=/new", "EXTRA=1"}, merged)
}

func cut(kv string) (string, string, bool) {
	for i := range len(kv) {
		if kv[i] == '=' {
			return kv[:i], kv[i+1:], true
		}
	}
	return kv, "", false
}
