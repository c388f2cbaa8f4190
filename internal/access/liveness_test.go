package access_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/BrandonDHaskell/accesshub/internal/access"
)

func TestClassify(t *testing.T) {
	now := at("2025-06-01T00:00:00Z")

	cases := []struct {
		name string
		hb   *time.Time
		want access.Liveness
	}{
		{"never", nil, access.LivenessDead},
		{"fresh", ptr(now), access.LivenessLive},
		{"just under 5s", ptr(now.Add(-4999 * time.Millisecond)), access.LivenessLive},
		{"exactly 5s", ptr(now.Add(-5 * time.Second)), access.LivenessDying},
		{"just under 10s", ptr(now.Add(-9999 * time.Millisecond)), access.LivenessDying},
		{"exactly 10s", ptr(now.Add(-10 * time.Second)), access.LivenessDead},
		{"hours", ptr(now.Add(-3 * time.Hour)), access.LivenessDead},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, access.Classify(tc.hb, now))
		})
	}
}
