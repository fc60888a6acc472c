package guard

import (
	"testing"
)

func TestGuard_CheckDeck(t *testing.T) {
	g := New(Policy{
		AllowedDeckGlobs: []string{"Languages::**", "News B2"},
	})

	t.Run("Allowed", func(t *testing.T) {
		if v := g.CheckDeck("News B2"); v != nil {
			t.Errorf("unexpected violation: %v", v.Message)
		}
		if v := g.CheckDeck("Languages::Spanish::A2"); v != nil {
			t.Errorf("unexpected violation: %v", v.Message)
		}
	})

	t.Run("Blocked", func(t *testing.T) {
		if v := g.CheckDeck("Medicine"); v == nil {
			t.Error("expected violation for Medicine")
		}
	})

	t.Run("Wildcard", func(t *testing.T) {
		gw := New(DefaultPolicy)
		if v := gw.CheckDeck("Anything::At All"); v != nil {
			t.Error("expected no violation for default policy")
		}
	})
}

func TestGuard_CheckBatchSize(t *testing.T) {
	g := New(Policy{MaxBatchSize: 5})

	t.Run("Within", func(t *testing.T) {
		if v := g.CheckBatchSize(5); v != nil {
			t.Errorf("unexpected violation: %v", v.Message)
		}
	})

	t.Run("Exceeded", func(t *testing.T) {
		if v := g.CheckBatchSize(6); v == nil {
			t.Error("expected batch size violation")
		}
	})

	t.Run("Unlimited", func(t *testing.T) {
		gu := New(Policy{})
		if v := gu.CheckBatchSize(10000); v != nil {
			t.Error("expected no violation when cap is zero")
		}
	})
}

func TestGuard_ProtectedTags(t *testing.T) {
	g := New(Policy{ProtectedTags: []string{"leech", "pinned"}})
	tags := g.ProtectedTags()
	if len(tags) != 2 || tags[0] != "leech" {
		t.Errorf("unexpected protected tags: %v", tags)
	}
}
