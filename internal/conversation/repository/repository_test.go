package repository

import (
	"strings"
	"testing"
)

func TestUpsertProfileQueryMergesInPlace(t *testing.T) {
	query := strings.ToLower(upsertProfileQuery)

	requiredFragments := []string{
		"on conflict (conversation_id)",
		"do update set profile = conversation_profiles.profile || excluded.profile",
		"returning profile",
	}

	for _, fragment := range requiredFragments {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected merging upsert query fragment %q to be present", fragment)
		}
	}
}

func TestFilterProfileKeys(t *testing.T) {
	got := filterProfileKeys(map[string]string{
		"contact_email": "jane@example.com",
		"budget":        "",
		"favorite_dog":  "rex",
		"stage":         "capture",
	})

	want := map[string]string{
		"contact_email": "jane@example.com",
		"stage":         "capture",
	}

	if len(got) != len(want) {
		t.Fatalf("filtered profile = %v, want %v", got, want)
	}
	for key, value := range want {
		if got[key] != value {
			t.Errorf("filtered[%q] = %q, want %q", key, got[key], value)
		}
	}
}
