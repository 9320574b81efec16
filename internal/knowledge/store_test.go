package knowledge

import "testing"

func TestLookupIsCaseInsensitive(t *testing.T) {
	s := NewStore()
	s.Upsert("What are your hours?", "9am to 5pm")

	for _, q := range []string{
		"What are your hours?",
		"what are your hours?",
		"WHAT ARE YOUR HOURS?",
		"  what are your hours?  ",
	} {
		answer, ok := s.Lookup(q)
		if !ok {
			t.Fatalf("expected hit for %q", q)
		}
		if answer != "9am to 5pm" {
			t.Fatalf("expected answer %q, got %q", "9am to 5pm", answer)
		}
	}
}

func TestLookupMissReturnsFalse(t *testing.T) {
	s := NewStore()
	if _, ok := s.Lookup("unknown question"); ok {
		t.Fatal("expected miss for empty store")
	}
}

func TestUpsertOverwrites(t *testing.T) {
	s := NewStore()
	s.Upsert("parking", "yes, free")
	s.Upsert("Parking", "lot closed for repairs")

	if s.Len() != 1 {
		t.Fatalf("expected 1 entry after overwrite, got %d", s.Len())
	}
	answer, _ := s.Lookup("parking")
	if answer != "lot closed for repairs" {
		t.Fatalf("expected last write to win, got %q", answer)
	}
}

func TestNewStoreFromNormalizesKeys(t *testing.T) {
	s := NewStoreFrom(map[string]string{
		"Hand-Edited Key": "value",
	})
	answer, ok := s.Lookup("hand-edited key")
	if !ok || answer != "value" {
		t.Fatalf("expected normalized restore, got %q ok=%v", answer, ok)
	}
}

func TestEntriesAreSorted(t *testing.T) {
	s := NewStore()
	s.Upsert("zebra", "a")
	s.Upsert("apple", "b")
	s.Upsert("mango", "c")

	entries := s.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Question != "apple" || entries[2].Question != "zebra" {
		t.Fatalf("expected sorted entries, got %+v", entries)
	}
}

func TestMappingIsACopy(t *testing.T) {
	s := NewStore()
	s.Upsert("q", "a")

	mapping := s.Mapping()
	mapping["q"] = "tampered"

	answer, _ := s.Lookup("q")
	if answer != "a" {
		t.Fatal("mutating the exported mapping must not affect the store")
	}
}
