package merge

import (
	"testing"

	"github.com/openlocale/transcat/catalog"
)

func buildMapping(pairs ...any) *catalog.Mapping {
	m := catalog.NewMapping()
	for i := 0; i < len(pairs); i += 2 {
		m.Set(pairs[i].(string), pairs[i+1])
	}
	return m
}

func TestMerge_OldLeavesWin(t *testing.T) {
	fresh := buildMapping("greeting", "machine greeting", "new_key", "brand new")
	old := buildMapping("greeting", "reviewed greeting")

	got := Merge(fresh, old)

	if v, _ := got.Get("greeting"); v != "reviewed greeting" {
		t.Errorf("greeting: want reviewed greeting, got %v", v)
	}
	if v, _ := got.Get("new_key"); v != "brand new" {
		t.Errorf("new_key: want brand new, got %v", v)
	}
}

func TestMerge_RecursesIntoNested(t *testing.T) {
	fresh := buildMapping("nav", buildMapping("home", "Machine Home", "about", "Machine About"))
	old := buildMapping("nav", buildMapping("home", "Reviewed Home"))

	got := Merge(fresh, old)

	nav, _ := got.Get("nav")
	navMap := nav.(*catalog.Mapping)
	if v, _ := navMap.Get("home"); v != "Reviewed Home" {
		t.Errorf("nav.home: want Reviewed Home, got %v", v)
	}
	if v, _ := navMap.Get("about"); v != "Machine About" {
		t.Errorf("nav.about: want Machine About, got %v", v)
	}
}

func TestMerge_OldOnlyKeysDropped(t *testing.T) {
	fresh := buildMapping("a", "x")
	old := buildMapping("a", "old x", "removed", "gone")

	got := Merge(fresh, old)

	if _, ok := got.Get("removed"); ok {
		t.Error("key only in old should not appear in result")
	}
	if got.Len() != 1 {
		t.Errorf("want 1 key, got %d", got.Len())
	}
}

func TestMerge_TypeMismatch(t *testing.T) {
	t.Run("fresh nested, old leaf", func(t *testing.T) {
		fresh := buildMapping("k", buildMapping("inner", "fresh inner"))
		old := buildMapping("k", "old scalar")

		got := Merge(fresh, old)

		kv, _ := got.Get("k")
		km, ok := kv.(*catalog.Mapping)
		if !ok {
			t.Fatalf("k: want mapping, got %T", kv)
		}
		if v, _ := km.Get("inner"); v != "fresh inner" {
			t.Errorf("k.inner: want fresh inner, got %v", v)
		}
	})

	t.Run("fresh leaf, old nested", func(t *testing.T) {
		fresh := buildMapping("k", "fresh scalar")
		old := buildMapping("k", buildMapping("inner", "old inner"))

		got := Merge(fresh, old)

		kv, _ := got.Get("k")
		km, ok := kv.(*catalog.Mapping)
		if !ok {
			t.Fatalf("k: old nested value should win, got %T", kv)
		}
		if v, _ := km.Get("inner"); v != "old inner" {
			t.Errorf("k.inner: want old inner, got %v", v)
		}
	})
}

func TestMerge_NilOld(t *testing.T) {
	fresh := buildMapping("a", "x", "n", buildMapping("b", "y"))

	got := Merge(fresh, nil)

	if !fresh.Equal(got) {
		t.Errorf("Merge(fresh, nil) should equal fresh:\nwant %v\ngot  %v", fresh.Flatten(), got.Flatten())
	}
}

func TestMerge_Idempotent(t *testing.T) {
	fresh := buildMapping("a", "machine a", "n", buildMapping("b", "machine b"))
	old := buildMapping("a", "reviewed a", "n", buildMapping("b", "reviewed b"))

	once := Merge(fresh, old)
	twice := Merge(once, old)

	if !once.Equal(twice) {
		t.Errorf("merge is not idempotent:\nonce  %v\ntwice %v", once.Flatten(), twice.Flatten())
	}
}

func TestMerge_InputsUntouched(t *testing.T) {
	fresh := buildMapping("a", "fresh")
	old := buildMapping("a", "old", "extra", "e")
	freshCopy := fresh.Clone()
	oldCopy := old.Clone()

	_ = Merge(fresh, old)

	if !fresh.Equal(freshCopy) {
		t.Error("fresh was mutated")
	}
	if !old.Equal(oldCopy) {
		t.Error("old was mutated")
	}
}

func TestMerge_ResultFollowsFreshOrder(t *testing.T) {
	fresh := buildMapping("z", "1", "a", "2", "m", "3")
	old := buildMapping("a", "old a", "z", "old z")

	got := Merge(fresh, old)

	keys := got.Keys()
	want := []string{"z", "a", "m"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("key order: want %v, got %v", want, keys)
		}
	}
}
