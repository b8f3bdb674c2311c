package hash

import "testing"

func TestSet(t *testing.T) {
	s := NewSet("a", "b")
	if !s.Add("c") {
		t.Fatal("adding new key should return true")
	}
	if s.Add("a") {
		t.Fatal("adding existing key should return false")
	}
	if s.Size() != 3 {
		t.Fatalf("size: %v", s.Size())
	}
	if !s.Has("b") {
		t.Fatal("set should contain b")
	}
	s.Del("b")
	if s.Has("b") {
		t.Fatal("b should be deleted")
	}
	t.Log(s.String())
}

func TestSetJson(t *testing.T) {
	s := NewSet(1, 2, 3)
	buf, err := s.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	var back Set[int]
	if err := back.UnmarshalJSON(buf); err != nil {
		t.Fatal(err)
	}
	if back.Size() != 3 || !back.Has(2) {
		t.Fatalf("roundtrip: %v", back)
	}
}
