package model

import "testing"

func TestJSONMap_ValueAndScan(t *testing.T) {
	in := JSONMap{"city": "Abuja", "country": "NG"}
	v, err := in.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var out JSONMap
	if err := out.Scan(v); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if out["city"] != "Abuja" || out["country"] != "NG" {
		t.Fatalf("round trip lost data: %#v", out)
	}

	if err := out.Scan([]byte(`{"a":1}`)); err != nil || out["a"] != float64(1) {
		t.Fatalf("bytes scan: %v %#v", err, out)
	}
}

func TestJSONMap_Nulls(t *testing.T) {
	var m JSONMap
	if v, err := m.Value(); err != nil || v != nil {
		t.Fatalf("nil map Value = %v, %v", v, err)
	}
	m = JSONMap{"x": 1}
	if err := m.Scan(nil); err != nil || m != nil {
		t.Fatalf("Scan(nil) = %#v, %v", m, err)
	}
	if err := m.Scan(42); err == nil {
		t.Fatalf("expected error for int source")
	}
}

func TestOneOf(t *testing.T) {
	if !OneOf("draft", PublicationStatuses) || OneOf("deleted", PublicationStatuses) {
		t.Fatal("OneOf mismatch")
	}
}
