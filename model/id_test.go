package model

import (
	"encoding/json"
	"testing"
)

func TestID_DecodesStringsAndNumbers(t *testing.T) {
	var v struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":"007","b":42,"c":null}`), &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.A != "007" || v.B != "42" || v.C != "" {
		t.Fatalf("unexpected ids %+v", v)
	}
}

func TestID_MarshalKeepsNonCanonicalAsString(t *testing.T) {
	cases := map[ID]string{
		"42":                   `42`,
		"0":                    `0`,
		"007":                  `"007"`,
		"+5":                   `"+5"`,
		"-3":                   `"-3"`,
		"abc-1":                `"abc-1"`,
		"":                     `null`,
		"99999999999999999999": `"99999999999999999999"`,
	}
	for id, want := range cases {
		got, err := json.Marshal(id)
		if err != nil {
			t.Fatalf("marshal %q: %v", id, err)
		}
		if string(got) != want {
			t.Fatalf("marshal %q: expected %s, got %s", id, want, got)
		}
	}
}

func TestID_RoundTripThroughEntity(t *testing.T) {
	var ad Advertisement
	if err := json.Unmarshal([]byte(`{"id":"007","packageId":"+5","text":"x"}`), &ad); err != nil {
		t.Fatalf("decode: %v", err)
	}

	out, err := json.Marshal(ad)
	if err != nil {
		t.Fatalf("marshal should not fail for zero-padded ids: %v", err)
	}

	var back Advertisement
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("decode again: %v", err)
	}
	if back.ID != "007" || back.PackageID != "+5" {
		t.Fatalf("ids changed on the round trip: %+v", back)
	}
}
