package retention

import "testing"

func TestEvalSimpleComparison(t *testing.T) {
	q, err := Parse(`recipe == "app"`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ok, err := Eval(q, Record{"recipe": "app"})
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !ok {
		t.Fatal("expected match")
	}

	ok2, err := Eval(q, Record{"recipe": "other"})
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if ok2 {
		t.Fatal("expected no match")
	}
}

func TestEvalLogicalCombinators(t *testing.T) {
	q, err := Parse(`recipe == "app" && package == "p1"`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ok, err := Eval(q, Record{"recipe": "app", "package": "p1"})
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !ok {
		t.Fatal("expected match")
	}
}

func TestEvalUndefinedFieldComparableOnlyByEquality(t *testing.T) {
	q, err := Parse(`missing == "x"`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ok, err := Eval(q, Record{"recipe": "app"})
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if ok {
		t.Fatal("undefined field should never equal a literal")
	}

	qlt, err := Parse(`missing < 5`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	okLt, err := Eval(qlt, Record{"recipe": "app"})
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if okLt {
		t.Fatal("ordering comparison on undefined field must be false, not an error")
	}
}

func TestApplyLimitWithoutOrderByKeepsMostRecent(t *testing.T) {
	q, err := Parse(`meta.recipe == "many" LIMIT 3`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var records []Record
	for i := 0; i < 7; i++ {
		records = append(records, Record{
			"id":   string(rune('a' + i)),
			"meta": map[string]any{"recipe": "many"},
			"build": map[string]any{
				"date": float64(i),
			},
		})
	}
	out, err := Apply(q, records, "id", func(Record) []string { return nil })
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("len(out) = %d, want 3", len(out))
	}
	want := map[string]bool{"g": true, "f": true, "e": true}
	for _, r := range out {
		if id, _ := r["id"].(string); !want[id] {
			t.Fatalf("kept unexpected record %v, want the three most recent", id)
		}
	}
}

func TestEvalTransitiveKeep(t *testing.T) {
	q, err := Parse(`recipe == "app"`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	records := []Record{
		{"id": "a", "recipe": "app", "inputs": []string{"b"}},
		{"id": "b", "recipe": "lib"},
	}
	refs := func(r Record) []string {
		ins, _ := r["inputs"].([]string)
		return ins
	}
	out, err := Apply(q, records, "id", refs)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2 (app kept directly, lib kept transitively)", len(out))
	}
}
