package grader

import (
	"context"
	"math"
	"testing"
)

func TestParseSchemaNormalizesWeights(t *testing.T) {
	raw := `{
		"title": "Persuasive Essay",
		"scale": "0-4",
		"criteria": [
			{"name": "Thesis", "weight": 2, "descriptor_levels": {"4": "clear claim"}},
			{"name": "Evidence", "weight": 1},
			{"name": "Organization", "weight": 1}
		]
	}`
	schema, err := ParseSchema(raw)
	if err != nil {
		t.Fatalf("ParseSchema: %v", err)
	}
	if schema.Title != "Persuasive Essay" {
		t.Errorf("title = %q", schema.Title)
	}
	wants := []float64{0.5, 0.25, 0.25}
	var sum float64
	for i, c := range schema.Criteria {
		if math.Abs(c.Weight-wants[i]) > 1e-9 {
			t.Errorf("criterion %q weight = %v, want %v", c.Name, c.Weight, wants[i])
		}
		sum += c.Weight
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("weights sum = %v", sum)
	}
}

func TestParseSchemaBackfillsBands(t *testing.T) {
	raw := `{"title":"T","scale":"0-4","criteria":[{"name":"Thesis","weight":1,"descriptor_levels":{"4":"strong"}}]}`
	schema, err := ParseSchema(raw)
	if err != nil {
		t.Fatalf("ParseSchema: %v", err)
	}
	levels := schema.Criteria[0].DescriptorLevels
	for _, k := range []string{"4", "3", "2", "1", "0"} {
		if _, ok := levels[k]; !ok {
			t.Errorf("band %q missing", k)
		}
	}
	if levels["4"] != "strong" {
		t.Errorf("existing descriptor overwritten: %q", levels["4"])
	}
}

func TestParseSchemaStripsCodeFence(t *testing.T) {
	raw := "```json\n{\"title\":\"T\",\"scale\":\"0-100\",\"criteria\":[]}\n```"
	schema, err := ParseSchema(raw)
	if err != nil {
		t.Fatalf("ParseSchema: %v", err)
	}
	if schema.Scale != "0-100" {
		t.Errorf("scale = %q", schema.Scale)
	}
}

func TestParseSchemaCanonicalizesScale(t *testing.T) {
	for _, bad := range []string{"", "1-5", "percent"} {
		raw := `{"title":"T","scale":"` + bad + `","criteria":[]}`
		schema, err := ParseSchema(raw)
		if err != nil {
			t.Fatalf("ParseSchema(%q): %v", bad, err)
		}
		if schema.Scale != "0-4" {
			t.Errorf("scale %q canonicalized to %q, want 0-4", bad, schema.Scale)
		}
	}
}

func TestParseSchemaRejectsGarbage(t *testing.T) {
	if _, err := ParseSchema("not json at all"); err == nil {
		t.Fatal("expected error for non-JSON output")
	}
}

func TestNormalizeZeroWeights(t *testing.T) {
	s := Schema{
		Scale:    "0-4",
		Criteria: []Criterion{{Name: "A"}, {Name: "B"}},
	}
	Normalize(&s)
	for _, c := range s.Criteria {
		if c.Weight != 0 {
			t.Errorf("zero weights should stay zero, got %v", c.Weight)
		}
	}
	if s.Title != "Untitled Rubric" {
		t.Errorf("title default = %q", s.Title)
	}
}

func TestFallbackSchema(t *testing.T) {
	s := FallbackSchema()
	if s.Scale != "0-4" || len(s.Criteria) != 4 {
		t.Fatalf("unexpected fallback shape: %+v", s)
	}
	var sum float64
	for _, c := range s.Criteria {
		sum += c.Weight
		if len(c.DescriptorLevels) != 5 {
			t.Errorf("criterion %q has %d bands", c.Name, len(c.DescriptorLevels))
		}
	}
	if sum != 1.0 {
		t.Errorf("fallback weights sum = %v", sum)
	}
}

func TestExtractDisabledClient(t *testing.T) {
	e := NewExtractor(nil, nil)
	got := e.Extract(context.Background(), "Grade on thesis and evidence.")
	if got.Title != "Untitled Rubric" || len(got.Criteria) != 4 {
		t.Fatalf("expected fallback schema, got %+v", got)
	}
}
