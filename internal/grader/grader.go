// Package grader converts free-form teacher rubrics into a normalized
// JSON schema teachers can review before any essay is graded against it.
package grader

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/underwriterhq/underwriter/internal/llm"
)

const extractSystem = `You are an assistant that converts teacher rubrics into a clean JSON schema.
- Do not invent criteria not present.
- If weights aren't explicit, propose reasonable weights that sum to ~1.0.
- Preserve descriptor wording; keep it concise.
Output only JSON with this schema:
{
  "title": "string",
  "scale": "0-4" | "0-100",
  "criteria": [
    {
      "name": "string",
      "weight": number,     // 0..1
      "descriptor_levels": { "4":"...", "3":"...", "2":"...", "1":"...", "0":"..." } // if 0-100, normalize to 4..0 bands
    }
  ]
}`

// descriptor band keys, best (4) to worst (0)
var bandKeys = []string{"4", "3", "2", "1", "0"}

// Criterion is one gradable dimension of a rubric.
type Criterion struct {
	Name             string            `json:"name"`
	Weight           float64           `json:"weight"`
	DescriptorLevels map[string]string `json:"descriptor_levels"`
}

// Schema is the normalized rubric. Weights always sum to ~1.0 and every
// criterion carries all five descriptor bands, possibly empty.
type Schema struct {
	Title    string      `json:"title"`
	Scale    string      `json:"scale"`
	Criteria []Criterion `json:"criteria"`
}

// Extractor drives rubric extraction through the LLM client.
type Extractor struct {
	client *llm.Client
	log    *slog.Logger
}

func NewExtractor(client *llm.Client, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{client: client, log: log}
}

// Extract turns raw rubric text into a normalized Schema. Any failure —
// no API key, transport error, malformed JSON — degrades to the fallback
// schema rather than blocking the teacher.
func (e *Extractor) Extract(ctx context.Context, rubricText string) Schema {
	if e.client == nil || !e.client.Enabled() {
		return FallbackSchema()
	}

	user := fmt.Sprintf(
		"Extract a rubric JSON from the following text. If the scale isn't explicit, prefer '0-4'.\n\nRUBRIC TEXT:\n---\n%s\n---",
		llm.Truncate(rubricText, 12000))

	raw, err := e.client.Complete(ctx, llm.Request{
		System:      extractSystem,
		User:        user,
		MaxTokens:   1200,
		Temperature: 0.2,
	})
	if err != nil {
		e.log.Warn("rubric extraction failed, using fallback schema", "error", err)
		return FallbackSchema()
	}

	schema, err := ParseSchema(raw)
	if err != nil {
		e.log.Warn("rubric schema parse failed, using fallback schema", "error", err)
		return FallbackSchema()
	}
	return schema
}

// ParseSchema decodes model output and applies the normalization rules:
// code fences stripped, weights rescaled to sum to 1.0, scale
// canonicalized, descriptor bands backfilled.
func ParseSchema(raw string) (Schema, error) {
	raw = llm.StripCodeBlock(strings.TrimSpace(raw))

	var schema Schema
	if err := json.Unmarshal([]byte(raw), &schema); err != nil {
		return Schema{}, fmt.Errorf("decode rubric schema: %w", err)
	}
	Normalize(&schema)
	return schema, nil
}

// Normalize enforces the schema invariants in place.
func Normalize(s *Schema) {
	if s.Title == "" {
		s.Title = "Untitled Rubric"
	}
	if s.Scale != "0-4" && s.Scale != "0-100" {
		s.Scale = "0-4"
	}
	normalizeWeights(s.Criteria)
	for i := range s.Criteria {
		if s.Criteria[i].DescriptorLevels == nil {
			s.Criteria[i].DescriptorLevels = map[string]string{}
		}
		for _, k := range bandKeys {
			if _, ok := s.Criteria[i].DescriptorLevels[k]; !ok {
				s.Criteria[i].DescriptorLevels[k] = ""
			}
		}
	}
}

// normalizeWeights rescales criterion weights so they sum to 1.0. All-zero
// weights divide by 1.0 and stay zero; the teacher fixes those by hand.
func normalizeWeights(criteria []Criterion) {
	var total float64
	for _, c := range criteria {
		total += c.Weight
	}
	if total == 0 {
		total = 1.0
	}
	for i := range criteria {
		criteria[i].Weight = round4(criteria[i].Weight / total)
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// FallbackSchema is the minimal four-criterion rubric used when
// extraction is unavailable.
func FallbackSchema() Schema {
	emptyBands := func() map[string]string {
		return map[string]string{"4": "", "3": "", "2": "", "1": "", "0": ""}
	}
	return Schema{
		Title: "Untitled Rubric",
		Scale: "0-4",
		Criteria: []Criterion{
			{Name: "Thesis", Weight: 0.25, DescriptorLevels: emptyBands()},
			{Name: "Evidence", Weight: 0.25, DescriptorLevels: emptyBands()},
			{Name: "Organization", Weight: 0.25, DescriptorLevels: emptyBands()},
			{Name: "Style/Mechanics", Weight: 0.25, DescriptorLevels: emptyBands()},
		},
	}
}
