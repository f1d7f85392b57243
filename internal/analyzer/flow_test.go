package analyzer

import (
	"reflect"
	"strings"
	"testing"
)

func TestAnalyzeFlow_EmptyInputAllZero(t *testing.T) {
	m := AnalyzeFlow("")
	if !reflect.DeepEqual(m, FlowMetrics{}) {
		t.Errorf("expected zero metrics for empty input, got %+v", m)
	}
}

func TestAnalyzeFlow_RepetitionRate(t *testing.T) {
	m := AnalyzeFlow("go go go go go go go go go go")
	if m.WordCount != 10 {
		t.Fatalf("expected 10 words, got %d", m.WordCount)
	}
	if m.VocabTypeCount != 1 {
		t.Fatalf("expected 1 type, got %d", m.VocabTypeCount)
	}
	if m.VocabTTR != 0.1 {
		t.Errorf("expected ttr 0.1, got %v", m.VocabTTR)
	}
	if m.RepetitionRate != 0.9 {
		t.Errorf("expected repetition 0.9, got %v", m.RepetitionRate)
	}
}

func TestAnalyzeFlow_PlayfulnessSignals(t *testing.T) {
	m := AnalyzeFlow("Wow! This is like a dream, isn't it?")
	if m.PlayfulnessScore <= 0 {
		t.Errorf("expected nonzero playfulness, got %v", m.PlayfulnessScore)
	}
	if m.PlayfulnessScore > 1 {
		t.Errorf("playfulness exceeds 1: %v", m.PlayfulnessScore)
	}

	flat := AnalyzeFlow("this is a plain thing this is a plain thing this is a plain thing")
	if flat.PlayfulnessScore >= m.PlayfulnessScore {
		t.Errorf("expected playful text (%v) to outscore flat text (%v)",
			m.PlayfulnessScore, flat.PlayfulnessScore)
	}
}

func TestAnalyzeFlow_HedgesLowerClarity(t *testing.T) {
	plain := AnalyzeFlow("The plan works. We ship on Friday.")
	hedged := AnalyzeFlow("Maybe the plan sort of works. Perhaps we kind of ship somewhat near Friday, a bit later.")
	if hedged.ClarityScore >= plain.ClarityScore {
		t.Errorf("expected hedged text (%v) below plain text (%v)",
			hedged.ClarityScore, plain.ClarityScore)
	}
}

func TestAnalyzeFlow_PassiveCuesLowerClarity(t *testing.T) {
	active := AnalyzeFlow("She wrote the report. She filed the summary. She closed the case.")
	passive := AnalyzeFlow("The report was drafted. The summary was filed. The case was closed.")
	if passive.ClarityScore >= active.ClarityScore {
		t.Errorf("expected passive text (%v) below active text (%v)",
			passive.ClarityScore, active.ClarityScore)
	}
}

func TestAnalyzeFlow_LongSentencesLowerClarity(t *testing.T) {
	short := AnalyzeFlow("We met at noon. The sun was bright.")
	long := AnalyzeFlow(strings.Repeat("word ", 60) + "end.")
	if long.ClarityScore >= short.ClarityScore {
		t.Errorf("expected rambling text (%v) below short text (%v)",
			long.ClarityScore, short.ClarityScore)
	}
}

func TestAnalyzeFlow_RareWordsRaiseCreativity(t *testing.T) {
	common := AnalyzeFlow("we go up and out and in and do it all")
	ornate := AnalyzeFlow("luminous catacombs shimmered beneath labyrinthine constellations")
	if ornate.CreativityScore <= common.CreativityScore {
		t.Errorf("expected ornate text (%v) above common text (%v)",
			ornate.CreativityScore, common.CreativityScore)
	}
}

func TestAnalyzeFlow_ScoresBounded(t *testing.T) {
	inputs := []string{
		"",
		"!",
		"Wow! Hey! Oh! Ah! Hmm! Ugh! Ha!",
		strings.Repeat("extraordinary phantasmagoria ", 50),
		"a a a a a a a a a a a a a a",
		"Dear committee, as if it were not enough... (really?!)",
	}
	for _, in := range inputs {
		m := AnalyzeFlow(in)
		for name, v := range map[string]float64{
			"ttr":         m.VocabTTR,
			"repetition":  m.RepetitionRate,
			"playfulness": m.PlayfulnessScore,
			"clarity":     m.ClarityScore,
			"creativity":  m.CreativityScore,
		} {
			if v < 0 || v > 1 {
				t.Errorf("input %q: %s out of range: %v", in, name, v)
			}
		}
	}
}

func TestAnalyzeFlow_Idempotent(t *testing.T) {
	text := "Hey, the harbor glittered — as though the tide itself were playful?"
	a := AnalyzeFlow(text)
	b := AnalyzeFlow(text)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("repeated analysis differs: %+v vs %+v", a, b)
	}
}
