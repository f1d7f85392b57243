package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("WorkerCount = %d", cfg.WorkerCount)
	}
	if cfg.MaxQueueSize != 100 {
		t.Errorf("MaxQueueSize = %d", cfg.MaxQueueSize)
	}
	if cfg.BaselineDays != 7 {
		t.Errorf("BaselineDays = %d", cfg.BaselineDays)
	}
	if cfg.SnapshotInterval != 5 {
		t.Errorf("SnapshotInterval = %d", cfg.SnapshotInterval)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("JobTTL = %v", cfg.JobTTL)
	}
	if cfg.TokenizerName != "regex" {
		t.Errorf("TokenizerName = %q", cfg.TokenizerName)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("WORKER_COUNT", "8")
	t.Setenv("JOB_TTL", "30m")
	t.Setenv("TOKENIZER", "lexicon")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "false")

	cfg := Load()
	if cfg.Port != "9999" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.WorkerCount != 8 {
		t.Errorf("WorkerCount = %d", cfg.WorkerCount)
	}
	if cfg.JobTTL != 30*time.Minute {
		t.Errorf("JobTTL = %v", cfg.JobTTL)
	}
	if cfg.TokenizerName != "lexicon" {
		t.Errorf("TokenizerName = %q", cfg.TokenizerName)
	}
	if cfg.PDFFallbackPdftotext {
		t.Error("PDFFallbackPdftotext should be false")
	}
}

func TestLoadClampsInvalid(t *testing.T) {
	t.Setenv("WORKER_COUNT", "-2")
	t.Setenv("MAX_UPLOAD_BYTES", "0")
	cfg := Load()
	if cfg.WorkerCount != 4 {
		t.Errorf("WorkerCount = %d, want default 4", cfg.WorkerCount)
	}
	if cfg.MaxUploadBytes != 26214400 {
		t.Errorf("MaxUploadBytes = %d, want default", cfg.MaxUploadBytes)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{APIKey: "k", DBPath: "db"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	cfg = Config{DBPath: "db"}
	if err := cfg.Validate(); err == nil {
		t.Error("missing API key accepted")
	}

	cfg = Config{APIKey: "k"}
	if err := cfg.Validate(); err == nil {
		t.Error("missing DB path accepted")
	}
}
