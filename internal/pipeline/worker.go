package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/underwriterhq/underwriter/internal/parser"
)

// Worker processes one uploaded-writing job at a time: parse the file,
// then hand the plain text to the Ingestor.
type Worker struct {
	ingestor    *Ingestor
	log         *slog.Logger
	pdfFallback bool
}

func NewWorker(ing *Ingestor, log *slog.Logger, pdfFallback bool) *Worker {
	return &Worker{ingestor: ing, log: log, pdfFallback: pdfFallback}
}

// Process runs the full pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "user_id", job.UserID, "filename", job.Filename)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if pdfParser, ok := p.(*parser.PDFParser); ok {
		pdfParser.FallbackPdftotext = w.pdfFallback
	}

	extracted, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	title := job.Title
	if title == "" {
		title = extracted.Title
	}
	text := strings.TrimSpace(extracted.Text)
	if text == "" {
		log.Warn("no extractable text")
		job.AddError("no extractable text")
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	job.SetContentHash(ContentHashHex([]byte(text)))
	job.SetWords(len(strings.Fields(text)))

	// Phases 2-4: analyze, reflect, store. The ingestor walks these in
	// order; status here tracks the visible milestones.
	job.SetStatus(StatusAnalyzing, "analyzing")
	job.SetStatus(StatusReflecting, "reflecting")
	res, err := w.ingestor.Ingest(ctx, job.UserID, title, text, map[string]any{
		"filename":     job.Filename,
		"content_hash": job.ContentHash,
	})
	if err != nil {
		log.Error("ingest failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "storing")
		return
	}

	job.SetStatus(StatusStoring, "storing")
	job.SetWritingID(res.Writing.ID)
	job.MarkStored(true, true, res.Live)
	log.Info("writing ingested", "writing_id", res.Writing.ID, "feedback_live", res.Live)
	job.SetStatus(StatusCompleted, "done")
}
