// Package extract turns uploaded PDF documents into plain text.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"scholarsync/internal/analysis"
	"scholarsync/internal/util"
)

// FailureMessage is what users see when a document cannot be read.
const FailureMessage = "Failed to extract text from PDF. Please ensure it is a valid PDF file."

var pdfMagic = []byte("%PDF-")

// PDFExtractor validates a PDF and returns the text of every page in page
// order. It does not reject empty text; callers decide what blank means.
type PDFExtractor struct {
	Logger *slog.Logger
}

func NewPDFExtractor(logger *slog.Logger) *PDFExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExtractor{Logger: logger}
}

func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	text, err := e.extract(ctx, data)
	if err != nil {
		if ctx.Err() != nil {
			return "", analysis.NewStageError(analysis.KindCancelled, analysis.StageTextExtraction, "Text extraction was cancelled", ctx.Err())
		}
		e.Logger.Warn("pdf extraction failed", "bytes", len(data), "error", err)
		return "", analysis.NewStageError(analysis.KindExtraction, analysis.StageTextExtraction, FailureMessage, err)
	}
	return text, nil
}

func (e *PDFExtractor) ExtractFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", analysis.NewStageError(analysis.KindExtraction, analysis.StageTextExtraction, FailureMessage, fmt.Errorf("read %s: %w", path, err))
	}
	return e.Extract(ctx, data)
}

func (e *PDFExtractor) extract(ctx context.Context, data []byte) (string, error) {
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), pdfMagic) {
		return "", util.ErrNotPDF
	}
	if err := checkStructure(data); err != nil {
		return "", err
	}
	r, err := openReader(data)
	if err != nil {
		return "", err
	}
	n := r.NumPage()
	pages := make([]string, 0, n)
	skipped := 0
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		txt, err := pageText(r, i)
		if err != nil {
			e.Logger.Warn("skipping unreadable pdf page", "page", i, "pages", n, "error", err)
			skipped++
			continue
		}
		if txt = util.SanitizeText(txt); txt != "" {
			pages = append(pages, txt)
		}
	}
	if n > 0 && skipped == n {
		return "", fmt.Errorf("none of %d pages could be read", n)
	}
	return strings.Join(pages, "\n\n"), nil
}

// checkStructure parses the trailer, cross-reference table and object graph.
// Content streams are left encoded so one bad page cannot reject the file.
// pdfcpu panics on some truncated inputs.
func checkStructure(data []byte) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed pdf structure: %v", rec)
		}
	}()
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if _, err := api.ReadContext(bytes.NewReader(data), conf); err != nil {
		return fmt.Errorf("read pdf structure: %w", err)
	}
	return nil
}

func openReader(data []byte) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("open pdf: %v", rec)
		}
	}()
	r, err = pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return r, nil
}

// pageText recovers from the reader's panics on malformed content streams.
func pageText(r *pdf.Reader, i int) (txt string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed content stream: %v", rec)
		}
	}()
	p := r.Page(i)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}
