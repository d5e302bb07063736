package pdfparse

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ledongthuc/pdf"

	"github.com/sgpropdata/docpipe/internal/core/domain"
)

// Parser extracts plain text from PDF files. Failures are reported through
// the result, not the error: a document that cannot be opened or read yields
// Success=false and an error message, so the caller's retry policy can treat
// parse failures and infrastructure faults the same way.
type Parser struct {
	log *slog.Logger
}

func NewParser(log *slog.Logger) *Parser {
	return &Parser{log: log}
}

func (p *Parser) Parse(ctx context.Context, path string) (result domain.ParseResult, err error) {
	// The pdf package panics on some malformed files. Fold those into a
	// failed result so the retry loop stays in control.
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("pdf parsing panicked", "path", path, "panic", r)
			result = domain.ParseResult{Success: false, Error: fmt.Sprintf("pdf parsing panicked: %v", r)}
			err = nil
		}
	}()

	if err := ctx.Err(); err != nil {
		return domain.ParseResult{}, err
	}

	f, reader, openErr := pdf.Open(path)
	if openErr != nil {
		return domain.ParseResult{Success: false, Error: fmt.Sprintf("open pdf: %v", openErr)}, nil
	}
	defer f.Close()

	textReader, readErr := reader.GetPlainText()
	if readErr != nil {
		return domain.ParseResult{Success: false, Error: fmt.Sprintf("extract text: %v", readErr)}, nil
	}

	var buf bytes.Buffer
	if _, copyErr := io.Copy(&buf, textReader); copyErr != nil {
		return domain.ParseResult{Success: false, Error: fmt.Sprintf("read text: %v", copyErr)}, nil
	}

	text := buf.String()
	p.log.Info("parsed pdf", "path", path, "pages", reader.NumPage(), "text_length", len(text))

	return domain.ParseResult{
		Success:       true,
		FullText:      text,
		TotalElements: reader.NumPage(),
		TextLength:    len(text),
	}, nil
}
