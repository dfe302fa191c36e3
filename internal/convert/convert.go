// Package convert turns a DOCX document into a plain-text / Markdown file.
package convert

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"syscall"

	"github.com/dgallion1/docmd/internal/doctree"
	"github.com/dgallion1/docmd/internal/parser"
	"github.com/dgallion1/docmd/internal/render"
	"github.com/zeebo/blake3"
)

// Options names the input document and the output file.
type Options struct {
	InputPath  string
	OutputPath string
}

// Result describes a finished conversion.
type Result struct {
	Missing     bool   // Input did not exist; nothing was written
	Paragraphs  int    // Non-empty paragraphs written
	Tables      int    // Tables written, including zero-row tables
	EmptyTables int    // Tables with no rows
	RaggedRows  int    // Body rows whose cell count differs from the header
	Bytes       int64  // Output size
	Digest      string // Hex BLAKE3-256 of the output
}

// Converter runs conversions. The notice writer receives the human-readable
// message for a missing input file.
type Converter struct {
	parser *parser.DOCXParser
	log    *slog.Logger
	notice io.Writer
}

func New(log *slog.Logger, notice io.Writer) *Converter {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if notice == nil {
		notice = os.Stdout
	}
	return &Converter{
		parser: &parser.DOCXParser{},
		log:    log,
		notice: notice,
	}
}

// Convert reads opts.InputPath and writes its text rendering to
// opts.OutputPath, truncating any existing file.
//
// A missing input is not an error: the notice is printed, no output file is
// created, and the result has Missing set. Parse and I/O failures are
// returned; an output file may then hold a partial rendering.
func (c *Converter) Convert(opts Options) (res Result, err error) {
	if _, err := os.Stat(opts.InputPath); missing(err) {
		fmt.Fprintf(c.notice, "File not found: %s\n", opts.InputPath)
		return Result{Missing: true}, nil
	}

	doc, err := c.parser.ParseFile(opts.InputPath)
	if err != nil {
		return res, err
	}

	f, err := os.Create(opts.OutputPath)
	if err != nil {
		return res, fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	res, err = c.ConvertDocument(doc, bw)
	if err != nil {
		return res, fmt.Errorf("write %s: %w", opts.OutputPath, err)
	}
	if err := bw.Flush(); err != nil {
		return res, fmt.Errorf("write %s: %w", opts.OutputPath, err)
	}

	c.log.Debug("conversion finished",
		"input", opts.InputPath,
		"output", opts.OutputPath,
		"bytes", res.Bytes,
	)
	return res, nil
}

// ConvertDocument renders an already parsed document to w.
func (c *Converter) ConvertDocument(doc *doctree.Document, w io.Writer) (Result, error) {
	h := blake3.New()
	cw := &countingWriter{w: io.MultiWriter(w, h)}
	rw := render.New(cw)

	if err := rw.Document(doc); err != nil {
		return resultFrom(rw.Stats(), cw.n, ""), err
	}
	if n := doc.Count(doctree.KindOther); n > 0 {
		c.log.Debug("skipped body elements", "title", doc.Title, "count", n)
	}

	return resultFrom(rw.Stats(), cw.n, hex.EncodeToString(h.Sum(nil))), nil
}

// missing reports whether a stat error means nothing exists at the path.
// A path through a regular file (ENOTDIR) counts as missing.
func missing(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

func resultFrom(s render.Stats, n int64, digest string) Result {
	return Result{
		Paragraphs:  s.Paragraphs,
		Tables:      s.Tables,
		EmptyTables: s.EmptyTables,
		RaggedRows:  s.RaggedRows,
		Bytes:       n,
		Digest:      digest,
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
