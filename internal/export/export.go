// Package export bundles rendered invoices into a single zip archive.
package export

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/varun160398/auto-invoice-portal/internal/invoice"
	"github.com/varun160398/auto-invoice-portal/internal/models"
)

// ArchiveName is the download name of a full export.
const ArchiveName = "All_Invoices.zip"

// Renderer renders one invoice.
type Renderer interface {
	Render(rec models.ExpertRecord, sig []byte, period models.Period) (*invoice.Result, error)
}

// SignatureLookup returns the signature image for an expert, or nil when
// none is stored.
type SignatureLookup func(ctx context.Context, name string) ([]byte, error)

// ProgressFunc is called after each invoice is rendered.
type ProgressFunc func(done, total int)

// ExportError aborts an export. No archive is produced.
type ExportError struct {
	Expert string
	Err    error
}

func (e *ExportError) Error() string {
	if e.Expert == "" {
		return fmt.Sprintf("export failed: %v", e.Err)
	}
	return fmt.Sprintf("export failed at %q: %v", e.Expert, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// Entry describes one file in the archive.
type Entry struct {
	Name       string                   `json:"name"`
	Expert     string                   `json:"expert"`
	Size       int                      `json:"size"`
	Signature  invoice.SignatureOutcome `json:"signature"`
	Diagnostic string                   `json:"diagnostic,omitempty"`
}

// Archive is a finished export.
type Archive struct {
	Data    []byte
	Entries []Entry
}

// Options configures an Exporter.
type Options struct {
	// Workers bounds concurrent renders. Values below 1 mean 1.
	Workers int
	// Modified is stamped on every entry. Zero means export time.
	Modified time.Time
}

type Exporter struct {
	renderer Renderer
	opts     Options
	logger   zerolog.Logger
}

func NewExporter(renderer Renderer, opts Options, logger zerolog.Logger) *Exporter {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Exporter{
		renderer: renderer,
		opts:     opts,
		logger:   logger.With().Str("component", "export").Logger(),
	}
}

type rendered struct {
	expert string
	name   string
	result *invoice.Result
	sigErr error
}

// ExportAll renders every record with a non-empty name and zips the PDFs in
// input order. Any render failure aborts the whole export with an
// *ExportError. A failed signature lookup only drops that signature.
func (e *Exporter) ExportAll(ctx context.Context, records []models.ExpertRecord, period models.Period, lookup SignatureLookup, progress ProgressFunc) (*Archive, error) {
	var todo []models.ExpertRecord
	for _, rec := range records {
		if strings.TrimSpace(rec.ExpertName) != "" {
			todo = append(todo, rec)
		}
	}

	results := make([]rendered, len(todo))
	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i := range todo {
		rec := todo[i]
		name := strings.TrimSpace(rec.ExpertName)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return &ExportError{Err: err}
			}

			var sig []byte
			var sigErr error
			if lookup != nil {
				sig, sigErr = lookup(gctx, name)
				if sigErr != nil {
					sig = nil
					e.logger.Warn().Err(sigErr).Str("expert", name).Msg("signature lookup failed")
				}
			}

			res, err := e.renderer.Render(rec, sig, period)
			if err != nil {
				return &ExportError{Expert: name, Err: err}
			}
			results[i] = rendered{expert: name, name: InvoiceFilename(rec), result: res, sigErr: sigErr}

			if progress != nil {
				mu.Lock()
				done++
				progress(done, len(todo))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.logger.Error().Err(err).Msg("export aborted")
		return nil, err
	}

	archive, err := e.write(results)
	if err != nil {
		return nil, &ExportError{Err: err}
	}

	e.logger.Info().
		Int("invoices", len(archive.Entries)).
		Int("skipped", len(records)-len(todo)).
		Int("bytes", len(archive.Data)).
		Msg("export finished")
	return archive, nil
}

func (e *Exporter) write(results []rendered) (*Archive, error) {
	modified := e.opts.Modified
	if modified.IsZero() {
		modified = time.Now()
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entries := make([]Entry, 0, len(results))
	used := make(map[string]int, len(results))

	for _, r := range results {
		name := uniqueName(r.name, used)
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return nil, fmt.Errorf("add %s: %w", name, err)
		}
		if _, err := w.Write(r.result.PDF); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}

		entry := Entry{
			Name:      name,
			Expert:    r.expert,
			Size:      len(r.result.PDF),
			Signature: r.result.Signature,
		}
		switch {
		case r.result.Diagnostic != nil:
			entry.Diagnostic = r.result.Diagnostic.Error()
		case r.sigErr != nil:
			entry.Diagnostic = r.sigErr.Error()
		}
		entries = append(entries, entry)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return &Archive{Data: buf.Bytes(), Entries: entries}, nil
}

// uniqueName appends -2, -3, ... before the extension for repeated names.
func uniqueName(name string, used map[string]int) string {
	used[name]++
	n := used[name]
	if n == 1 {
		return name
	}
	ext := path.Ext(name)
	candidate := fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), n, ext)
	if _, taken := used[candidate]; taken {
		return uniqueName(candidate, used)
	}
	used[candidate] = 1
	return candidate
}
