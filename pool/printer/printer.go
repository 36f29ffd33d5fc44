// Package printer renders pool snapshots for diagnostics: every page, a
// single page with its L2 cache, or the global L1 cache.
package printer

import (
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/objpool/pkg/types"
)

const DefaultIndentSize = 2

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs human-readable text format.
	FormatText Format = "text"

	// FormatJSON outputs JSON format.
	FormatJSON Format = "json"
)

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// IndentSize is the number of spaces per indent level (text format only).
	// Default: 2
	IndentSize int

	// ShowFreeSlots includes populated slots that are currently free.
	// Default: true
	ShowFreeSlots bool

	// ShowEmptyCache includes empty cache positions.
	// Default: false
	ShowEmptyCache bool

	// Language selects digit grouping for counts in text output.
	// Default: language.English
	Language language.Tag
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:        FormatText,
		IndentSize:    DefaultIndentSize,
		ShowFreeSlots: true,
		Language:      language.English,
	}
}

// Printer handles formatted output of pool snapshots.
type Printer struct {
	opts   Options
	writer io.Writer
	snap   types.PoolSnapshot
	msg    *message.Printer
}

// New creates a Printer over snap.
//
// Example:
//
//	p := printer.New(pool.Snapshot(), os.Stdout, printer.DefaultOptions())
//	p.PrintPool()
func New(snap types.PoolSnapshot, w io.Writer, opts Options) *Printer {
	if opts.IndentSize <= 0 {
		opts.IndentSize = DefaultIndentSize
	}
	return &Printer{
		opts:   opts,
		writer: w,
		snap:   snap,
		msg:    message.NewPrinter(opts.Language),
	}
}

// PrintPool prints every page (slots and L2) followed by the L1 cache.
func (p *Printer) PrintPool() error {
	if p.opts.Format == FormatJSON {
		return p.printJSON(p.snap)
	}
	return p.printPoolText()
}

// PrintPage prints one page's slots and L2 cache.
func (p *Printer) PrintPage(index int) error {
	ps, err := p.page(index)
	if err != nil {
		return err
	}
	if p.opts.Format == FormatJSON {
		return p.printJSON(ps)
	}
	return p.printPageText(ps, 0)
}

// PrintL2 prints one page's L2 cache.
func (p *Printer) PrintL2(index int) error {
	ps, err := p.page(index)
	if err != nil {
		return err
	}
	if p.opts.Format == FormatJSON {
		return p.printJSON(p.cacheEntries(ps.L2))
	}
	return p.printCacheText("L2", ps.L2Policy, ps.L2Cap, ps.L2, 0)
}

// PrintL1 prints the global L1 cache.
func (p *Printer) PrintL1() error {
	if p.opts.Format == FormatJSON {
		return p.printJSON(p.cacheEntries(p.snap.L1))
	}
	return p.printCacheText("L1", p.snap.L1Policy, p.snap.Limits.L1Size, p.snap.L1, 0)
}

func (p *Printer) page(index int) (types.PageSnapshot, error) {
	if index < 0 || index >= len(p.snap.Pages) {
		return types.PageSnapshot{}, fmt.Errorf("page %d does not exist (%d pages)", index, len(p.snap.Pages))
	}
	return p.snap.Pages[index], nil
}

func (p *Printer) cacheEntries(in []types.CacheEntry) []types.CacheEntry {
	if p.opts.ShowEmptyCache {
		return in
	}
	out := make([]types.CacheEntry, 0, len(in))
	for _, e := range in {
		if e.Used {
			out = append(out, e)
		}
	}
	return out
}
