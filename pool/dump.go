package pool

import (
	"io"

	"github.com/joshuapare/objpool/pool/printer"
)

// Dump writes every page, its slots and L2 cache, then the L1 cache.
func (p *Pool) Dump(w io.Writer, opts printer.Options) error {
	return printer.New(p.Snapshot(), w, opts).PrintPool()
}

// DumpPage writes page i's slots and L2 cache.
func (p *Pool) DumpPage(w io.Writer, i int, opts printer.Options) error {
	return printer.New(p.Snapshot(), w, opts).PrintPage(i)
}

// DumpL2 writes page i's L2 cache.
func (p *Pool) DumpL2(w io.Writer, i int, opts printer.Options) error {
	return printer.New(p.Snapshot(), w, opts).PrintL2(i)
}

// DumpL1 writes the global L1 cache.
func (p *Pool) DumpL1(w io.Writer, opts printer.Options) error {
	return printer.New(p.Snapshot(), w, opts).PrintL1()
}
