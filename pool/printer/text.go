package printer

import (
	"strings"

	"github.com/joshuapare/objpool/pkg/types"
)

func (p *Printer) indent(depth int) string {
	return strings.Repeat(" ", depth*p.opts.IndentSize)
}

func (p *Printer) printPoolText() error {
	s := p.snap
	p.msg.Fprintf(p.writer, "Pool: %d/%d pages, %d in use, capacity %d\n",
		s.PageCount, s.Limits.PageCount, s.Stats.InUse, s.Limits.Capacity())
	for _, ps := range s.Pages {
		p.msg.Fprintf(p.writer, "===== PAGE %d =====\n", ps.Index)
		if err := p.printPageText(ps, 1); err != nil {
			return err
		}
	}
	return p.printCacheText("L1", s.L1Policy, s.Limits.L1Size, s.L1, 0)
}

func (p *Printer) printPageText(ps types.PageSnapshot, depth int) error {
	in := p.indent(depth)
	p.msg.Fprintf(p.writer, "%sPage %d: %d/%d in use, %d/%d types\n",
		in, ps.Index, ps.InUse, ps.Capacity, ps.Diversity, ps.DiversityCap)
	for i, name := range ps.Types {
		p.msg.Fprintf(p.writer, "%s  Type [%02d]: %s\n", in, i, name)
	}

	p.msg.Fprintf(p.writer, "%sSlots:\n", in)
	for _, s := range ps.Slots {
		if !s.Used && !p.opts.ShowFreeSlots {
			continue
		}
		state := "used"
		if !s.Used {
			state = "free"
		}
		p.msg.Fprintf(p.writer, "%s  [%03d] %-4s type=%d hash=%#016x\n",
			in, s.Index, state, s.Tag, s.Hash)
	}
	return p.printCacheText("L2", ps.L2Policy, ps.L2Cap, ps.L2, depth)
}

func (p *Printer) printCacheText(name, policy string, capacity int, entries []types.CacheEntry, depth int) error {
	in := p.indent(depth)
	live := 0
	for _, e := range entries {
		if e.Used {
			live++
		}
	}
	p.msg.Fprintf(p.writer, "%s%s cache (%s): %d/%d entries\n", in, name, policy, live, capacity)
	for _, e := range entries {
		if !e.Used {
			if p.opts.ShowEmptyCache {
				p.msg.Fprintf(p.writer, "%s  [%02d] empty\n", in, e.Position)
			}
			continue
		}
		p.msg.Fprintf(p.writer, "%s  [%02d] hash=%#016x page=%d slot=%d age=%d\n",
			in, e.Position, e.Hash, e.Page, e.Slot, e.Age)
	}
	return nil
}
