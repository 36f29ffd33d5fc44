package printer

import (
	"encoding/json"
	"fmt"
	"strings"
)

func (p *Printer) printJSON(v any) error {
	enc := json.NewEncoder(p.writer)
	enc.SetIndent("", strings.Repeat(" ", p.opts.IndentSize))
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
