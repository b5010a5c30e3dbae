package mtl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
)

// Encode writes root back as MTL text. Keys are sorted, so the output is
// stable, and parsing it yields a tree equal to root.
func Encode(w io.Writer, root Group) error {
	bw := bufio.NewWriter(w)
	if err := encodeGroup(bw, root, 0); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(bw, directiveEnd); err != nil {
		return err
	}
	return bw.Flush()
}

func encodeGroup(w *bufio.Writer, g Group, depth int) error {
	indent := strings.Repeat("  ", depth)
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch n := g[k].(type) {
		case Group:
			if _, err := fmt.Fprintf(w, "%s%s = %s\n", indent, directiveGroup, k); err != nil {
				return err
			}
			if err := encodeGroup(w, n, depth+1); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "%s%s = %s\n", indent, directiveEndGroup, k); err != nil {
				return err
			}
		case Value:
			if _, err := fmt.Fprintf(w, "%s%s = %s\n", indent, k, literal(n)); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported node %T at %s", n, k)
		}
	}
	return nil
}

// literal renders v so that Coerce gives it back with the same kind.
func literal(v Value) string {
	switch v.Kind {
	case Text:
		b, _ := json.Marshal(v.s)
		return string(b)
	case Float:
		s := v.String()
		if !math.IsNaN(v.f) && !math.IsInf(v.f, 0) && !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	default:
		return v.String()
	}
}
