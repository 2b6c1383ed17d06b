package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const namespace = "http://www.w3.org/2000/svg"

// Document serializes the given roots inside an <svg> element of the given
// outer size.
func Document(width, height float64, roots ...*Element) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="%s" viewBox="0 0 %s %s" width="%s" height="%s">`+"\n",
		namespace, Num(width), Num(height), Num(width), Num(height))
	for _, r := range roots {
		r.write(&buf, 1)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// String renders e and its subtree without the document wrapper.
func (e *Element) String() string {
	var buf bytes.Buffer
	e.write(&buf, 0)
	return buf.String()
}

func (e *Element) write(buf *bytes.Buffer, depth int) {
	indent := strings.Repeat("  ", depth)
	buf.WriteString(indent)
	buf.WriteByte('<')
	buf.WriteString(e.Tag)
	for _, a := range e.attrs {
		fmt.Fprintf(buf, ` %s="%s"`, a.Name, escape(a.Value))
	}
	if len(e.style) > 0 {
		parts := make([]string, len(e.style))
		for i, s := range e.style {
			parts[i] = s.Name + ": " + s.Value
		}
		fmt.Fprintf(buf, ` style="%s"`, escape(strings.Join(parts, "; ")))
	}

	if len(e.children) == 0 && e.Text == "" {
		buf.WriteString("/>\n")
		return
	}
	buf.WriteByte('>')
	if e.Text != "" {
		buf.WriteString(escape(e.Text))
	}
	if len(e.children) > 0 {
		buf.WriteByte('\n')
		for _, c := range e.children {
			c.write(buf, depth+1)
		}
		buf.WriteString(indent)
	}
	fmt.Fprintf(buf, "</%s>\n", e.Tag)
}

func escape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// Num formats a coordinate. Integral values print without a fraction and
// other values are rounded to 4 decimals; NaN prints as "NaN" so that
// malformed input stays visible in the output.
func Num(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	if math.IsInf(v, 0) {
		if v > 0 {
			return "Infinity"
		}
		return "-Infinity"
	}
	r := math.Round(v*1e4) / 1e4
	if r == 0 {
		r = 0 // normalize -0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// Translate formats an SVG translate transform.
func Translate(x, y float64) string {
	return "translate(" + Num(x) + " " + Num(y) + ")"
}
