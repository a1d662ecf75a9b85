package scene

import (
	"io"
	"strconv"
	"strings"
)

// Formatter reprints directives in canonical form. Blocks opened by
// AttributeBegin, TransformBegin and ObjectBegin indent their contents by
// four spaces.
type Formatter struct {
	w      io.Writer
	indent int
}

// NewFormatter returns a Formatter writing to w.
func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

// Write prints d.
func (f *Formatter) Write(d *Directive) error {
	switch d.Name {
	case "AttributeEnd", "TransformEnd", "ObjectEnd":
		f.indent = max(0, f.indent-4)
	}

	var sb strings.Builder
	switch d.Name {
	case "WorldBegin":
		sb.WriteString("\n\nWorldBegin\n\n")
	default:
		sb.WriteString(strings.Repeat(" ", f.indent))
		sb.WriteString(FormatDirective(d, f.indent))
		sb.WriteByte('\n')
	}

	switch d.Name {
	case "AttributeBegin", "TransformBegin", "ObjectBegin":
		f.indent += 4
	}

	_, err := io.WriteString(f.w, sb.String())
	return err
}

// FormatDirective renders d on one logical line. Parameters continue on
// following lines indented past indent.
func FormatDirective(d *Directive, indent int) string {
	var sb strings.Builder
	sb.WriteString(d.Name)

	switch directives[d.Name].shape {
	case argBracketNumbers:
		sb.WriteString(" [")
		for _, n := range d.Numbers {
			sb.WriteByte(' ')
			sb.WriteString(FormatNumber(n))
		}
		sb.WriteString(" ]")
	case argIdent:
		for _, s := range d.Strings {
			sb.WriteByte(' ')
			sb.WriteString(s)
		}
	default:
		for _, s := range d.Strings {
			sb.WriteByte(' ')
			sb.WriteString(Quote(s))
		}
		for _, n := range d.Numbers {
			sb.WriteByte(' ')
			sb.WriteString(FormatNumber(n))
		}
	}

	sb.WriteString(FormatParams(d.Params, indent+4))
	return sb.String()
}

// FormatParams renders each parameter on its own line indented by indent.
func FormatParams(ps ParamSet, indent int) string {
	var sb strings.Builder
	pad := strings.Repeat(" ", indent)
	for _, p := range ps {
		sb.WriteByte('\n')
		sb.WriteString(pad)
		sb.WriteString(Quote(p.Type + " " + p.Name))
		sb.WriteString(" [")
		for _, v := range p.Floats {
			sb.WriteByte(' ')
			sb.WriteString(FormatNumber(v))
		}
		for _, v := range p.Strings {
			sb.WriteByte(' ')
			sb.WriteString(Quote(v))
		}
		for _, v := range p.Bools {
			sb.WriteByte(' ')
			sb.WriteString(Quote(strconv.FormatBool(v)))
		}
		sb.WriteString(" ]")
	}
	return sb.String()
}

// FormatNumber prints v with the fewest digits that round-trip.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

var quoteReplacer = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\t", `\t`,
	"\r", `\r`,
	"\b", `\b`,
	"\f", `\f`,
)

// Quote returns s as a scene string literal.
func Quote(s string) string {
	return `"` + quoteReplacer.Replace(s) + `"`
}
