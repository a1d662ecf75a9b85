package scene

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/specialistvlad/pbrtgo/internal/ctxlog"
	"github.com/specialistvlad/pbrtgo/internal/fsutil"
)

// StdinName selects standard input as the scene source.
const StdinName = "-"

// maxIncludeDepth bounds nested Include directives.
const maxIncludeDepth = 32

// Target receives parsed directives in source order. An error returned by
// Apply aborts the parse.
type Target interface {
	Apply(ctx context.Context, d *Directive) error
}

// Parser reads scene descriptions and feeds their directives to a Target.
type Parser struct {
	target Target
	stdin  io.Reader
	open   func(name string) ([]byte, error)
}

// NewParser returns a parser that delivers directives to target and reads
// "-" from stdin.
func NewParser(target Target, stdin io.Reader) *Parser {
	return &Parser{target: target, stdin: stdin, open: os.ReadFile}
}

// ParseFile parses the named scene file, or standard input for "-".
// Included files are resolved against the directory of name.
func (p *Parser) ParseFile(ctx context.Context, name string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing scene description.", "file", name)

	src, err := p.read(name)
	if err != nil {
		return err
	}
	return p.parse(ctx, name, string(src), fsutil.SearchDirectory(name), 0)
}

// ParseString parses src as if it had been read from name.
func (p *Parser) ParseString(ctx context.Context, name, src string) error {
	return p.parse(ctx, name, src, fsutil.SearchDirectory(name), 0)
}

func (p *Parser) read(name string) ([]byte, error) {
	if name == StdinName {
		if p.stdin == nil {
			return nil, fmt.Errorf("no standard input available")
		}
		src, err := io.ReadAll(p.stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read standard input: %w", err)
		}
		return src, nil
	}
	src, err := p.open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	return src, nil
}

func (p *Parser) parse(ctx context.Context, file, src, searchDir string, depth int) error {
	z := newTokenizer(displayName(file), src)
	for {
		tok, err := z.next()
		if err != nil {
			return err
		}
		if tok.kind == tokEOF {
			return nil
		}
		if tok.kind != tokIdent {
			return z.errorf(tok.line, "expected a directive, found %s", tok)
		}
		g, ok := directives[tok.text]
		if !ok {
			return z.errorf(tok.line, "unknown directive %q", tok.text)
		}

		d := &Directive{Name: tok.text, Loc: Loc{File: z.file, Line: tok.line}}
		if err := p.parseArgs(ctx, z, g, d); err != nil {
			return err
		}

		if d.Name == "Include" {
			if err := p.include(ctx, d, searchDir, depth); err != nil {
				return err
			}
			continue
		}
		if err := p.target.Apply(ctx, d); err != nil {
			return err
		}
	}
}

func (p *Parser) include(ctx context.Context, d *Directive, searchDir string, depth int) error {
	if depth+1 > maxIncludeDepth {
		return &SyntaxError{File: d.Loc.File, Line: d.Loc.Line, Msg: "Include nested too deeply"}
	}
	path := fsutil.ResolvePath(searchDir, d.Strings[0])
	ctxlog.At(ctx, d.Loc.File, d.Loc.Line).Debug("Including scene file.", "include", path)
	src, err := p.open(path)
	if err != nil {
		return fmt.Errorf("%s:%d: Include %q: %w", d.Loc.File, d.Loc.Line, d.Strings[0], err)
	}
	return p.parse(ctx, path, string(src), searchDir, depth+1)
}

func (p *Parser) parseArgs(ctx context.Context, z *tokenizer, g grammar, d *Directive) error {
	switch g.shape {
	case argNumbers:
		nums, err := expectNumbers(z, d.Name, g.count)
		if err != nil {
			return err
		}
		d.Numbers = nums
	case argBracketNumbers:
		if _, err := expect(z, tokLBracket, d.Name); err != nil {
			return err
		}
		nums, err := expectNumbers(z, d.Name, g.count)
		if err != nil {
			return err
		}
		if _, err := expect(z, tokRBracket, d.Name); err != nil {
			return err
		}
		d.Numbers = nums
	case argStrings:
		for i := 0; i < g.count; i++ {
			t, err := expect(z, tokString, d.Name)
			if err != nil {
				return err
			}
			d.Strings = append(d.Strings, t.text)
		}
	case argIdent:
		t, err := expect(z, tokIdent, d.Name)
		if err != nil {
			return err
		}
		if !activeTransformArgs[t.text] {
			return z.errorf(t.line, "unknown argument %q to %s", t.text, d.Name)
		}
		d.Strings = []string{t.text}
	case argOneOrTwoStrings:
		t, err := expect(z, tokString, d.Name)
		if err != nil {
			return err
		}
		d.Strings = []string{t.text}
		next, err := z.peek()
		if err != nil {
			return err
		}
		if next.kind == tokString {
			_, _ = z.next()
			d.Strings = append(d.Strings, next.text)
		}
	}

	if g.params {
		params, err := p.parseParams(ctx, z, d)
		if err != nil {
			return err
		}
		d.Params = params
	}
	return nil
}

func (p *Parser) parseParams(ctx context.Context, z *tokenizer, d *Directive) (ParamSet, error) {
	var params ParamSet
	for {
		t, err := z.peek()
		if err != nil {
			return nil, err
		}
		if t.kind != tokString {
			return params, nil
		}
		_, _ = z.next()

		decl, err := parseDeclaration(t.text)
		if err != nil {
			return nil, z.errorf(t.line, "%s: %v", d.Name, err)
		}
		if err := readValues(z, &decl, d.Name); err != nil {
			return nil, err
		}

		logger := ctxlog.At(ctx, z.file, t.line)
		canonical, ok := canonicalType(decl.Type)
		if !ok {
			logger.Error("Unknown parameter type, ignoring parameter.", "directive", d.Name, "type", decl.Type, "param", decl.Name)
			continue
		}
		decl.Type = canonical
		warning, err := decl.check()
		if err != nil {
			logger.Error("Invalid parameter, ignoring.", "directive", d.Name, "error", err)
			continue
		}
		if warning != "" {
			logger.Warn(warning, "directive", d.Name)
		}
		params = append(params, decl)
	}
}

// parseDeclaration splits a "type name" declaration.
func parseDeclaration(s string) (Param, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Param{}, fmt.Errorf("parameter declaration %q must be of the form \"type name\"", s)
	}
	return Param{Type: fields[0], Name: fields[1]}, nil
}

func readValues(z *tokenizer, p *Param, directive string) error {
	t, err := z.next()
	if err != nil {
		return err
	}
	switch t.kind {
	case tokString:
		p.Strings = append(p.Strings, t.text)
		return nil
	case tokNumber:
		p.Floats = append(p.Floats, t.num)
		return nil
	case tokLBracket:
	default:
		return z.errorf(t.line, "%s: expected value for parameter %q, found %s", directive, p.Name, t)
	}

	for {
		v, err := z.next()
		if err != nil {
			return err
		}
		switch v.kind {
		case tokRBracket:
			return nil
		case tokString:
			p.Strings = append(p.Strings, v.text)
		case tokNumber:
			p.Floats = append(p.Floats, v.num)
		default:
			return z.errorf(v.line, "%s: unexpected %s in values of parameter %q", directive, v, p.Name)
		}
	}
}

func expect(z *tokenizer, kind tokenKind, directive string) (token, error) {
	t, err := z.next()
	if err != nil {
		return token{}, err
	}
	if t.kind != kind {
		return token{}, z.errorf(t.line, "%s: expected %s, found %s", directive, kind, t)
	}
	return t, nil
}

func expectNumbers(z *tokenizer, directive string, n int) ([]float64, error) {
	nums := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		t, err := expect(z, tokNumber, directive)
		if err != nil {
			return nil, err
		}
		nums = append(nums, t.num)
	}
	return nums, nil
}

func displayName(file string) string {
	if file == StdinName {
		return "<stdin>"
	}
	return file
}
