package scene

import (
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokString
	tokNumber
	tokIdent
	tokLBracket
	tokRBracket
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of file"
	case tokString:
		return "string"
	case tokNumber:
		return "number"
	case tokIdent:
		return "identifier"
	case tokLBracket:
		return "'['"
	case tokRBracket:
		return "']'"
	}
	return "unknown"
}

type token struct {
	kind tokenKind
	text string
	num  float64
	line int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of file"
	case tokString:
		return strconv.Quote(t.text)
	default:
		return t.text
	}
}

// tokenizer splits a scene description into tokens. The whole input is held
// in memory.
type tokenizer struct {
	file string
	src  string
	pos  int
	line int

	peeked *token
}

func newTokenizer(file, src string) *tokenizer {
	return &tokenizer{file: file, src: src, line: 1}
}

func (z *tokenizer) errorf(line int, format string, args ...any) error {
	return &SyntaxError{File: z.file, Line: line, Msg: fmt.Sprintf(format, args...)}
}

func (z *tokenizer) peek() (token, error) {
	if z.peeked != nil {
		return *z.peeked, nil
	}
	t, err := z.scan()
	if err != nil {
		return token{}, err
	}
	z.peeked = &t
	return t, nil
}

func (z *tokenizer) next() (token, error) {
	if z.peeked != nil {
		t := *z.peeked
		z.peeked = nil
		return t, nil
	}
	return z.scan()
}

func (z *tokenizer) scan() (token, error) {
	for z.pos < len(z.src) {
		c := z.src[z.pos]
		switch {
		case c == '\n':
			z.line++
			z.pos++
		case c == ' ' || c == '\t' || c == '\r':
			z.pos++
		case c == '#':
			for z.pos < len(z.src) && z.src[z.pos] != '\n' {
				z.pos++
			}
		case c == '[':
			z.pos++
			return token{kind: tokLBracket, text: "[", line: z.line}, nil
		case c == ']':
			z.pos++
			return token{kind: tokRBracket, text: "]", line: z.line}, nil
		case c == '"':
			return z.scanString()
		case isNumberStart(c):
			return z.scanNumber()
		case isIdentStart(c):
			start := z.pos
			for z.pos < len(z.src) && isIdentChar(z.src[z.pos]) {
				z.pos++
			}
			return token{kind: tokIdent, text: z.src[start:z.pos], line: z.line}, nil
		default:
			return token{}, z.errorf(z.line, "unexpected character %q", c)
		}
	}
	return token{kind: tokEOF, line: z.line}, nil
}

func (z *tokenizer) scanString() (token, error) {
	line := z.line
	z.pos++ // opening quote
	var sb strings.Builder
	for {
		if z.pos >= len(z.src) {
			return token{}, z.errorf(line, "premature end of file inside quoted string")
		}
		c := z.src[z.pos]
		z.pos++
		switch c {
		case '"':
			return token{kind: tokString, text: sb.String(), line: line}, nil
		case '\n':
			return token{}, z.errorf(line, "new line found before end of quoted string")
		case '\\':
			if z.pos >= len(z.src) {
				return token{}, z.errorf(line, "premature end of file inside quoted string")
			}
			e := z.src[z.pos]
			z.pos++
			switch e {
			case 'b':
				sb.WriteByte('\b')
			case 'f':
				sb.WriteByte('\f')
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case '\\', '\'', '"':
				sb.WriteByte(e)
			default:
				return token{}, z.errorf(line, "unexpected escaped character %q", e)
			}
		default:
			sb.WriteByte(c)
		}
	}
}

func (z *tokenizer) scanNumber() (token, error) {
	start := z.pos
	for z.pos < len(z.src) && isNumberChar(z.src[z.pos]) {
		z.pos++
	}
	text := z.src[start:z.pos]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, z.errorf(z.line, "invalid number %q", text)
	}
	return token{kind: tokNumber, text: text, num: v, line: z.line}, nil
}

func isNumberStart(c byte) bool {
	return (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.'
}

func isNumberChar(c byte) bool {
	return isNumberStart(c) || c == 'e' || c == 'E'
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
