// Package lexer tokenizes the ECMAScript subset used by QML bindings.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/deepnoodle-ai/qmlc/internal/token"
)

// Lexer converts script source text into tokens.
type Lexer struct {
	input     string
	position  int // current character offset
	next      int // next character offset
	ch        rune
	line      int
	lineStart int
	filename  string
	// base offsets positions of the whole script within its document
	baseLine   int
	baseColumn int
}

// Option configures a Lexer.
type Option func(*Lexer)

// WithFilename sets the file name reported in token positions.
func WithFilename(filename string) Option {
	return func(l *Lexer) {
		l.filename = filename
	}
}

// WithOffset shifts reported positions so they are relative to the document
// the script was extracted from. Line and column are 0-indexed.
func WithOffset(line, column int) Option {
	return func(l *Lexer) {
		l.baseLine = line
		l.baseColumn = column
	}
}

// New returns a Lexer for the given input.
func New(input string, options ...Option) *Lexer {
	l := &Lexer{input: input}
	for _, opt := range options {
		opt(l)
	}
	l.readChar()
	return l
}

// SetFilename sets the file name reported in token positions.
func (l *Lexer) SetFilename(filename string) {
	l.filename = filename
}

// Filename returns the file name reported in token positions.
func (l *Lexer) Filename() string {
	return l.filename
}

// Next returns the next token from the input. At the end of input an EOF
// token is returned indefinitely.
func (l *Lexer) Next() (token.Token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return l.newToken(token.ILLEGAL, "", l.pos()), err
	}
	start := l.pos()
	ch := l.ch
	switch {
	case ch == 0:
		return l.newToken(token.EOF, "", start), nil
	case isIdentStart(ch):
		ident := l.readIdentifier()
		return l.newToken(token.LookupIdentifier(ident), ident, start), nil
	case isDigit(ch) || (ch == '.' && isDigit(l.peekChar())):
		return l.readNumber(start)
	case ch == '"' || ch == '\'':
		return l.readString(start, ch)
	}
	var tok token.Token
	switch ch {
	case '=':
		tok = l.operator(start, token.ASSIGN, "=", token.EQ, "==", token.STRICT_EQ, "===")
	case '!':
		tok = l.operator(start, token.BANG, "!", token.NOT_EQ, "!=", token.STRICT_NE, "!==")
	case '<':
		tok = l.twoChar(start, token.LT, '=', token.LT_EQUALS)
	case '>':
		tok = l.twoChar(start, token.GT, '=', token.GT_EQUALS)
	case '&':
		tok = l.twoChar(start, token.BITAND, '&', token.AND)
	case '|':
		tok = l.twoChar(start, token.BITOR, '|', token.OR)
	default:
		single, ok := singleCharTokens[ch]
		if !ok {
			l.readChar()
			return l.newToken(token.ILLEGAL, string(ch), start),
				fmt.Errorf("syntax error: unexpected character %q", ch)
		}
		l.readChar()
		tok = l.newToken(single, string(ch), start)
	}
	return tok, nil
}

// GetLineText returns the text of the line containing the given token.
func (l *Lexer) GetLineText(tok token.Token) string {
	start := tok.StartPosition.LineStart
	if start > len(l.input) {
		return ""
	}
	end := strings.IndexByte(l.input[start:], '\n')
	if end < 0 {
		return l.input[start:]
	}
	return l.input[start : start+end]
}

var singleCharTokens = map[rune]token.Type{
	'*': token.ASTERISK,
	':': token.COLON,
	',': token.COMMA,
	'{': token.LBRACE,
	'[': token.LBRACKET,
	'(': token.LPAREN,
	'-': token.MINUS,
	'%': token.MOD,
	'.': token.PERIOD,
	'+': token.PLUS,
	'?': token.QUESTION,
	'}': token.RBRACE,
	']': token.RBRACKET,
	')': token.RPAREN,
	';': token.SEMICOLON,
	'/': token.SLASH,
}

func (l *Lexer) operator(start token.Position, one token.Type, oneLit string, two token.Type, twoLit string, three token.Type, threeLit string) token.Token {
	l.readChar()
	if l.ch != '=' {
		return l.newToken(one, oneLit, start)
	}
	l.readChar()
	if l.ch != '=' {
		return l.newToken(two, twoLit, start)
	}
	l.readChar()
	return l.newToken(three, threeLit, start)
}

func (l *Lexer) twoChar(start token.Position, one token.Type, second rune, two token.Type) token.Token {
	first := l.ch
	l.readChar()
	if l.ch == second {
		l.readChar()
		return l.newToken(two, string([]rune{first, second}), start)
	}
	return l.newToken(one, string(first), start)
}

func (l *Lexer) readChar() {
	if l.next >= len(l.input) {
		l.position = len(l.input)
		l.ch = 0
		return
	}
	r, width := utf8.DecodeRuneInString(l.input[l.next:])
	l.position = l.next
	l.next += width
	l.ch = r
}

func (l *Lexer) advance() {
	if l.ch == '\n' {
		l.line++
		l.lineStart = l.next
	}
	l.readChar()
}

func (l *Lexer) peekChar() rune {
	if l.next >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.next:])
	return r
}

func (l *Lexer) pos() token.Position {
	column := l.position - l.lineStart
	if l.line == 0 {
		column += l.baseColumn
	}
	return token.Position{
		Char:      l.position,
		LineStart: l.lineStart,
		Line:      l.line + l.baseLine,
		Column:    column,
		File:      l.filename,
	}
}

func (l *Lexer) newToken(typ token.Type, literal string, start token.Position) token.Token {
	return token.Token{
		Type:          typ,
		Literal:       literal,
		StartPosition: start,
		EndPosition:   l.pos(),
	}
}

func (l *Lexer) skipWhitespaceAndComments() error {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n':
			l.advance()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			l.readChar()
			l.readChar()
			for !(l.ch == '*' && l.peekChar() == '/') {
				if l.ch == 0 {
					return fmt.Errorf("syntax error: unterminated comment")
				}
				l.advance()
			}
			l.readChar()
			l.readChar()
		default:
			return nil
		}
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isIdentStart(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readNumber(start token.Position) (token.Token, error) {
	begin := l.position
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) {
			l.readChar()
		}
		return l.newToken(token.INT, l.input[begin:l.position], start), nil
	}
	isFloat := false
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		isFloat = true
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		if !isDigit(l.ch) {
			return l.newToken(token.ILLEGAL, l.input[begin:l.position], start),
				fmt.Errorf("syntax error: invalid exponent in %q", l.input[begin:l.position])
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if isIdentStart(l.ch) {
		return l.newToken(token.ILLEGAL, l.input[begin:l.position], start),
			fmt.Errorf("syntax error: invalid number %q", l.input[begin:l.position+1])
	}
	if isFloat {
		return l.newToken(token.FLOAT, l.input[begin:l.position], start), nil
	}
	return l.newToken(token.INT, l.input[begin:l.position], start), nil
}

func (l *Lexer) readString(start token.Position, quote rune) (token.Token, error) {
	var sb strings.Builder
	l.readChar()
	for l.ch != quote {
		switch l.ch {
		case 0, '\n':
			return l.newToken(token.ILLEGAL, sb.String(), start),
				fmt.Errorf("syntax error: unterminated string literal")
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case 'r':
				sb.WriteRune('\r')
			case 'b':
				sb.WriteRune('\b')
			case 'f':
				sb.WriteRune('\f')
			case '0':
				sb.WriteRune(0)
			case 'u':
				r, err := l.readUnicodeEscape()
				if err != nil {
					return l.newToken(token.ILLEGAL, sb.String(), start), err
				}
				sb.WriteRune(r)
			case 0:
				return l.newToken(token.ILLEGAL, sb.String(), start),
					fmt.Errorf("syntax error: unterminated string literal")
			default:
				sb.WriteRune(l.ch)
			}
		default:
			sb.WriteRune(l.ch)
		}
		l.readChar()
	}
	l.readChar()
	return l.newToken(token.STRING, sb.String(), start), nil
}

func (l *Lexer) readUnicodeEscape() (rune, error) {
	var r rune
	for i := 0; i < 4; i++ {
		l.readChar()
		d, ok := hexValue(l.ch)
		if !ok {
			return 0, fmt.Errorf("syntax error: invalid unicode escape")
		}
		r = r<<4 | d
	}
	return r, nil
}

func isIdentStart(ch rune) bool {
	return ch == '_' || ch == '$' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch rune) bool {
	_, ok := hexValue(ch)
	return ok
}

func hexValue(ch rune) (rune, bool) {
	switch {
	case '0' <= ch && ch <= '9':
		return ch - '0', true
	case 'a' <= ch && ch <= 'f':
		return ch - 'a' + 10, true
	case 'A' <= ch && ch <= 'F':
		return ch - 'A' + 10, true
	}
	return 0, false
}
