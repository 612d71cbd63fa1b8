// Package lexer turns Tally source text into a sequence of tokens.
package lexer

import (
	"unicode/utf8"

	"github.com/leapstack-labs/tally/pkg/diag"
	"github.com/leapstack-labs/tally/pkg/token"
)

// Lexer tokenizes Tally input.
type Lexer struct {
	src  *token.Source
	pos  token.Position // position of ch
	ch   rune           // current rune under examination
	size int            // byte width of ch, 0 at end of input
}

// New creates a new Lexer for the given source.
func New(src *token.Source) *Lexer {
	l := &Lexer{src: src, pos: src.Start()}
	l.load()
	return l
}

// load decodes the rune at the current position.
func (l *Lexer) load() {
	if l.pos.Offset >= len(l.src.Text) {
		l.ch, l.size = 0, 0
		return
	}
	l.ch, l.size = utf8.DecodeRuneInString(l.src.Text[l.pos.Offset:])
}

// readChar advances to the next rune.
func (l *Lexer) readChar() {
	if l.size == 0 {
		return
	}
	next := l.pos.Advance(l.ch)
	next.Offset = l.pos.Offset + l.size
	l.pos = next
	l.load()
}

func (l *Lexer) atEnd() bool {
	return l.size == 0
}

// NextToken returns the next token, or a LexError for an unrecognized rune.
// At end of input it keeps returning EOF.
func (l *Lexer) NextToken() (token.Token, error) {
	l.skipWhitespace()

	start := l.pos
	if l.atEnd() {
		return token.Token{Kind: token.EOF, Span: token.Span{Start: start, End: start}}, nil
	}

	switch {
	case isDigit(l.ch):
		return l.readNumber(), nil
	case isLetter(l.ch):
		return l.readIdentifier(), nil
	}

	kind, ok := punctuation[l.ch]
	if !ok {
		ch := l.ch
		l.readChar()
		return token.Token{}, diag.Errorf(diag.LexError, token.Span{Start: start, End: l.pos},
			"'%c' is not a valid token (offset %d to %d)", ch, start.Offset, l.pos.Offset)
	}
	l.readChar()
	return token.Token{Kind: kind, Span: token.Span{Start: start, End: l.pos}}, nil
}

var punctuation = map[rune]token.Kind{
	'+': token.PLUS,
	'-': token.MINUS,
	'*': token.STAR,
	'/': token.SLASH,
	'^': token.CARET,
	'=': token.EQ,
	'(': token.LPAREN,
	')': token.RPAREN,
}

// skipWhitespace skips spaces, tabs, carriage returns and newlines.
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// readIdentifier reads an identifier or the reserved word.
func (l *Lexer) readIdentifier() token.Token {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	lit := l.src.Text[start.Offset:l.pos.Offset]
	return token.Token{
		Kind:    token.LookupIdent(lit),
		Literal: lit,
		Span:    token.Span{Start: start, End: l.pos},
	}
}

// readNumber reads an integer or float literal. A second '.' ends the number
// rather than failing: "1.2.3" scans as 1.2 followed by whatever ".3" lexes to.
func (l *Lexer) readNumber() token.Token {
	start := l.pos
	dots := 0
	for isDigit(l.ch) || l.ch == '.' {
		if l.ch == '.' {
			if dots == 1 {
				break
			}
			dots++
		}
		l.readChar()
	}

	span := token.Span{Start: start, End: l.pos}
	lit := l.src.Text[start.Offset:l.pos.Offset]
	if dots == 0 {
		return token.Token{Kind: token.INT, Literal: lit, Span: span}
	}
	return token.Token{Kind: token.FLOAT, Literal: lit, Span: span}
}

// isLetter returns true if ch is an ASCII letter.
func isLetter(ch rune) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

// isDigit returns true if ch is a digit.
func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize returns all tokens from the input, ending with EOF. On the first
// unrecognized character it returns no tokens and the LexError.
func Tokenize(src *token.Source) ([]token.Token, error) {
	l := New(src)
	var tokens []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			return tokens, nil
		}
	}
}
