package parser

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/smasher164/xid"
	"github.com/theory/odatauri/uri/types"
)

// tokenKind identifies a lexical production.
type tokenKind int

const (
	tokOpen           tokenKind = iota // (
	tokClose                           // )
	tokComma                           // ,
	tokSemicolon                       // ;
	tokSlash                           // /
	tokColon                           // :
	tokEqual                           // =
	tokStar                            // *
	tokWS                              // one or more blanks
	tokIdentifier                      // odataIdentifier
	tokQualifiedName                   // two or more dot-separated identifiers
	tokAlias                           // @identifier
	tokSystemName                      // $identifier
	tokNull                            // null
	tokBoolean                         // true or false
	tokString                          // 'text'
	tokInteger                         // signed digits
	tokDecimal                         // signed digits with a fraction
	tokDouble                          // signed digits with an exponent, NaN, INF
	tokGuid                            // 8-4-4-4-12 hex digits
	tokDate                            // yyyy-mm-dd
	tokDateTimeOffset                  // yyyy-mm-ddThh:mm[:ss[.f]]zone
	tokTimeOfDay                       // hh:mm[:ss[.f]]
	tokDuration                        // duration'P…'
	tokBinary                          // binary'…'
	tokGeography                       // geography'…'
	tokGeometry                        // geometry'…'
	tokJSON                            // JSON array or object
	tokSearchWord                      // bare $search term
	tokSearchPhrase                    // double-quoted $search phrase
)

//nolint:gochecknoglobals
var tokenNames = [...]string{
	tokOpen:           `"("`,
	tokClose:          `")"`,
	tokComma:          `","`,
	tokSemicolon:      `";"`,
	tokSlash:          `"/"`,
	tokColon:          `":"`,
	tokEqual:          `"="`,
	tokStar:           `"*"`,
	tokWS:             "whitespace",
	tokIdentifier:     "identifier",
	tokQualifiedName:  "qualified name",
	tokAlias:          "parameter alias",
	tokSystemName:     "system name",
	tokNull:           "null",
	tokBoolean:        "Boolean",
	tokString:         "String",
	tokInteger:        "integer",
	tokDecimal:        "Decimal",
	tokDouble:         "Double",
	tokGuid:           "Guid",
	tokDate:           "Date",
	tokDateTimeOffset: "DateTimeOffset",
	tokTimeOfDay:      "TimeOfDay",
	tokDuration:       "Duration",
	tokBinary:         "Binary",
	tokGeography:      "Geography",
	tokGeometry:       "Geometry",
	tokJSON:           "JSON",
	tokSearchWord:     "search word",
	tokSearchPhrase:   "search phrase",
}

// String describes k for error messages.
func (k tokenKind) String() string {
	if k < 0 || int(k) >= len(tokenNames) {
		return "token"
	}
	return tokenNames[k]
}

// maxIdentifier is the maximum number of characters in an identifier.
const maxIdentifier = 128

// tokenizer lexes one path segment or system query option value. Each
// attempt either matches a production at the current position, advances
// past it, and records its span, or leaves the position untouched. It never
// skips whitespace on its own.
type tokenizer struct {
	src    string
	offset int // offset of src within the text reported in errors
	pos    int
	start  int
}

// newTokenizer creates a tokenizer for src, which starts at offset in the
// text reported in errors.
func newTokenizer(src string, offset int) *tokenizer {
	return &tokenizer{src: src, offset: offset}
}

// attempt tries to match a token of kind at the current position.
func (t *tokenizer) attempt(kind tokenKind) bool {
	start := t.pos
	if t.match(kind) {
		t.start = start
		return true
	}
	t.pos = start
	return false
}

// attemptText matches s exactly.
func (t *tokenizer) attemptText(s string) bool {
	if !strings.HasPrefix(t.src[t.pos:], s) {
		return false
	}
	t.start = t.pos
	t.pos += len(s)
	return true
}

// attemptKeyword matches kw exactly when it is not followed by an
// identifier character.
func (t *tokenizer) attemptKeyword(kw string) bool {
	start := t.pos
	if t.attemptText(kw) && !t.identFollows() {
		return true
	}
	t.pos = start
	return false
}

// text returns the text of the last matched token.
func (t *tokenizer) text() string { return t.src[t.start:t.pos] }

// position returns the current position in the reported text.
func (t *tokenizer) position() int { return t.offset + t.pos }

// tokenPos returns the start of the last matched token in the reported
// text.
func (t *tokenizer) tokenPos() int { return t.offset + t.start }

// done reports whether all input has been consumed.
func (t *tokenizer) done() bool { return t.pos >= len(t.src) }

// peek returns the next byte, or 0 at the end of input.
func (t *tokenizer) peek() byte {
	if t.done() {
		return 0
	}
	return t.src[t.pos]
}

// peekAt returns the byte n positions ahead, or 0 past the end of input.
func (t *tokenizer) peekAt(n int) byte {
	if t.pos+n >= len(t.src) {
		return 0
	}
	return t.src[t.pos+n]
}

// rest returns the unconsumed input.
func (t *tokenizer) rest() string { return t.src[t.pos:] }

// mark returns the current position for a later reset.
func (t *tokenizer) mark() int { return t.pos }

// reset moves back to a position returned by mark.
func (t *tokenizer) reset(pos int) { t.pos = pos }

func (t *tokenizer) match(kind tokenKind) bool {
	start := t.pos
	switch kind {
	case tokOpen:
		return t.char('(')
	case tokClose:
		return t.char(')')
	case tokComma:
		return t.char(',')
	case tokSemicolon:
		return t.char(';')
	case tokSlash:
		return t.char('/')
	case tokColon:
		return t.char(':')
	case tokEqual:
		return t.char('=')
	case tokStar:
		return t.char('*')
	case tokWS:
		return t.blanks()
	case tokIdentifier:
		return t.identifier()
	case tokQualifiedName:
		return t.qualifiedName()
	case tokAlias:
		return t.char('@') && t.identifier()
	case tokSystemName:
		return t.char('$') && t.identifier()
	case tokNull:
		return t.attemptKeyword("null")
	case tokBoolean:
		return t.boolean()
	case tokString:
		return t.quoted()
	case tokInteger:
		return t.integer()
	case tokDecimal:
		return t.integer() && t.char('.') && t.digits(0) > 0 && !t.exponentFollows()
	case tokDouble:
		return t.double()
	case tokGuid:
		return t.guid()
	case tokDate:
		return t.date() && validate(t, start, types.ParseDate)
	case tokDateTimeOffset:
		return t.dateTimeOffset()
	case tokTimeOfDay:
		return t.timeOfDay() && validate(t, start, types.ParseTimeOfDay)
	case tokDuration:
		return prefixed(t, "duration", types.ParseDuration)
	case tokBinary:
		return prefixed(t, "binary", types.ParseBinary)
	case tokGeography:
		return prefixed(t, "geography", types.ParseGeography)
	case tokGeometry:
		return prefixed(t, "geometry", types.ParseGeometry)
	case tokJSON:
		return t.json()
	case tokSearchWord:
		return t.searchWord()
	case tokSearchPhrase:
		return t.searchPhrase()
	default:
		return false
	}
}

// char matches the single byte ch.
func (t *tokenizer) char(ch byte) bool {
	if t.peek() != ch || t.done() {
		return false
	}
	t.pos++
	return true
}

// blanks matches one or more spaces or horizontal tabs.
func (t *tokenizer) blanks() bool {
	start := t.pos
	for !t.done() && isBlank(t.src[t.pos]) {
		t.pos++
	}
	return t.pos > start
}

func isBlank(ch byte) bool { return ch == ' ' || ch == '\t' }

// digits consumes up to maxWidth ASCII digits, or any number when maxWidth
// is zero, and returns the number consumed.
func (t *tokenizer) digits(maxWidth int) int {
	n := 0
	for !t.done() && isDigit(t.src[t.pos]) && (maxWidth == 0 || n < maxWidth) {
		t.pos++
		n++
	}
	return n
}

// digitsExactly consumes exactly n digits.
func (t *tokenizer) digitsExactly(n int) bool {
	return t.digits(n) == n
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

// identifier matches an odataIdentifier: a letter or underscore followed
// by up to 127 letters, digits, underscores and combining marks.
func (t *tokenizer) identifier() bool {
	r, size := utf8.DecodeRuneInString(t.rest())
	if r != '_' && !xid.Start(r) {
		return false
	}
	t.pos += size
	for count := 1; !t.done(); count++ {
		r, size = utf8.DecodeRuneInString(t.rest())
		if !xid.Continue(r) {
			break
		}
		if count == maxIdentifier {
			return false
		}
		t.pos += size
	}
	return true
}

// identFollows reports whether the next character continues an
// identifier.
func (t *tokenizer) identFollows() bool {
	if t.done() {
		return false
	}
	r, _ := utf8.DecodeRuneInString(t.rest())
	return xid.Continue(r)
}

// qualifiedName matches two or more dot-separated identifiers. A trailing
// dot not followed by an identifier is left unconsumed.
func (t *tokenizer) qualifiedName() bool {
	if !t.identifier() {
		return false
	}
	parts := 1
	for t.peek() == '.' {
		save := t.pos
		t.pos++
		if !t.identifier() {
			t.pos = save
			break
		}
		parts++
	}
	return parts > 1
}

// boolean matches true or false in any case.
func (t *tokenizer) boolean() bool {
	for _, kw := range []string{"true", "false"} {
		if len(t.rest()) >= len(kw) && strings.EqualFold(t.rest()[:len(kw)], kw) {
			t.pos += len(kw)
			if !t.identFollows() {
				return true
			}
			t.pos -= len(kw)
		}
	}
	return false
}

// quoted matches a single-quoted string in which a quote is escaped by
// doubling it.
func (t *tokenizer) quoted() bool {
	if !t.char('\'') {
		return false
	}
	for !t.done() {
		if t.src[t.pos] == '\'' {
			if t.peekAt(1) != '\'' {
				t.pos++
				return true
			}
			t.pos++
		}
		t.pos++
	}
	return false
}

// integer matches an optionally signed sequence of digits.
func (t *tokenizer) integer() bool {
	if t.peek() == '-' || t.peek() == '+' {
		t.pos++
	}
	return t.digits(0) > 0
}

func (t *tokenizer) exponentFollows() bool {
	return t.peek() == 'e' || t.peek() == 'E'
}

// double matches a number with an exponent, NaN, INF or -INF.
func (t *tokenizer) double() bool {
	if t.attemptKeyword("NaN") || t.attemptKeyword("INF") || t.attemptKeyword("-INF") {
		return true
	}
	if !t.integer() {
		return false
	}
	if t.char('.') && t.digits(0) == 0 {
		return false
	}
	if !t.exponentFollows() {
		return false
	}
	t.pos++
	if t.peek() == '-' || t.peek() == '+' {
		t.pos++
	}
	return t.digits(0) > 0
}

// guid matches 8-4-4-4-12 hexadecimal digits.
func (t *tokenizer) guid() bool {
	for i, width := range []int{8, 4, 4, 4, 12} {
		if i > 0 && !t.char('-') {
			return false
		}
		for range width {
			if !isHex(t.peek()) {
				return false
			}
			t.pos++
		}
	}
	return !t.identFollows()
}

func isHex(ch byte) bool {
	return isDigit(ch) || ch >= 'a' && ch <= 'f' || ch >= 'A' && ch <= 'F'
}

// date matches the shape of a date: an optionally negative year of four or
// more digits, a month and a day.
func (t *tokenizer) date() bool {
	t.char('-')
	const yearWidth, fieldWidth = 4, 2
	return t.digits(0) >= yearWidth &&
		t.char('-') && t.digitsExactly(fieldWidth) &&
		t.char('-') && t.digitsExactly(fieldWidth)
}

// timeOfDay matches the shape of a time: hours and minutes, optional
// seconds, and an optional fraction of a second.
func (t *tokenizer) timeOfDay() bool {
	const fieldWidth = 2
	if !t.digitsExactly(fieldWidth) || !t.char(':') || !t.digitsExactly(fieldWidth) {
		return false
	}
	save := t.pos
	if !t.char(':') || !t.digitsExactly(fieldWidth) {
		t.pos = save
		return true
	}
	save = t.pos
	if t.char('.') && t.digits(0) == 0 {
		t.pos = save
	}
	return true
}

// dateTimeOffset matches a date, a T, a time, and a Z or numeric offset.
func (t *tokenizer) dateTimeOffset() bool {
	start := t.pos
	if !t.date() || !t.char('T') && !t.char('t') || !t.timeOfDay() {
		return false
	}
	switch t.peek() {
	case 'Z', 'z':
		t.pos++
	case '+', '-':
		const fieldWidth = 2
		t.pos++
		if !t.digitsExactly(fieldWidth) || !t.char(':') || !t.digitsExactly(fieldWidth) {
			return false
		}
	default:
		return false
	}
	return validate(t, start, types.ParseDateTimeOffset)
}

// validate reports whether parse accepts the input from start to the
// current position.
func validate[T any](t *tokenizer, start int, parse func(string) (T, error)) bool {
	_, err := parse(t.src[start:t.pos])
	return err == nil
}

// prefixed matches a literal of the form prefix'body', with the prefix in
// any case, when parse accepts the body.
func prefixed[T any](t *tokenizer, prefix string, parse func(string) (T, error)) bool {
	if len(t.rest()) <= len(prefix) || !strings.EqualFold(t.rest()[:len(prefix)], prefix) {
		return false
	}
	t.pos += len(prefix)
	if !t.char('\'') {
		return false
	}
	end := strings.IndexByte(t.rest(), '\'')
	if end < 0 {
		return false
	}
	start := t.pos
	t.pos += end
	if !validate(t, start, parse) {
		return false
	}
	t.pos++
	return true
}

// json matches a JSON array or object. Nesting is tracked outside of JSON
// strings, and the complete value must be valid JSON.
func (t *tokenizer) json() bool {
	start := t.pos
	if t.peek() != '[' && t.peek() != '{' {
		return false
	}
	depth := 0
	for !t.done() {
		switch t.src[t.pos] {
		case '[', '{':
			depth++
		case ']', '}':
			depth--
		case '"':
			if !t.jsonString() {
				return false
			}
			continue
		}
		t.pos++
		if depth == 0 {
			return json.Valid([]byte(t.src[start:t.pos]))
		}
	}
	return false
}

// jsonString consumes a double-quoted JSON string.
func (t *tokenizer) jsonString() bool {
	t.pos++
	for !t.done() {
		switch t.src[t.pos] {
		case '\\':
			t.pos++
		case '"':
			t.pos++
			return true
		}
		t.pos++
	}
	return false
}

// searchWord matches a bare $search term: a run of characters other than
// blanks, parentheses and double quotes that is not an operator keyword.
func (t *tokenizer) searchWord() bool {
	start := t.pos
	for !t.done() {
		ch := t.src[t.pos]
		if isBlank(ch) || ch == '(' || ch == ')' || ch == '"' {
			break
		}
		t.pos++
	}
	switch t.src[start:t.pos] {
	case "", "AND", "OR", "NOT":
		return false
	}
	return true
}

// searchPhrase matches a double-quoted $search phrase. Within it \" and ""
// stand for a quote and \\ for a backslash. A backslash before any other
// character fails the match.
func (t *tokenizer) searchPhrase() bool {
	if !t.char('"') {
		return false
	}
	for !t.done() {
		switch t.src[t.pos] {
		case '\\':
			if !t.escapable(t.pos + 1) {
				return false
			}
			t.pos++
		case '"':
			if t.pos+1 < len(t.src) && t.src[t.pos+1] == '"' {
				t.pos++
				break
			}
			t.pos++
			return true
		}
		t.pos++
	}
	return false
}

// escapable reports whether the byte at i may follow a backslash in a
// search phrase.
func (t *tokenizer) escapable(i int) bool {
	return i < len(t.src) && (t.src[i] == '"' || t.src[i] == '\\')
}
