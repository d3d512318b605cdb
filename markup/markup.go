// Package markup implements the tagged-block codec used to pass a whole
// catalog through an external translator in a single document.
//
// Encode flattens a nested mapping into HTML-like blocks:
//
//	<div key="greeting">Hello</div><div key="nav"><div key="home">Home</div></div>
//
// Block nesting mirrors mapping nesting and the key attribute carries the
// mapping key, so the structure survives machine translation untouched while
// only the leaf text gets translated. Decode reverses the transform with a
// tokenizer and a stack-based parser.
//
// Decode is only ever fed markup produced by Encode in the same process, so
// unbalanced input is a structural error, not a recoverable condition.
package markup

import (
	"fmt"
	"strings"

	"github.com/openlocale/transcat/catalog"
)

const tagName = "div"

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

// Encode converts a nested mapping into a flat markup document. Keys and
// leaf text are emitted verbatim in insertion order; empty leaves produce
// empty blocks.
func Encode(m *catalog.Mapping) string {
	var b strings.Builder
	encodeMapping(&b, m)
	return b.String()
}

func encodeMapping(b *strings.Builder, m *catalog.Mapping) {
	for _, key := range m.Keys() {
		v, _ := m.Get(key)
		fmt.Fprintf(b, `<%s key="%s">`, tagName, key)
		switch val := v.(type) {
		case *catalog.Mapping:
			encodeMapping(b, val)
		case string:
			b.WriteString(val)
		}
		fmt.Fprintf(b, `</%s>`, tagName)
	}
}

// ---------------------------------------------------------------------------
// Tokenizer
// ---------------------------------------------------------------------------

type tokenKind int

const (
	tokenText tokenKind = iota
	tokenOpen
	tokenClose
)

type token struct {
	kind tokenKind
	// text holds the raw text for tokenText tokens.
	text string
	// key holds the key attribute for tokenOpen tokens.
	key string
}

var openPrefix = "<" + tagName
var closeTag = "</" + tagName + ">"

// tokenize splits a markup document into open-tag, close-tag, and text
// tokens. Any '<' that does not start a recognized tag is treated as text.
func tokenize(doc string) ([]token, error) {
	var tokens []token
	var text strings.Builder

	flush := func() {
		if text.Len() > 0 {
			tokens = append(tokens, token{kind: tokenText, text: text.String()})
			text.Reset()
		}
	}

	for i := 0; i < len(doc); {
		if doc[i] != '<' {
			text.WriteByte(doc[i])
			i++
			continue
		}

		rest := doc[i:]
		if strings.HasPrefix(rest, closeTag) {
			flush()
			tokens = append(tokens, token{kind: tokenClose})
			i += len(closeTag)
			continue
		}

		if strings.HasPrefix(rest, openPrefix) {
			after := rest[len(openPrefix):]
			// Must be followed by whitespace or '>' to count as our tag.
			if len(after) > 0 && (after[0] == ' ' || after[0] == '\t' || after[0] == '\n' || after[0] == '>') {
				end := strings.IndexByte(rest, '>')
				if end < 0 {
					return nil, fmt.Errorf("unterminated opening tag at offset %d", i)
				}
				attrs := rest[len(openPrefix):end]
				key, err := keyAttribute(attrs)
				if err != nil {
					return nil, fmt.Errorf("opening tag at offset %d: %w", i, err)
				}
				flush()
				tokens = append(tokens, token{kind: tokenOpen, key: key})
				i += end + 1
				continue
			}
		}

		text.WriteByte(doc[i])
		i++
	}

	flush()
	return tokens, nil
}

// keyAttribute extracts the key="..." attribute from a tag's attribute
// string. Other attributes are tolerated and ignored.
func keyAttribute(attrs string) (string, error) {
	rest := attrs
	for {
		idx := strings.Index(rest, `key="`)
		if idx < 0 {
			return "", fmt.Errorf("missing key attribute in %q", strings.TrimSpace(attrs))
		}
		// Make sure we matched a whole attribute name, not a suffix like
		// data-key=... or hotkey=....
		if idx > 0 {
			prev := rest[idx-1]
			if prev != ' ' && prev != '\t' && prev != '\n' {
				rest = rest[idx+1:]
				continue
			}
		}
		val := rest[idx+len(`key="`):]
		end := strings.IndexByte(val, '"')
		if end < 0 {
			return "", fmt.Errorf("unterminated key attribute in %q", strings.TrimSpace(attrs))
		}
		return val[:end], nil
	}
}

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

// frame is one open block on the parse stack. A frame starts as a leaf
// candidate accumulating text; it becomes a mapping the moment a nested
// block opens inside it.
type frame struct {
	key     string
	text    strings.Builder
	mapping *catalog.Mapping
}

// Decode parses a markup document back into a nested mapping. Leaf text is
// trimmed of surrounding whitespace. Unbalanced tags and stray top-level
// text produce an error.
func Decode(doc string) (*catalog.Mapping, error) {
	tokens, err := tokenize(doc)
	if err != nil {
		return nil, err
	}

	root := catalog.NewMapping()
	var stack []*frame

	for _, tok := range tokens {
		switch tok.kind {
		case tokenOpen:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.mapping == nil {
					top.mapping = catalog.NewMapping()
				}
			}
			stack = append(stack, &frame{key: tok.key})

		case tokenText:
			if len(stack) == 0 {
				if strings.TrimSpace(tok.text) != "" {
					return nil, fmt.Errorf("text outside of any block: %q", strings.TrimSpace(tok.text))
				}
				continue
			}
			stack[len(stack)-1].text.WriteString(tok.text)

		case tokenClose:
			if len(stack) == 0 {
				return nil, fmt.Errorf("closing tag without matching opening tag")
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			var value any
			if top.mapping != nil {
				value = top.mapping
			} else {
				value = strings.TrimSpace(top.text.String())
			}

			if len(stack) == 0 {
				root.Set(top.key, value)
			} else {
				parent := stack[len(stack)-1]
				if parent.mapping == nil {
					parent.mapping = catalog.NewMapping()
				}
				parent.mapping.Set(top.key, value)
			}
		}
	}

	if len(stack) > 0 {
		return nil, fmt.Errorf("%d unclosed block(s), last key %q", len(stack), stack[len(stack)-1].key)
	}

	return root, nil
}
