package artifact

import (
	"errors"
	"strings"
)

// ErrMalformedFrontMatter indicates a document opened a `---` header but never closed it.
var ErrMalformedFrontMatter = errors.New("artifact: malformed frontmatter")

const fence = "---"

type parseState int

const (
	stateBeforeHeader parseState = iota
	stateInHeader
	stateAfterHeader
)

// Field is one `key: value` entry of a header.
type Field struct {
	Key   string
	Value string
}

type headerLine struct {
	raw   string
	key   string
	value string
	isKV  bool
}

// Header is an ordered key/value block. Lines that are not `key: value` pairs
// are carried through untouched so rendering an unmodified header is lossless.
type Header struct {
	lines []headerLine
}

// NewHeader builds a header from fields in order.
func NewHeader(fields ...Field) Header {
	var h Header
	for _, f := range fields {
		h.Set(f.Key, f.Value)
	}
	return h
}

// Get returns the value for key. Duplicate keys resolve to the last occurrence.
func (h Header) Get(key string) (string, bool) {
	for i := len(h.lines) - 1; i >= 0; i-- {
		if h.lines[i].isKV && h.lines[i].key == key {
			return h.lines[i].value, true
		}
	}
	return "", false
}

// Value returns the value for key or "".
func (h Header) Value(key string) string {
	v, _ := h.Get(key)
	return v
}

// Set replaces key in place when present, otherwise appends it before the
// closing fence.
func (h *Header) Set(key, value string) {
	key = strings.TrimSpace(key)
	for i := len(h.lines) - 1; i >= 0; i-- {
		line := &h.lines[i]
		if line.isKV && line.key == key {
			line.value = value
			line.raw = key + ": " + value + lineEnding(line.raw)
			return
		}
	}
	h.lines = append(h.lines, headerLine{raw: key + ": " + value + "\n", key: key, value: value, isKV: true})
}

// Fields lists the key/value pairs in document order.
func (h Header) Fields() []Field {
	out := make([]Field, 0, len(h.lines))
	for _, line := range h.lines {
		if line.isKV {
			out = append(out, Field{Key: line.key, Value: line.value})
		}
	}
	return out
}

// Len reports how many key/value pairs the header holds.
func (h Header) Len() int {
	n := 0
	for _, line := range h.lines {
		if line.isKV {
			n++
		}
	}
	return n
}

// Document is a text record split into its header and body.
type Document struct {
	Header    Header
	Body      string
	HasHeader bool

	open  string
	close string
}

// Parse splits text into header and body. The header must start on the first
// line; it closes at the first later `---` line and never reopens, so fences in
// the body stay body text. An unterminated header degrades to a header-less
// document holding the whole text.
func Parse(text string) Document {
	doc, err := ParseStrict(text)
	if err != nil {
		return Document{Body: text}
	}
	return doc
}

// ParseStrict is Parse but reports an unterminated header as ErrMalformedFrontMatter.
func ParseStrict(text string) (Document, error) {
	var (
		doc    Document
		state  = stateBeforeHeader
		offset int
	)
	for _, raw := range strings.SplitAfter(text, "\n") {
		if raw == "" || state == stateAfterHeader {
			break
		}
		switch state {
		case stateBeforeHeader:
			if !isFence(raw) {
				return Document{Body: text}, nil
			}
			doc.open = raw
			state = stateInHeader
		case stateInHeader:
			if isFence(raw) {
				doc.close = raw
				state = stateAfterHeader
			} else {
				doc.Header.lines = append(doc.Header.lines, parseHeaderLine(raw))
			}
		}
		offset += len(raw)
	}
	switch state {
	case stateAfterHeader:
		doc.Body = text[offset:]
		doc.HasHeader = true
		return doc, nil
	case stateInHeader:
		return Document{Body: text}, ErrMalformedFrontMatter
	default:
		return Document{Body: text}, nil
	}
}

// Render rebuilds the document text. A document that had no header gets one
// synthesized when its header carries any fields.
func (d Document) Render() string {
	if !d.HasHeader && d.Header.Len() == 0 {
		return d.Body
	}
	openFence, closeFence := d.open, d.close
	if openFence == "" {
		openFence = fence + "\n"
	}
	if closeFence == "" {
		closeFence = fence + "\n"
	}
	var b strings.Builder
	b.WriteString(openFence)
	for _, line := range d.Header.lines {
		b.WriteString(line.raw)
		if !strings.HasSuffix(line.raw, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString(closeFence)
	if !strings.HasSuffix(closeFence, "\n") && d.Body != "" {
		b.WriteString("\n")
	}
	b.WriteString(d.Body)
	return b.String()
}

// Render builds a document from a header and body.
func Render(h Header, body string) string {
	return Document{Header: h, Body: body, HasHeader: true}.Render()
}

func isFence(raw string) bool {
	return strings.TrimRight(raw, "\r\n") == fence
}

func parseHeaderLine(raw string) headerLine {
	trimmed := strings.TrimRight(raw, "\r\n")
	key, value, ok := strings.Cut(trimmed, ":")
	key = strings.TrimSpace(key)
	if !ok || key == "" || strings.HasPrefix(key, "#") {
		return headerLine{raw: raw}
	}
	return headerLine{raw: raw, key: key, value: strings.TrimSpace(value), isKV: true}
}

func lineEnding(raw string) string {
	if strings.HasSuffix(raw, "\r\n") {
		return "\r\n"
	}
	return "\n"
}
