package dnet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrParseUnavailable is returned when the input path cannot be read
var ErrParseUnavailable = errors.New("protocol file unavailable")

// Parser converts protocol definition text into File records
type Parser struct {
	dialects Dialect
	rules    []rule
}

// NewParser creates a parser for the given dialects. DialectUnknown enables all.
func NewParser(dialects Dialect) *Parser {
	if dialects == DialectUnknown {
		dialects = DialectAll
	}
	return &Parser{
		dialects: dialects,
		rules:    rulesFor(dialects),
	}
}

// Dialects returns the enabled dialect set
func (p *Parser) Dialects() Dialect {
	return p.dialects
}

// ParseFile reads and parses the file at path. root, when non-empty, is used
// to compute the relative path; otherwise the base name is used.
func (p *Parser) ParseFile(path, root string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseUnavailable, err)
	}

	file := p.ParseString(string(content))
	file.Path = path
	file.FileName = filepath.Base(path)
	file.RelativePath = relativePath(path, root)
	return file, nil
}

// ParseReader parses everything readable from r
func (p *Parser) ParseReader(r io.Reader) (*File, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}
	return p.ParseString(string(content)), nil
}

// ParseString parses in-memory content. It never fails.
func (p *Parser) ParseString(content string) *File {
	st := &scanState{file: &File{}}

	content = strings.TrimPrefix(content, "\ufeff")
	for _, raw := range strings.Split(content, "\n") {
		raw = strings.TrimRight(raw, "\r")
		p.scanLine(st, line{raw: raw, text: strings.TrimSpace(raw)})
	}

	return st.file
}

func (p *Parser) scanLine(st *scanState, ln line) {
	if st.inList && ln.text != "" && !strings.HasPrefix(ln.raw, listMemberIndent) {
		st.inList = false
	}

	for i := range p.rules {
		r := &p.rules[i]
		groups, ok := r.match(st, ln)
		if !ok {
			continue
		}
		r.apply(st, groups)
		if r.category != categorySkip && r.dialect != DialectAll {
			st.file.Dialect |= r.dialect
		}
		return
	}
}

// scanState is the parser state carried between lines
type scanState struct {
	file      *File
	direction Direction
	message   *Message
	inList    bool
}

func (st *scanState) openMessage(m *Message) {
	switch st.direction {
	case DirectionClientToServer:
		st.file.ClientMessages = append(st.file.ClientMessages, m)
	case DirectionServerToClient:
		st.file.ServerMessages = append(st.file.ServerMessages, m)
	}
	st.message = m
	st.inList = false
}

func relativePath(path, root string) string {
	if root == "" {
		return filepath.Base(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}

var defaultParser = NewParser(DialectAll)

// ParseFile parses a file with every dialect enabled
func ParseFile(path, root string) (*File, error) {
	return defaultParser.ParseFile(path, root)
}

// ParseReader parses a reader with every dialect enabled
func ParseReader(r io.Reader) (*File, error) {
	return defaultParser.ParseReader(r)
}

// ParseString parses content with every dialect enabled
func ParseString(content string) *File {
	return defaultParser.ParseString(content)
}
