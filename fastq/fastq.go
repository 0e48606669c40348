// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fastq implements a streaming codec for the four-line FASTQ text
// format, built on the same transform.Stage discipline as the bam and
// bgzf packages.
package fastq

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/biogo/htsflow/transform"
)

// Item is one decoded FASTQ record.
type Item struct {
	Name      string
	Sequence  string
	Comment   string
	Qualities string
}

// String renders item in wire form: "@name\nseq\n+comment\nqual\n".
func (item Item) String() string {
	return fmt.Sprintf("@%s\n%s\n+%s\n%s\n", item.Name, item.Sequence, item.Comment, item.Qualities)
}

var (
	errMissingAt   = errors.New("fastq: missing_@")
	errMissingPlus = errors.New("fastq: missing_+")
)

// Parser is the FASTQ line codec's decode direction (C8): a
// transform.Stage consuming raw bytes and emitting one Item per
// four-line group.
type Parser struct {
	buf    []byte
	lines  []string
	failed bool
}

// NewParser returns an empty Parser.
func NewParser() *Parser { return &Parser{} }

var _ transform.Stage[[]byte, Item] = (*Parser)(nil)

func (p *Parser) Feed(in []byte) { p.buf = append(p.buf, in...) }

func (p *Parser) Next(stopped bool) transform.Result[Item] {
	if p.failed {
		return transform.Result[Item]{Status: transform.EndOfStream}
	}
	p.extractLines(stopped)
	if len(p.lines) < 4 {
		if !stopped {
			return transform.Result[Item]{Status: transform.NotReady}
		}
		if len(p.lines) == 0 {
			return transform.Result[Item]{Status: transform.EndOfStream}
		}
		p.failed = true
		return transform.Result[Item]{Status: transform.Ready, Err: fmt.Errorf("fastq: truncated record: %d trailing line(s)", len(p.lines))}
	}

	l1, l2, l3, l4 := p.lines[0], p.lines[1], p.lines[2], p.lines[3]
	p.lines = p.lines[4:]

	if len(l1) == 0 || l1[0] != '@' {
		p.failed = true
		return transform.Result[Item]{Status: transform.Ready, Err: errMissingAt}
	}
	if len(l3) == 0 || l3[0] != '+' {
		p.failed = true
		return transform.Result[Item]{Status: transform.Ready, Err: errMissingPlus}
	}
	return transform.Result[Item]{Status: transform.Ready, Item: Item{
		Name:      l1[1:],
		Sequence:  l2,
		Comment:   l3[1:],
		Qualities: l4,
	}}
}

// extractLines moves complete lines out of buf and into the pending
// queue. If stopped is true, a final unterminated line is also moved,
// since there will be no more input to complete it.
func (p *Parser) extractLines(stopped bool) {
	for {
		i := bytes.IndexByte(p.buf, '\n')
		if i < 0 {
			break
		}
		p.lines = append(p.lines, string(p.buf[:i]))
		p.buf = p.buf[i+1:]
	}
	if stopped && len(p.buf) > 0 {
		p.lines = append(p.lines, string(p.buf))
		p.buf = nil
	}
}

// Emitter is the FASTQ line codec's encode direction: the inverse of
// Parser.
type Emitter struct {
	pending [][]byte
}

// NewEmitter returns an empty Emitter.
func NewEmitter() *Emitter { return &Emitter{} }

var _ transform.Stage[Item, []byte] = (*Emitter)(nil)

func (e *Emitter) Feed(in Item) {
	e.pending = append(e.pending, []byte(in.String()))
}

func (e *Emitter) Next(stopped bool) transform.Result[[]byte] {
	if len(e.pending) == 0 {
		if stopped {
			return transform.Result[[]byte]{Status: transform.EndOfStream}
		}
		return transform.Result[[]byte]{Status: transform.NotReady}
	}
	item := e.pending[0]
	e.pending = e.pending[1:]
	return transform.Result[[]byte]{Status: transform.Ready, Item: item}
}

// SplitName splits a FASTQ name field at the first run of whitespace:
// split_name("SRR1/1 extra") == ("SRR1/1", "extra", true);
// split_name("SRR1") == ("SRR1", "", false).
func SplitName(s string) (id, rest string, hasRest bool) {
	i := bytes.IndexAny([]byte(s), " \t")
	if i < 0 {
		return s, "", false
	}
	j := i
	for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
		j++
	}
	return s[:i], s[j:], true
}

// QualitiesOfLine reports whether qual and seq have matching lengths, the
// invariant §3 requires when a reference sequence is supplied.
func QualitiesOfLine(qual, seq string) bool { return len(qual) == len(seq) }
