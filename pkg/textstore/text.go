// Copyright 2021 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package textstore

import (
	"fmt"
	"io"

	"github.com/RoaringBitmap/roaring"
	"github.com/axiomhq/hyperloglog"
	"go.uber.org/zap"

	"github.com/computronium/hashlist/pkg/common/moerr"
	"github.com/computronium/hashlist/pkg/config"
	"github.com/computronium/hashlist/pkg/container/hashtable"
	"github.com/computronium/hashlist/pkg/container/indexlist"
	"github.com/computronium/hashlist/pkg/logutil"
)

// Line is one line of text, terminator included.
type Line struct {
	Text     string
	FileName string
	Size     int
	// ID is the key of the line in its Text.
	ID int
	// RealID is the line number in the file the line was read from. It
	// differs from ID once texts are appended to each other.
	RealID int
	Flags  int
}

func newLine(fileName, text string, id int) *Line {
	return &Line{
		Text:     text,
		FileName: fileName,
		Size:     len(text),
		ID:       id,
		RealID:   id,
	}
}

type lineList = indexlist.List[int, *Line]

type lineNode = indexlist.Node[int, *Line]

var releaseLine = indexlist.DestructorFunc[*Line](func(l *Line) {
	l.Text, l.FileName, l.Size = "", "", 0
})

// Text is an ordered collection of lines indexed by line id.
type Text struct {
	cfg    config.TableConfig
	lines  *lineList
	marked *roaring.Bitmap
	logger *zap.Logger
}

// New returns an empty text whose index is sized by cfg.
func New(cfg config.TableConfig) (*Text, error) {
	logger := logutil.GetGlobalLogger().Named("textstore")
	lines, err := indexlist.NewEmpty(cfg.LineSentinel, cfg.InitialSize,
		indexlist.WithHasher[int, *Line](hashtable.IntHasher[int]{}),
		indexlist.WithLogger[int, *Line](logger))
	if err != nil {
		return nil, err
	}
	return &Text{
		cfg:    cfg,
		lines:  lines,
		marked: roaring.New(),
		logger: logger,
	}, nil
}

func (t *Text) Len() int {
	return t.lines.Len()
}

// NBytes returns the size of all lines together.
func (t *Text) NBytes() int {
	n := 0
	t.Range(func(l *Line) bool {
		n += l.Size
		return true
	})
	return n
}

func (t *Text) Stats() indexlist.Stats {
	return t.lines.Stats()
}

func (t *Text) nextID() int {
	if tail := t.lines.Tail(); tail != nil {
		return tail.ID() + 1
	}
	return 0
}

// appendLines adds lines after the tail, numbering them on from the tail.
func (t *Text) appendLines(lines []*Line) error {
	id := t.nextID()
	for _, l := range lines {
		l.ID = id
		if _, err := t.lines.PushBack(l, id, l.Flags, id); err != nil {
			return err
		}
		if l.Flags != 0 {
			t.marked.Add(uint32(id))
		}
		id++
	}
	return nil
}

// Append moves the lines of other after the last line of t. The moved
// lines get new ids and keep their line number in RealID. other is closed.
func (t *Text) Append(other *Text) error {
	if other == t {
		return moerr.NewInvalidArgNoCtx("text", "self")
	}
	var lines []*Line
	other.Range(func(l *Line) bool {
		cp := *l
		lines = append(lines, &cp)
		return true
	})
	if err := t.appendLines(lines); err != nil {
		return err
	}
	other.Close()
	return nil
}

// Line returns the text of line id.
func (t *Text) Line(id int) (string, bool) {
	l, ok := t.lines.LookupPayload(id)
	if !ok {
		return "", false
	}
	return l.Text, true
}

// Link returns the node holding line id, or nil.
func (t *Text) Link(id int) *lineNode {
	return t.lines.Lookup(id)
}

// Get returns line id.
func (t *Text) Get(id int) (*Line, bool) {
	return t.lines.LookupPayload(id)
}

// FileName returns the name of the file line id was read from.
func (t *Text) FileName(id int) (string, bool) {
	l, ok := t.lines.LookupPayload(id)
	if !ok {
		return "", false
	}
	return l.FileName, true
}

// SetFlags adds flags to the flags of line id.
func (t *Text) SetFlags(id, flags int) error {
	n := t.lines.Lookup(id)
	if n == nil {
		return moerr.NewKeyNotFoundNoCtx(id)
	}
	n.AddFlags(flags)
	n.Payload().Flags = n.Flags()
	if n.Flags() != 0 {
		t.marked.Add(uint32(id))
	}
	return nil
}

// ClearFlags removes flags from the flags of line id.
func (t *Text) ClearFlags(id, flags int) error {
	n := t.lines.Lookup(id)
	if n == nil {
		return moerr.NewKeyNotFoundNoCtx(id)
	}
	n.ClearFlags(flags)
	n.Payload().Flags = n.Flags()
	if n.Flags() == 0 {
		t.marked.Remove(uint32(id))
	}
	return nil
}

// Flags returns the flags of line id, 0 when there is no such line.
func (t *Text) Flags(id int) int {
	if n := t.lines.Lookup(id); n != nil {
		return n.Flags()
	}
	return 0
}

// FirstFlagged returns the first line having any of flags.
func (t *Text) FirstFlagged(flags int) (*Line, bool) {
	n := t.lines.FindByFlag(flags)
	if n == nil {
		return nil, false
	}
	return n.Payload(), true
}

// Marked returns the ids of the lines with any flag set.
func (t *Text) Marked() *roaring.Bitmap {
	return t.marked.Clone()
}

// Range calls fn on every line in order until fn returns false.
func (t *Text) Range(fn func(*Line) bool) {
	t.lines.Range(func(n *lineNode) bool {
		return fn(n.Payload())
	})
}

// Show writes every line as line[id]:text.
func (t *Text) Show(w io.Writer) error {
	return t.lines.Apply(func(l *Line) error {
		_, err := fmt.Fprintf(w, "line[%d]:%s", l.ID, l.Text)
		return err
	})
}

// CopyLine copies line id into to. A line of to with the same id gets the
// text, otherwise the copy is appended under that id.
func (t *Text) CopyLine(id int, to *Text) error {
	from, ok := t.lines.LookupPayload(id)
	if !ok {
		return moerr.NewKeyNotFoundNoCtx(id)
	}
	if l, ok := to.lines.LookupPayload(id); ok {
		l.Text, l.Size = from.Text, from.Size
		return nil
	}
	cp := *from
	if _, err := to.lines.PushBack(&cp, id, cp.Flags, id); err != nil {
		return err
	}
	if cp.Flags != 0 {
		to.marked.Add(uint32(id))
	}
	return nil
}

// Delete removes line id and reports whether it existed.
func (t *Text) Delete(id int) bool {
	if !t.lines.Delete(id, releaseLine) {
		return false
	}
	t.marked.Remove(uint32(id))
	return true
}

// Distinct indexes the lines by text. The returned list holds the first
// line of every text; dups counts the lines whose text was seen before.
// The lines stay owned by t, so the list is released with a nil
// destructor.
func (t *Text) Distinct(h hashtable.Hasher[string]) (distinct *indexlist.List[string, *Line], dups int, err error) {
	distinct, err = indexlist.NewEmpty("", t.cfg.InitialSize,
		indexlist.WithHasher[string, *Line](h),
		indexlist.WithLogger[string, *Line](t.logger))
	if err != nil {
		return nil, 0, err
	}
	err = t.lines.Apply(func(l *Line) error {
		if l.Text == "" {
			return nil
		}
		_, err := distinct.PushBack(l, l.ID, l.Flags, l.Text)
		if moerr.IsMoErrCode(err, moerr.ErrDuplicateKey) {
			dups++
			return nil
		}
		return err
	})
	if err != nil {
		distinct.ReleaseAll(nil)
		return nil, 0, err
	}
	return distinct, dups, nil
}

// EstimateDistinct approximates the number of different line texts without
// building an index.
func (t *Text) EstimateDistinct() uint64 {
	sk := hyperloglog.New14()
	t.Range(func(l *Line) bool {
		if l.Text != "" {
			sk.Insert([]byte(l.Text))
		}
		return true
	})
	return sk.Estimate()
}

// Validate checks the line list and its index.
func (t *Text) Validate() error {
	return t.lines.Validate()
}

// Close releases every line and the index. Calling it again does nothing.
func (t *Text) Close() {
	if t.lines.Released() {
		return
	}
	t.logger.Debug("text closed", zap.Int("lines", t.lines.Len()))
	t.lines.ReleaseAll(releaseLine)
	t.marked.Clear()
}
