// The omni package provides the textual model of OMNI scripts.
//
// An OMNI script is a list of Blocks, each of which has a type, a name, and a
// list of Statements. A Statement either assigns a Value to a property of the
// block, or declares another block by name. Every available value type
// implements the Value interface, and is prefixed with "Value".
//
// A Document is produced either by decoding the binary container format (see
// the "riff" sub-package), or by parsing a script (see the "script"
// sub-package). Both directions produce the same model, which renders back to
// a script with Document.String.
//
// Documents can also be created manually through the "declare" sub-package.
package omni

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/isle-tools/omni/errors"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Document is a complete script: a settings block followed by an ordered list
// of blocks.
type Document struct {
	// Settings is the defineSettings block of the document. It is always
	// rendered first.
	Settings *Block

	// Blocks contains the remaining blocks in output order.
	Blocks []*Block
}

// String renders the document as a script.
func (d *Document) String() string {
	var s strings.Builder
	if d.Settings != nil {
		d.Settings.writeTo(&s)
	}
	for _, b := range d.Blocks {
		b.writeTo(&s)
	}
	return s.String()
}

// WriteTo writes the rendered document to w.
func (d *Document) WriteTo(w io.Writer) (n int64, err error) {
	m, err := io.WriteString(w, d.String())
	return int64(m), err
}

// Find returns the first block with the given name, or nil if no such block
// exists. The settings block is included in the search.
func (d *Document) Find(name string) *Block {
	if d.Settings != nil && d.Settings.Name == name {
		return d.Settings
	}
	for _, b := range d.Blocks {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// Names returns the name of every block in the document.
func (d *Document) Names() []string {
	names := make([]string, 0, len(d.Blocks)+1)
	if d.Settings != nil {
		names = append(names, d.Settings.Name)
	}
	for _, b := range d.Blocks {
		names = append(names, b.Name)
	}
	return names
}

// Copy returns a deep copy of the document.
func (d *Document) Copy() *Document {
	c := &Document{Blocks: make([]*Block, len(d.Blocks))}
	if d.Settings != nil {
		c.Settings = d.Settings.Copy()
	}
	for i, b := range d.Blocks {
		c.Blocks[i] = b.Copy()
	}
	return c
}

// UnresolvedDeclarationError indicates that a block declares a name that no
// block in the document defines.
type UnresolvedDeclarationError struct {
	// Block is the name of the declaring block.
	Block string
	// Name is the declared name.
	Name string
	// Suggestion is the closest defined name, if any.
	Suggestion string
}

func (err UnresolvedDeclarationError) Error() string {
	msg := fmt.Sprintf("block %q declares undefined block %q", err.Block, err.Name)
	if err.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", err.Suggestion)
	}
	return msg
}

// Validate checks that every declaration in the document refers to a defined
// block. Returns an errors.Errors containing an UnresolvedDeclarationError
// for each declaration that does not.
func (d *Document) Validate() error {
	names := d.Names()
	defined := make(map[string]bool, len(names))
	for _, name := range names {
		defined[name] = true
	}
	var errs errors.Errors
	for _, b := range d.Blocks {
		for _, name := range b.Declarations() {
			if defined[name] {
				continue
			}
			errs = errs.Append(UnresolvedDeclarationError{
				Block:      b.Name,
				Name:       name,
				Suggestion: ClosestMatch(name, names),
			})
		}
	}
	return errs.Return()
}

// ClosestMatch returns the candidate that most closely matches target, or an
// empty string if no candidate is close enough. Candidates that contain the
// characters of target in order are preferred; otherwise a candidate within a
// small edit distance is returned.
func ClosestMatch(target string, candidates []string) string {
	if target == "" || len(candidates) == 0 {
		return ""
	}

	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	limit := len(target) / 3
	if limit < 2 {
		limit = 2
	}
	best, bestDist := "", limit+1
	for _, c := range candidates {
		dist := fuzzy.LevenshteinDistance(strings.ToLower(target), strings.ToLower(c))
		if dist < bestDist {
			best, bestDist = c, dist
		}
	}
	return best
}
