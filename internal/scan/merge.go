package scan

// Merger deduplicates and concatenates per-batch scan documents into one
// logical document. Workspace id is the merge key and is treated as
// globally unique within a run: the first occurrence wins and later
// duplicates are dropped whole, never merged field-by-field. Given a fixed
// arrival order the result is deterministic.
type Merger struct {
	seen map[string]bool
	doc  Document
}

// NewMerger creates an empty merger.
func NewMerger() *Merger {
	return &Merger{seen: make(map[string]bool)}
}

// Add folds one parsed document into the merge, in arrival order.
func (m *Merger) Add(doc *Document) {
	if doc == nil {
		return
	}
	for _, ws := range doc.Workspaces {
		if m.seen[ws.ID] {
			continue
		}
		m.seen[ws.ID] = true
		m.doc.Workspaces = append(m.doc.Workspaces, ws)
	}
}

// Result returns the merged document built so far.
func (m *Merger) Result() *Document {
	return &m.doc
}

// Merge parses each raw document in order and merges the workspace trees.
// A document that fails to parse contributes nothing but its error; the
// remaining documents still merge.
func Merge(raws [][]byte) (*Document, []error) {
	m := NewMerger()

	var errs []error
	for _, raw := range raws {
		doc, err := ParseDocument(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		m.Add(doc)
	}

	return m.Result(), errs
}
