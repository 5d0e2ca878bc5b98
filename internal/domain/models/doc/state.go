package doc

import "encoding/json"

// State is the whole-document container owned exclusively by an editor
// session. It is mutated only through session commands, persisted on
// debounce or manual save, and discarded when the session closes.
type State struct {
	ID     string            `json:"id"`
	Title  string            `json:"title,omitempty"`
	Blocks []Block           `json:"blocks"`
	Meta   map[string]string `json:"meta,omitempty"`
}

// BlockByID returns the block with the given stable id, or nil.
func (s *State) BlockByID(id string) Block {
	for _, b := range s.Blocks {
		if b.BlockID() == id {
			return b
		}
	}
	return nil
}

// Headings returns the document's heading blocks in order.
func (s *State) Headings() []*Heading {
	var hs []*Heading
	for _, b := range s.Blocks {
		if h, ok := b.(*Heading); ok {
			hs = append(hs, h)
		}
	}
	return hs
}

// Clone returns a deep copy, used to snapshot the document for an
// in-flight save while the session keeps mutating the original.
func (s *State) Clone() *State {
	data, err := json.Marshal(s)
	if err != nil {
		return &State{ID: s.ID, Title: s.Title}
	}
	var out State
	if err := json.Unmarshal(data, &out); err != nil {
		return &State{ID: s.ID, Title: s.Title}
	}
	return &out
}

func (s *State) MarshalJSON() ([]byte, error) {
	blocks := make([]json.RawMessage, len(s.Blocks))
	for i, b := range s.Blocks {
		raw, err := MarshalBlock(b)
		if err != nil {
			return nil, err
		}
		blocks[i] = raw
	}
	type alias struct {
		ID     string            `json:"id"`
		Title  string            `json:"title,omitempty"`
		Blocks []json.RawMessage `json:"blocks"`
		Meta   map[string]string `json:"meta,omitempty"`
	}
	return json.Marshal(alias{ID: s.ID, Title: s.Title, Blocks: blocks, Meta: s.Meta})
}

func (s *State) UnmarshalJSON(data []byte) error {
	var alias struct {
		ID     string            `json:"id"`
		Title  string            `json:"title"`
		Blocks []json.RawMessage `json:"blocks"`
		Meta   map[string]string `json:"meta"`
	}
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	s.ID = alias.ID
	s.Title = alias.Title
	s.Meta = alias.Meta
	s.Blocks = make([]Block, 0, len(alias.Blocks))
	for _, raw := range alias.Blocks {
		b, err := UnmarshalBlock(raw)
		if err != nil {
			return err
		}
		s.Blocks = append(s.Blocks, b)
	}
	return nil
}
