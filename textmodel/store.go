package textmodel

import (
	"sync"

	"github.com/nmichlo/texttrack/geometry"
)

// Patch holds the fields Update should overwrite; nil fields are left
// unchanged. This keeps Update a single partial-update call instead of a
// family of single-field setters.
type Patch struct {
	Name      *string
	Content   *string
	Visible   *bool
	Anchor    *Anchor
	Transform *geometry.Transform3D
	Style     *Style
}

// Store owns every Text3DElement for a TrackerContext, keyed by stable ID.
// Like pointtrack.Store and planartrack.Store, all mutation happens from
// the single logical executor of the cooperative scheduling model; Store
// itself only guards the ID counter.
type Store struct {
	mu       sync.Mutex
	nextID   int
	elements map[int]*Text3DElement
	order    []int
}

// NewStore returns an empty text-element store.
func NewStore() *Store {
	return &Store{elements: make(map[int]*Text3DElement)}
}

// Create builds a new Text3DElement glued to anchor, created at frame f,
// with construction defaults (position (0,0,0), rotation (0,0,0), scale
// (1.2,1.2), white/bold/38pt/Arial, visible=true).
func (s *Store) Create(anchor Anchor, f int) *Text3DElement {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.mu.Unlock()

	e := &Text3DElement{
		ID:           id,
		Name:         "",
		Content:      "",
		Visible:      true,
		Selected:     false,
		CreatedFrame: f,
		Anchor:       anchor,
		Transform:    defaultTransform(),
		Style:        DefaultStyle(),
	}
	s.elements[id] = e
	s.order = append(s.order, id)
	return e
}

// Restore inserts a fully-formed Text3DElement (typically loaded from a
// saved project) and advances the ID counter past its ID so future Create
// calls never collide with it.
func (s *Store) Restore(e *Text3DElement) {
	s.elements[e.ID] = e
	s.order = append(s.order, e.ID)
	s.mu.Lock()
	if e.ID >= s.nextID {
		s.nextID = e.ID + 1
	}
	s.mu.Unlock()
}

// Update applies a partial patch to the element with the given ID. It is a
// no-op if the ID does not exist.
func (s *Store) Update(id int, patch Patch) {
	e, ok := s.elements[id]
	if !ok {
		return
	}
	if patch.Name != nil {
		e.Name = *patch.Name
	}
	if patch.Content != nil {
		e.Content = *patch.Content
	}
	if patch.Visible != nil {
		e.Visible = *patch.Visible
	}
	if patch.Anchor != nil {
		e.Anchor = *patch.Anchor
	}
	if patch.Transform != nil {
		e.Transform = *patch.Transform
	}
	if patch.Style != nil {
		e.Style = *patch.Style
	}
}

// Delete removes the element with the given ID. It is a no-op for a
// dangling or already-deleted ID, matching the other stores' arena
// semantics.
func (s *Store) Delete(id int) {
	delete(s.elements, id)
}

// Select marks exactly one element selected, deselecting every other
// element first. It is a no-op if the ID does not exist.
func (s *Store) Select(id int) {
	if _, ok := s.elements[id]; !ok {
		return
	}
	s.DeselectAll()
	s.elements[id].Selected = true
}

// DeselectAll clears Selected on every element.
func (s *Store) DeselectAll() {
	for _, e := range s.elements {
		e.Selected = false
	}
}

// GetSelected returns the currently selected element, or nil if none is
// selected.
func (s *Store) GetSelected() *Text3DElement {
	for _, id := range s.order {
		if e, ok := s.elements[id]; ok && e.Selected {
			return e
		}
	}
	return nil
}

// GetByID returns the element with the given ID, if it exists.
func (s *Store) GetByID(id int) (*Text3DElement, bool) {
	e, ok := s.elements[id]
	return e, ok
}

// GetAll returns every element in creation order.
func (s *Store) GetAll() []*Text3DElement {
	out := make([]*Text3DElement, 0, len(s.order))
	for _, id := range s.order {
		if e, ok := s.elements[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

// GetByAnchor returns every element glued to the given anchor, in creation
// order.
func (s *Store) GetByAnchor(anchor Anchor) []*Text3DElement {
	var out []*Text3DElement
	for _, id := range s.order {
		e, ok := s.elements[id]
		if !ok {
			continue
		}
		if e.Anchor == anchor {
			out = append(out, e)
		}
	}
	return out
}
