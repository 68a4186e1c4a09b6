package media

// GroupID indexes a group in the Groups arena.
type GroupID int

// NoGroup marks an entry that belongs to no group.
const NoGroup GroupID = -1

// Group is a titled row of entries, such as a suggestions shelf.
type Group struct {
	ID      GroupID
	Title   string
	Entries []*Entry
}

// Groups owns every group. Entries refer to their group by id only, so a removed
// group can never be reached through an entry that outlived it.
type Groups struct {
	slots []*Group
}

// Add stores a new group and points its entries at it.
func (g *Groups) Add(title string, entries ...*Entry) GroupID {
	id := GroupID(len(g.slots))
	group := &Group{ID: id, Title: title, Entries: entries}
	for _, e := range entries {
		if e != nil {
			e.Group = id
		}
	}

	g.slots = append(g.slots, group)
	return id
}

// Get returns a live group by id.
func (g *Groups) Get(id GroupID) (*Group, bool) {
	if id < 0 || int(id) >= len(g.slots) {
		return nil, false
	}

	group := g.slots[id]
	return group, group != nil
}

// Lookup resolves the group an entry belongs to.
func (g *Groups) Lookup(e *Entry) (*Group, bool) {
	if e == nil {
		return nil, false
	}

	return g.Get(e.Group)
}

// Remove drops a group. Ids are never reused.
func (g *Groups) Remove(id GroupID) {
	if _, ok := g.Get(id); ok {
		g.slots[id] = nil
	}
}

// Len returns the number of live groups.
func (g *Groups) Len() int {
	n := 0
	for _, group := range g.slots {
		if group != nil {
			n++
		}
	}
	return n
}

// Clear drops every group.
func (g *Groups) Clear() {
	for i := range g.slots {
		g.slots[i] = nil
	}
}

// After returns the entry following e inside its group, if any.
func (g *Groups) After(e *Entry) (*Entry, bool) {
	group, ok := g.Lookup(e)
	if !ok {
		return nil, false
	}

	for i, item := range group.Entries {
		if item.Equal(e) && i+1 < len(group.Entries) {
			return group.Entries[i+1], true
		}
	}

	return nil, false
}
