package behavior

import "sort"

// DefaultTreeID is the reserved id of the bootstrap tree. Entities with an
// empty tree id use it.
const DefaultTreeID = "default"

// Library maps tree ids to root nodes.
type Library struct {
	trees map[string]*Node
}

func NewLibrary() *Library {
	return &Library{trees: make(map[string]*Node)}
}

// Register stores root under id, replacing any previous tree.
func (l *Library) Register(id string, root *Node) {
	l.trees[id] = root
}

func (l *Library) Get(id string) (*Node, bool) {
	n, ok := l.trees[id]
	return n, ok
}

func (l *Library) Has(id string) bool {
	_, ok := l.trees[id]
	return ok
}

// IDs returns the registered tree ids in sorted order.
func (l *Library) IDs() []string {
	ids := make([]string, 0, len(l.trees))
	for id := range l.trees {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (l *Library) Len() int { return len(l.trees) }

// EnsureDefault registers the bootstrap tree (acquire a target, then fly at
// full throttle) unless a "default" tree already exists.
func (l *Library) EnsureDefault() {
	if l.Has(DefaultTreeID) {
		return
	}
	l.Register(DefaultTreeID, Sequence(
		Targeting(),
		Maneuver("full_throttle", FullThrottle),
	))
}
