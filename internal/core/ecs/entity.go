package ecs

// EntityID identifies an entity. Zero is the null id; live ids start at 1.
type EntityID uint32

// Null is the id no entity ever receives.
const Null EntityID = 0

func (id EntityID) IsZero() bool { return id == Null }

// EntityPool allocates entity ids monotonically and tracks liveness.
// Ids are never recycled, so a stale reference can never alias a newer entity.
type EntityPool struct {
	alive     []bool
	nextIndex uint32
	live      int
}

func NewEntityPool() *EntityPool {
	return &EntityPool{
		alive:     make([]bool, 1, 1024),
		nextIndex: 1,
	}
}

func (p *EntityPool) Create() EntityID {
	idx := p.nextIndex
	p.nextIndex++
	p.alive = append(p.alive, true)
	p.live++
	return EntityID(idx)
}

func (p *EntityPool) Alive(id EntityID) bool {
	if id.IsZero() || uint32(id) >= p.nextIndex {
		return false
	}
	return p.alive[id]
}

func (p *EntityPool) Destroy(id EntityID) {
	if !p.Alive(id) {
		return // already destroyed or never allocated
	}
	p.alive[id] = false
	p.live--
}

// Len returns the number of live entities.
func (p *EntityPool) Len() int { return p.live }
