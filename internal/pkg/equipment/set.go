package equipment

// Set is an id-keyed collection of equipment.
type Set struct {
	members map[string]Equipment
}

// NewSet returns a set holding es.
func NewSet(es ...Equipment) Set {
	s := Set{make(map[string]Equipment, len(es))}
	for _, e := range es {
		s.members[e.ID] = e
	}
	return s
}

// Add inserts e. It returns false if an equipment with the same id is already present.
func (s *Set) Add(e Equipment) bool {
	if s.members == nil {
		s.members = make(map[string]Equipment)
	}
	if _, ok := s.members[e.ID]; ok {
		return false
	}
	s.members[e.ID] = e
	return true
}

func (s Set) Contains(id string) bool {
	_, ok := s.members[id]
	return ok
}

func (s Set) Get(id string) (Equipment, bool) {
	e, ok := s.members[id]
	return e, ok
}

func (s Set) Len() int {
	return len(s.members)
}

// Sorted returns the members ordered by id.
func (s Set) Sorted() []Equipment {
	es := make([]Equipment, 0, len(s.members))
	for _, e := range s.members {
		es = append(es, e)
	}
	SortByID(es)
	return es
}

// Filter returns the members matching pred, ordered by id.
func (s Set) Filter(pred func(Equipment) bool) []Equipment {
	es := make([]Equipment, 0)
	for _, e := range s.members {
		if pred(e) {
			es = append(es, e)
		}
	}
	SortByID(es)
	return es
}

// Intersects reports whether s and other share at least one id.
func (s Set) Intersects(other Set) bool {
	small, large := s, other
	if small.Len() > large.Len() {
		small, large = large, small
	}
	for id := range small.members {
		if large.Contains(id) {
			return true
		}
	}
	return false
}
