package identity

// Group is one cluster of entries that share a canonical key.
type Group[T any] struct {
	Key     string
	Members []T
}

// Grouper clusters entries greedily by key similarity. Each added key joins
// the existing group whose key is its closest match at or above the cutoff,
// otherwise it opens a new group keyed by itself. Groups keep first-seen
// order.
type Grouper[T any] struct {
	cutoff      float64
	sameInitial bool
	keys        []string
	groups      map[string]*Group[T]
}

// NewGrouper returns a grouper that merges keys at or above cutoff. With
// sameInitial set, a key only competes against group keys that begin with
// the same character.
func NewGrouper[T any](cutoff float64, sameInitial bool) *Grouper[T] {
	return &Grouper[T]{
		cutoff:      cutoff,
		sameInitial: sameInitial,
		groups:      make(map[string]*Group[T]),
	}
}

// Add places member under key. Empty keys are ignored and Add reports false.
func (g *Grouper[T]) Add(key string, member T) bool {
	if key == "" {
		return false
	}
	candidates := g.keys
	if g.sameInitial {
		candidates = g.keysWithInitial(key)
	}
	target := key
	if match, ok := ClosestMatch(key, candidates, g.cutoff); ok {
		target = match
	}
	group, ok := g.groups[target]
	if !ok {
		group = &Group[T]{Key: target}
		g.groups[target] = group
		g.keys = append(g.keys, target)
	}
	group.Members = append(group.Members, member)
	return true
}

// Groups returns the clusters in first-seen order.
func (g *Grouper[T]) Groups() []*Group[T] {
	out := make([]*Group[T], 0, len(g.keys))
	for _, key := range g.keys {
		out = append(out, g.groups[key])
	}
	return out
}

func (g *Grouper[T]) keysWithInitial(key string) []string {
	initial := []rune(key)[0]
	var out []string
	for _, existing := range g.keys {
		if []rune(existing)[0] == initial {
			out = append(out, existing)
		}
	}
	return out
}
