package arrowgram

// Ordering is the dependency order of a specification's arrows.
type Ordering struct {
	Arrows     []int // indices into Spec.Arrows, in resolution order
	Unresolved []int // arrows that never became resolvable, in input order
	Passes     int   // passes over the pending list that were run
}

// Complete reports whether every arrow was resolved.
func (o Ordering) Complete() bool {
	return len(o.Unresolved) == 0
}

// UnresolvedNames returns display names for the stragglers.
func (o Ordering) UnresolvedNames(s *Spec) []string {
	names := make([]string, 0, len(o.Unresolved))
	for _, i := range o.Unresolved {
		names = append(names, s.Arrows[i].DisplayName(i))
	}
	return names
}

// Order resolves arrow endpoints to a fixed point. Nodes are known from the
// start; each pass walks the pending arrows in input order and accepts those
// whose endpoints are both known, registering named ones immediately. A pass
// without progress ends the loop, and the pass count never exceeds
// len(Arrows)+1, so cyclic or dangling references always terminate.
func (s *Spec) Order() Ordering {
	known := make(map[string]bool, len(s.Nodes)+len(s.Arrows))
	for _, n := range s.Nodes {
		known[n.Name] = true
	}

	pending := make([]int, len(s.Arrows))
	for i := range pending {
		pending[i] = i
	}

	var ord Ordering
	ord.Arrows = make([]int, 0, len(s.Arrows))
	maxPasses := len(s.Arrows) + 1

	for ord.Passes < maxPasses && len(pending) > 0 {
		ord.Passes++
		progress := false
		next := make([]int, 0, len(pending))

		for _, i := range pending {
			a := s.Arrows[i]
			if known[a.From] && known[a.To] {
				ord.Arrows = append(ord.Arrows, i)
				if a.Name != "" {
					known[a.Name] = true
				}
				progress = true
			} else {
				next = append(next, i)
			}
		}

		pending = next
		if !progress {
			break
		}
	}

	ord.Unresolved = pending
	return ord
}
