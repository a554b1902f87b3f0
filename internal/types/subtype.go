package types

// maxChain caps ancestry walks; declaration cycles are reported elsewhere.
const maxChain = 64

// Super returns the direct ancestor of a struct type.
func (in *Interner) Super(id TypeID) TypeID {
	info, ok := in.StructInfo(id)
	if !ok {
		return NoTypeID
	}
	return info.Super
}

// Ancestors lists id's super types, nearest first.
func (in *Interner) Ancestors(id TypeID) []TypeID {
	var out []TypeID
	cur := in.Super(id)
	for cur.IsValid() && len(out) < maxChain {
		out = append(out, cur)
		cur = in.Super(cur)
	}
	return out
}

// SubtypeDistance counts inheritance steps from `from` up to `to`. Interfaces
// are reached through the implementing class chain; each interface hop counts
// as one step.
func (in *Interner) SubtypeDistance(from, to TypeID) (int, bool) {
	if from == to {
		return 0, true
	}
	target, ok := in.StructInfo(to)
	if !ok {
		return 0, false
	}
	dist := 0
	for cur := from; cur.IsValid() && dist < maxChain; cur = in.Super(cur) {
		if cur == to {
			return dist, true
		}
		if target.Kind == StructInterface {
			if d, ok := in.interfaceDistance(cur, to, 0); ok {
				return dist + d, true
			}
		}
		dist++
	}
	return 0, false
}

func (in *Interner) interfaceDistance(from, to TypeID, depth int) (int, bool) {
	if depth > maxChain {
		return 0, false
	}
	info, ok := in.StructInfo(from)
	if !ok {
		return 0, false
	}
	best, found := 0, false
	for _, it := range info.Interfaces {
		if it == to {
			return 1, true
		}
		if d, ok := in.interfaceDistance(it, to, depth+1); ok && (!found || d+1 < best) {
			best, found = d+1, true
		}
	}
	// interfaces inherit through Super as well
	if info.Kind == StructInterface && info.Super.IsValid() {
		if info.Super == to {
			return 1, true
		}
		if d, ok := in.interfaceDistance(info.Super, to, depth+1); ok && (!found || d+1 < best) {
			best, found = d+1, true
		}
	}
	return best, found
}

// IsSubtype reports whether from equals or descends from to.
func (in *Interner) IsSubtype(from, to TypeID) bool {
	_, ok := in.SubtypeDistance(from, to)
	return ok
}

// Extends reports whether helper applies to target: it extends target or one
// of target's ancestors.
func (in *Interner) Extends(helper, target TypeID) bool {
	info, ok := in.StructInfo(helper)
	if !ok || !info.Kind.IsHelper() || !info.Extended.IsValid() {
		return false
	}
	if info.Extended == target {
		return true
	}
	return in.IsSubtype(target, info.Extended)
}

// Extended returns the type a helper extends, or NoTypeID.
func (in *Interner) Extended(helper TypeID) TypeID {
	info, ok := in.StructInfo(helper)
	if !ok || !info.Kind.IsHelper() {
		return NoTypeID
	}
	return info.Extended
}
