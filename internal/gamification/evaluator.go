package gamification

// Unlocked identifies a badge the user already holds. Older rows may lack
// BadgeID and are matched by type and name instead.
type Unlocked struct {
	BadgeID string
	Type    BadgeType
	Name    string
}

// BadgeProgress reports how close a user is to a badge.
type BadgeProgress struct {
	Badge    MasterBadge `json:"badge"`
	Current  int64       `json:"current"`
	Target   int64       `json:"target"`
	Progress float64     `json:"progress"`
	Unlocked bool        `json:"unlocked"`
}

type unlockIndex struct {
	ids   map[string]struct{}
	names map[BadgeType]map[string]struct{}
}

func newUnlockIndex(unlocked []Unlocked) unlockIndex {
	idx := unlockIndex{
		ids:   make(map[string]struct{}, len(unlocked)),
		names: make(map[BadgeType]map[string]struct{}),
	}
	for _, u := range unlocked {
		if u.BadgeID != "" {
			idx.ids[u.BadgeID] = struct{}{}
		}
		if u.Name == "" {
			continue
		}
		if idx.names[u.Type] == nil {
			idx.names[u.Type] = make(map[string]struct{})
		}
		idx.names[u.Type][u.Name] = struct{}{}
	}
	return idx
}

func (idx unlockIndex) has(b MasterBadge) bool {
	if _, ok := idx.ids[b.ID]; ok {
		return true
	}
	_, ok := idx.names[b.Type][b.Name]
	return ok
}

// Evaluate returns the catalog badges the aggregate qualifies for that are
// not yet unlocked, in catalog order.
func Evaluate(catalog *Catalog, agg Aggregate, unlocked []Unlocked) []MasterBadge {
	idx := newUnlockIndex(unlocked)
	var out []MasterBadge
	for _, b := range catalog.badges {
		if idx.has(b) {
			continue
		}
		if agg.Value(b) >= b.Target {
			out = append(out, b)
		}
	}
	return out
}

// Progress reports current/target for every badge in the catalog.
func Progress(catalog *Catalog, agg Aggregate, unlocked []Unlocked) []BadgeProgress {
	idx := newUnlockIndex(unlocked)
	out := make([]BadgeProgress, 0, len(catalog.badges))
	for _, b := range catalog.badges {
		current := agg.Value(b)
		ratio := 1.0
		if b.Target > 0 {
			ratio = float64(current) / float64(b.Target)
		}
		if ratio > 1 {
			ratio = 1
		}
		out = append(out, BadgeProgress{
			Badge:    b,
			Current:  current,
			Target:   b.Target,
			Progress: ratio,
			Unlocked: idx.has(b),
		})
	}
	return out
}
