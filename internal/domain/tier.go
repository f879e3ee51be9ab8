package domain

// Tier is the resolved capability of a principal relative to one subject.
// It is the single classification consumed by the workflow; callers never
// inspect raw role labels or manager joins.
type Tier struct {
	IsHROrAdmin bool
	IsManagerOf bool
	IsSelf      bool
}

// CanActOn reports whether the principal may create or read absences for
// the subject at all.
func (t Tier) CanActOn() bool {
	return t.IsHROrAdmin || t.IsManagerOf || t.IsSelf
}
