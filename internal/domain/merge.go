package domain

// The two merge policies below encode the asymmetric defaulting rule used
// for optional fields across create and update paths: a field omitted on
// create takes its default, while a field omitted on update keeps whatever
// value is already stored. Keeping both in one place means catalog and
// ledger code cannot drift apart on the rule.

// ApplyWithDefault returns *v when set, otherwise def. Used on create paths
// (a new product with no price is persisted with price 0).
func ApplyWithDefault[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}

// ApplyOrKeep returns *v when set, otherwise current. Used on update paths
// (a partial update that omits price must not reset it).
func ApplyOrKeep[T any](v *T, current T) T {
	if v == nil {
		return current
	}
	return *v
}
