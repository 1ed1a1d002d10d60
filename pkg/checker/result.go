package checker

// Result is the outcome of one validation run. Valid is derived from the
// error list alone: warnings never fail a model.
type Result struct {
	Valid    bool           `json:"valid"`
	Errors   []string       `json:"errors"`
	Warnings []string       `json:"warnings"`
	Summary  map[string]any `json:"summary"`
}

// reporter accumulates findings during a single run. Each Validate call
// creates its own reporter, so checkers stay safe for concurrent use.
type reporter struct {
	errors   []string
	warnings []string
}

func (r *reporter) addError(msg string) {
	r.errors = append(r.errors, msg)
}

func (r *reporter) addWarning(msg string) {
	r.warnings = append(r.warnings, msg)
}

// result freezes the accumulated findings. The slices are always non-nil so
// the JSON rendering shows empty arrays rather than null.
func (r *reporter) result(summary map[string]any) *Result {
	if summary == nil {
		summary = map[string]any{}
	}
	errs := make([]string, len(r.errors))
	copy(errs, r.errors)
	warns := make([]string, len(r.warnings))
	copy(warns, r.warnings)
	return &Result{
		Valid:    len(errs) == 0,
		Errors:   errs,
		Warnings: warns,
		Summary:  summary,
	}
}
