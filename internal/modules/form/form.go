package form

import "fmt"

// Form holds one session's field values together with the defaults it
// resets to. Keys are always exactly the schema; unset fields are nil.
type Form struct {
	values   Values
	defaults Values
}

// New builds a form initialised to defaults. Entries of defaults outside
// the schema are ignored.
func New(defaults Values) *Form {
	d := make(Values, len(Schema))
	for _, f := range Schema {
		d[f] = copyPtr(defaults[f])
	}
	fm := &Form{defaults: d}
	fm.Reset()
	return fm
}

// Reset sets every field back to its default.
func (fm *Form) Reset() {
	fm.values = fm.defaults.Clone()
}

// Snapshot returns a copy of all field values.
func (fm *Form) Snapshot() Values {
	return fm.values.Clone()
}

// Defaults returns a copy of the reset values.
func (fm *Form) Defaults() Values {
	return fm.defaults.Clone()
}

func (fm *Form) Get(f Field) (*string, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidField, f)
	}
	return copyPtr(fm.values[f]), nil
}

// Set stores value under f. A nil value clears the field.
// Fields outside the schema fail with ErrInvalidField and nothing changes.
func (fm *Form) Set(f Field, value *string) error {
	if !f.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidField, f)
	}
	fm.values[f] = copyPtr(value)
	return nil
}

// IsComplete reports whether every field in subset is non-blank.
func (fm *Form) IsComplete(subset []Field) bool {
	return len(fm.Missing(subset)) == 0
}

// Missing lists the fields of subset that are unset or blank, in subset order.
func (fm *Form) Missing(subset []Field) []Field {
	var out []Field
	for _, f := range subset {
		if !fm.values.IsSet(f) {
			out = append(out, f)
		}
	}
	return out
}

// Restore loads a persisted snapshot. Unknown keys are dropped and missing
// keys take their default, so an older snapshot always yields a full schema.
func (fm *Form) Restore(snapshot map[string]*string) {
	fm.Reset()
	for name, v := range snapshot {
		f := Field(name)
		if f.Valid() {
			fm.values[f] = copyPtr(v)
		}
	}
}

// Clone returns an independent copy.
func (fm *Form) Clone() *Form {
	return &Form{values: fm.values.Clone(), defaults: fm.defaults.Clone()}
}

// Wire renders the values keyed by field name, with nil for unset fields.
func (fm *Form) Wire() map[string]*string {
	return fm.values.Wire()
}

func (v Values) Wire() map[string]*string {
	out := make(map[string]*string, len(Schema))
	for _, f := range Schema {
		out[string(f)] = copyPtr(v[f])
	}
	return out
}
