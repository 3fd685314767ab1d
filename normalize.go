package txnimport

import (
	"math/rand"
	"time"

	"github.com/pkg/errors"
)

// NormalizerOption configures a Normalizer.
type NormalizerOption func(n *Normalizer) error

// OptNormalizerSeed seeds the generator used for synthetic timestamps. A
// negative seed seeds it from the current time.
func OptNormalizerSeed(seed int64) NormalizerOption {
	return func(n *Normalizer) error {
		if seed < 0 {
			seed = time.Now().UnixNano()
		}
		n.rng = rand.New(rand.NewSource(seed))
		return nil
	}
}

// OptNormalizerClock sets the clock synthetic timestamps are computed from.
func OptNormalizerClock(now func() time.Time) NormalizerOption {
	return func(n *Normalizer) error {
		n.now = now
		return nil
	}
}

// OptNormalizerAliases adds source column aliases, keyed by source column
// name, to the named canonical fields. They are tried after the built-in
// aliases.
func OptNormalizerAliases(aliases map[string]string) NormalizerOption {
	return func(n *Normalizer) error {
		for column, field := range aliases {
			if err := n.AddAlias(column, field); err != nil {
				return err
			}
		}
		return nil
	}
}

// Normalizer maps source rows onto the Document schema. It is not safe for
// concurrent use, since the synthetic timestamp generator is shared.
type Normalizer struct {
	fields []Field
	rng    *rand.Rand
	now    func() time.Time
}

// NewNormalizer returns a Normalizer using DefaultFields.
func NewNormalizer(opts ...NormalizerOption) (*Normalizer, error) {
	n := &Normalizer{
		fields: DefaultFields(),
		rng:    rand.New(rand.NewSource(1)),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if err := opt(n); err != nil {
			return nil, errors.Wrap(err, "applying normalizer option")
		}
	}
	return n, nil
}

// Fields returns the normalizer's field table.
func (n *Normalizer) Fields() []Field {
	return n.fields
}

// AddAlias appends column to the aliases of the canonical field named field.
func (n *Normalizer) AddAlias(column, field string) error {
	if column == "" {
		return errors.New("empty alias")
	}
	for i := range n.fields {
		if n.fields[i].Name == field {
			for _, a := range n.fields[i].Aliases {
				if a == column {
					return nil
				}
			}
			n.fields[i].Aliases = append(n.fields[i].Aliases, column)
			return nil
		}
	}
	return errors.Errorf("alias '%s' targets unknown field '%s'", column, field)
}

// Normalize produces the Document for row. It always succeeds: required
// fields with no usable value get a fallback and optional ones are omitted.
func (n *Normalizer) Normalize(row *Row) Document {
	doc := Document{}
	for i := range n.fields {
		f := &n.fields[i]
		val, ok := n.resolve(f, row)
		if !ok {
			if f.Fallback == nil {
				continue
			}
			val, ok = f.Fallback(n, row.Position, n.present(f, row))
			if !ok {
				continue
			}
		}
		f.assign(&doc, val)
	}

	if t, err := ParseTimestamp(doc.Timestamp); err == nil {
		doc.Hour = t.Hour()
		doc.DayOfWeek = mondayWeekday(t.Weekday())
	} else {
		doc.Hour = row.Position % 24
		doc.DayOfWeek = row.Position % 7
	}
	return doc
}

func (n *Normalizer) resolve(f *Field, row *Row) (interface{}, bool) {
	for _, alias := range f.Aliases {
		raw, ok := row.Get(alias)
		if !ok {
			continue
		}
		val, err := f.Coerce(raw)
		if err != nil {
			continue
		}
		return val, true
	}
	return nil, false
}

func (n *Normalizer) present(f *Field, row *Row) bool {
	for _, alias := range f.Aliases {
		if row.Has(alias) {
			return true
		}
	}
	return false
}
