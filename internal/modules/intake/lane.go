// README: Lane router; maps collected fields and the safety answer onto the active topic.
package intake

import (
	"errors"
	"fmt"
	"strings"

	"fria/internal/modules/form"
)

type Lane string

const (
	LaneSafety      Lane = "SAFETY"
	LaneIncident    Lane = "INCIDENT"
	LaneLocation    Lane = "LOCATION"
	LaneOperability Lane = "OPERABILITY"
	LaneTowReason   Lane = "TOW_REASON"
	LaneFinalize    Lane = "FINALIZE"
)

// canonicalOrder is the fixed lane priority for the four incident fields.
var canonicalOrder = []struct {
	field form.Field
	lane  Lane
}{
	{form.DamageDescription, LaneIncident},
	{form.AccidentLocationAddress, LaneLocation},
	{form.IsVehicleOperable, LaneOperability},
	{form.ReasonForTowing, LaneTowReason},
}

// DefaultRequired is the minimal four-field intake.
var DefaultRequired = []form.Field{
	form.AccidentLocationAddress,
	form.IsVehicleOperable,
	form.DamageDescription,
	form.ReasonForTowing,
}

type route struct {
	lane  Lane
	field form.Field
}

// Router derives the active lane. Canonical incident fields keep their fixed
// priority regardless of configuration order; any other configured field
// becomes its own lane after them, in configuration order.
type Router struct {
	routes []route
	byLane map[Lane]form.Field
}

func NewRouter(required []form.Field) (*Router, error) {
	if len(required) == 0 {
		return nil, errors.New("router needs at least one required field")
	}
	want := make(map[form.Field]bool, len(required))
	for _, f := range required {
		if !f.Valid() {
			return nil, fmt.Errorf("%w: %q", form.ErrInvalidField, f)
		}
		want[f] = true
	}

	r := &Router{byLane: make(map[Lane]form.Field)}
	canonical := make(map[form.Field]bool, len(canonicalOrder))
	for _, c := range canonicalOrder {
		canonical[c.field] = true
		if want[c.field] {
			r.add(c.lane, c.field)
		}
	}
	for _, f := range required {
		if !canonical[f] {
			if _, dup := r.byLane[fieldLane(f)]; !dup {
				r.add(fieldLane(f), f)
			}
		}
	}
	return r, nil
}

func (r *Router) add(l Lane, f form.Field) {
	r.routes = append(r.routes, route{lane: l, field: f})
	r.byLane[l] = f
}

// fieldLane names the lane of a non-canonical field after the field itself.
func fieldLane(f form.Field) Lane {
	return Lane(strings.ToUpper(string(f)))
}

// Derive is pure: SAFETY until safety is confirmed true, then the first lane
// whose field is unset, then FINALIZE.
func (r *Router) Derive(values form.Values, safetyConfirmed *bool) Lane {
	if safetyConfirmed == nil || !*safetyConfirmed {
		return LaneSafety
	}
	for _, rt := range r.routes {
		if !values.IsSet(rt.field) {
			return rt.lane
		}
	}
	return LaneFinalize
}

// Field returns the form field a lane fills.
func (r *Router) Field(l Lane) (form.Field, bool) {
	f, ok := r.byLane[l]
	return f, ok
}

// Required lists the routed fields in lane order.
func (r *Router) Required() []form.Field {
	out := make([]form.Field, len(r.routes))
	for i, rt := range r.routes {
		out[i] = rt.field
	}
	return out
}
