package core

import "encoding/json"

// Point is one entry of a normalized series.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	// Raw is the value exactly as it appeared in a decoded JSON series. It may
	// hold any JSON value; Value is only its numeric reading. Empty for points
	// computed in process.
	Raw string `json:"-"`
}

// ValueJSON returns Raw when set and the encoded Value otherwise.
func (p Point) ValueJSON() (json.RawMessage, error) {
	if p.Raw != "" {
		return json.RawMessage(p.Raw), nil
	}
	return json.Marshal(p.Value)
}

// Series is an ordered sequence of points. Producers define the order;
// consumers must preserve it.
type Series []Point

// Labels returns the labels in series order.
func (s Series) Labels() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = p.Label
	}
	return out
}

// Values returns the values in series order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// ValuesJSON returns the encoded values in series order.
func (s Series) ValuesJSON() ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(s))
	for i, p := range s {
		v, err := p.ValueJSON()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Total sums every value of the series.
func (s Series) Total() float64 {
	var total float64
	for _, p := range s {
		total += p.Value
	}
	return total
}
