// Package kpi models per-club grading templates: the threshold documents
// that drive shot classification. Templates are immutable content; any
// edit produces a new document with a new content hash.
package kpi

import (
	"fmt"

	"github.com/fairwaykit/fairway/internal/canon"
)

// Direction states which way a metric improves.
type Direction string

const (
	HigherIsBetter Direction = "higher_is_better"
	LowerIsBetter  Direction = "lower_is_better"
)

// Threshold grades one metric. A higher-is-better metric carries a_min and
// b_min (at or above a_min grades A, at or above b_min grades B, below
// grades C). A lower-is-better metric carries a_max and b_max with the
// comparisons reversed.
type Threshold struct {
	Direction Direction
	AMin      *float64
	BMin      *float64
	AMax      *float64
	BMax      *float64
}

// Template is one club's grading document. Content is the full document as
// it was authored, including passthrough fields like source and
// kpi_version; the typed fields are parsed views of it. Hashing and
// storage always operate on Content so that no authored field is lost.
type Template struct {
	SchemaVersion     string
	Club              string
	AggregationMethod string
	Metrics           map[string]Threshold

	Content canon.Object
}

// ContentValue returns the full document for canonicalization and storage.
func (t Template) ContentValue() canon.Object {
	return t.Content
}

// MetricNames returns the metric names the template defines, unordered.
func (t Template) MetricNames() []string {
	names := make([]string, 0, len(t.Metrics))
	for name := range t.Metrics {
		names = append(names, name)
	}
	return names
}

// ParseCanonical rebuilds a template from stored canonical JSON. This is
// the read path for templates fetched by hash: a decode, never a
// re-canonicalization.
func ParseCanonical(data []byte) (Template, error) {
	v, err := canon.FromJSON(data)
	if err != nil {
		return Template{}, fmt.Errorf("parse template: %w", err)
	}
	obj, ok := v.(canon.Object)
	if !ok {
		return Template{}, fmt.Errorf("parse template: document is %T, expected object", v)
	}
	return fromContent(obj)
}

// fromContent builds the typed view over a validated document object.
func fromContent(content canon.Object) (Template, error) {
	t := Template{Content: content, Metrics: map[string]Threshold{}}

	var err error
	if t.SchemaVersion, err = stringField(content, "schema_version"); err != nil {
		return Template{}, err
	}
	if t.Club, err = stringField(content, "club"); err != nil {
		return Template{}, err
	}
	if t.AggregationMethod, err = stringField(content, "aggregation_method"); err != nil {
		return Template{}, err
	}

	metricsValue, ok := content["metrics"]
	if !ok {
		return Template{}, fmt.Errorf("template %q: missing metrics", t.Club)
	}
	metrics, ok := metricsValue.(canon.Object)
	if !ok {
		return Template{}, fmt.Errorf("template %q: metrics is %T, expected object", t.Club, metricsValue)
	}

	for name, raw := range metrics {
		spec, ok := raw.(canon.Object)
		if !ok {
			return Template{}, fmt.Errorf("template %q: metric %q is %T, expected object", t.Club, name, raw)
		}
		threshold, err := parseThreshold(spec)
		if err != nil {
			return Template{}, fmt.Errorf("template %q: metric %q: %w", t.Club, name, err)
		}
		t.Metrics[name] = threshold
	}

	return t, nil
}

func parseThreshold(spec canon.Object) (Threshold, error) {
	direction, err := stringField(spec, "direction")
	if err != nil {
		return Threshold{}, err
	}

	th := Threshold{Direction: Direction(direction)}
	switch th.Direction {
	case HigherIsBetter:
		if th.AMin, err = numberField(spec, "a_min"); err != nil {
			return Threshold{}, err
		}
		if th.BMin, err = numberField(spec, "b_min"); err != nil {
			return Threshold{}, err
		}
	case LowerIsBetter:
		if th.AMax, err = numberField(spec, "a_max"); err != nil {
			return Threshold{}, err
		}
		if th.BMax, err = numberField(spec, "b_max"); err != nil {
			return Threshold{}, err
		}
	default:
		return Threshold{}, fmt.Errorf("unknown direction %q", direction)
	}
	return th, nil
}

func stringField(obj canon.Object, field string) (string, error) {
	v, ok := obj[field]
	if !ok {
		return "", fmt.Errorf("missing field %q", field)
	}
	s, ok := v.(canon.String)
	if !ok {
		return "", fmt.Errorf("field %q is %T, expected string", field, v)
	}
	return string(s), nil
}

func numberField(obj canon.Object, field string) (*float64, error) {
	v, ok := obj[field]
	if !ok {
		return nil, fmt.Errorf("missing field %q", field)
	}
	switch n := v.(type) {
	case canon.Int:
		f := float64(n)
		return &f, nil
	case canon.Float:
		f := float64(n)
		return &f, nil
	}
	return nil, fmt.Errorf("field %q is %T, expected number", field, v)
}
