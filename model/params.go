package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kbukum/modelgate/errors"
)

// Temperature domain, boundaries inclusive.
const (
	MinTemperature = 0.0
	MaxTemperature = 2.0
)

// ParameterSet holds generation knobs. Each field is either set or absent;
// an absent max tokens means "backend default". The zero value is an empty set.
//
// ParameterSet is a value type: every operation returns a new set and never
// modifies the receiver, so a copy can be shared freely between goroutines.
type ParameterSet struct {
	temperature    float64
	hasTemperature bool
	maxTokens      int
	hasMaxTokens   bool
}

// NewParameterSet builds a set with both fields present.
func NewParameterSet(temperature float64, maxTokens int) (ParameterSet, error) {
	p, err := ParameterSet{}.WithTemperature(temperature)
	if err != nil {
		return ParameterSet{}, err
	}
	return p.WithMaxTokens(maxTokens)
}

// WithTemperature returns a copy with temperature set to v. It fails with
// INVALID_PARAMETER when v is outside [MinTemperature, MaxTemperature].
func (p ParameterSet) WithTemperature(v float64) (ParameterSet, error) {
	if !(v >= MinTemperature && v <= MaxTemperature) {
		return p, errors.InvalidParameter("temperature",
			fmt.Sprintf("%v is outside [%.1f, %.1f]", v, MinTemperature, MaxTemperature))
	}
	p.temperature = v
	p.hasTemperature = true
	return p, nil
}

// WithMaxTokens returns a copy with max tokens set to n. n must be positive.
func (p ParameterSet) WithMaxTokens(n int) (ParameterSet, error) {
	if n <= 0 {
		return p, errors.InvalidParameter("max_tokens", fmt.Sprintf("%d is not a positive integer", n))
	}
	p.maxTokens = n
	p.hasMaxTokens = true
	return p, nil
}

// WithoutMaxTokens returns a copy with max tokens unset.
func (p ParameterSet) WithoutMaxTokens() ParameterSet {
	p.maxTokens = 0
	p.hasMaxTokens = false
	return p
}

// Temperature returns the temperature and whether it is set.
func (p ParameterSet) Temperature() (float64, bool) {
	return p.temperature, p.hasTemperature
}

// MaxTokens returns the max tokens and whether it is set.
func (p ParameterSet) MaxTokens() (int, bool) {
	return p.maxTokens, p.hasMaxTokens
}

// IsEmpty reports whether no field is set.
func (p ParameterSet) IsEmpty() bool {
	return !p.hasTemperature && !p.hasMaxTokens
}

// Merge returns a new set in which every field present in override replaces
// the corresponding field of p. Absent override fields keep p's value.
func (p ParameterSet) Merge(override ParameterSet) ParameterSet {
	out := p
	if override.hasTemperature {
		out.temperature = override.temperature
		out.hasTemperature = true
	}
	if override.hasMaxTokens {
		out.maxTokens = override.maxTokens
		out.hasMaxTokens = true
	}
	return out
}

// String renders the set for logs, e.g. "temperature=0.7 max_tokens=unset".
func (p ParameterSet) String() string {
	var b strings.Builder
	b.WriteString("temperature=")
	if p.hasTemperature {
		b.WriteString(strconv.FormatFloat(p.temperature, 'g', -1, 64))
	} else {
		b.WriteString("unset")
	}
	b.WriteString(" max_tokens=")
	if p.hasMaxTokens {
		b.WriteString(strconv.Itoa(p.maxTokens))
	} else {
		b.WriteString("unset")
	}
	return b.String()
}

type parameterSetJSON struct {
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
}

// MarshalJSON encodes present fields only.
func (p ParameterSet) MarshalJSON() ([]byte, error) {
	var out parameterSetJSON
	if p.hasTemperature {
		t := p.temperature
		out.Temperature = &t
	}
	if p.hasMaxTokens {
		n := p.maxTokens
		out.MaxTokens = &n
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a partial set, validating each present field.
func (p *ParameterSet) UnmarshalJSON(data []byte) error {
	var in parameterSetJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return errors.InvalidParameter("parameters", err.Error())
	}
	var (
		out ParameterSet
		err error
	)
	if in.Temperature != nil {
		if out, err = out.WithTemperature(*in.Temperature); err != nil {
			return err
		}
	}
	if in.MaxTokens != nil {
		if out, err = out.WithMaxTokens(*in.MaxTokens); err != nil {
			return err
		}
	}
	*p = out
	return nil
}
