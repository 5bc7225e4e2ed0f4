package schema

import (
	"encoding/json"
	"fmt"
	"math"
)

// jsonFloat marshals non-finite values as the string sentinels "inf" and
// "-inf". encoding/json rejects ±Inf outright, and comparison rows carry
// them whenever the reference displacement is zero.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsInf(v, 1):
		return []byte(`"inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-inf"`), nil
	case math.IsNaN(v):
		return []byte(`"nan"`), nil
	}
	return json.Marshal(v)
}

func (f *jsonFloat) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case "inf":
			*f = jsonFloat(math.Inf(1))
		case "-inf":
			*f = jsonFloat(math.Inf(-1))
		case "nan":
			*f = jsonFloat(math.NaN())
		default:
			return fmt.Errorf("invalid float sentinel %q", s)
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = jsonFloat(v)
	return nil
}

// MarshalJSON substitutes string sentinels for a non-finite relative bound.
func (t ToleranceSetting) MarshalJSON() ([]byte, error) {
	type alias ToleranceSetting
	return json.Marshal(struct {
		alias
		Relative jsonFloat `json:"relative"`
	}{alias(t), jsonFloat(t.Relative)})
}

// UnmarshalJSON accepts both plain numbers and the string sentinels.
func (t *ToleranceSetting) UnmarshalJSON(data []byte) error {
	type alias ToleranceSetting
	aux := struct {
		*alias
		Relative jsonFloat `json:"relative"`
	}{alias: (*alias)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.Relative = float64(aux.Relative)
	return nil
}

// MarshalJSON substitutes string sentinels for the error fields that go
// infinite when the reference displacement is zero.
func (c ComparisonResult) MarshalJSON() ([]byte, error) {
	type alias ComparisonResult
	return json.Marshal(struct {
		alias
		RelativeError     jsonFloat `json:"relative_error"`
		PercentDifference jsonFloat `json:"percent_difference"`
	}{alias(c), jsonFloat(c.RelativeError), jsonFloat(c.PercentDifference)})
}

// UnmarshalJSON accepts both plain numbers and the string sentinels.
func (c *ComparisonResult) UnmarshalJSON(data []byte) error {
	type alias ComparisonResult
	aux := struct {
		*alias
		RelativeError     jsonFloat `json:"relative_error"`
		PercentDifference jsonFloat `json:"percent_difference"`
	}{alias: (*alias)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.RelativeError = float64(aux.RelativeError)
	c.PercentDifference = float64(aux.PercentDifference)
	return nil
}

// MarshalJSON substitutes a string sentinel for an infinite relative error.
func (a AdditionalComparison) MarshalJSON() ([]byte, error) {
	type alias AdditionalComparison
	return json.Marshal(struct {
		alias
		RelativeError jsonFloat `json:"relative_error"`
	}{alias(a), jsonFloat(a.RelativeError)})
}

// UnmarshalJSON accepts both plain numbers and the string sentinel.
func (a *AdditionalComparison) UnmarshalJSON(data []byte) error {
	type alias AdditionalComparison
	aux := struct {
		*alias
		RelativeError jsonFloat `json:"relative_error"`
	}{alias: (*alias)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	a.RelativeError = float64(aux.RelativeError)
	return nil
}
