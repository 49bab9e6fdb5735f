package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	e "github.com/gartstein/companies/internal/company/errors"
)

// Query string parameter names of the list endpoint.
const (
	ParamName     = "name"
	ParamIndustry = "industry"
	ParamLocation = "location"
	ParamSize     = "size"
	ParamSort     = "sort"
	ParamPage     = "page"
	ParamLimit    = "limit"
)

// ParseValues reads a Spec from list endpoint query parameters.
func ParseValues(v url.Values) (Spec, error) {
	spec := Spec{
		Name:     v.Get(ParamName),
		Industry: v.Get(ParamIndustry),
		Location: v.Get(ParamLocation),
		Size:     v.Get(ParamSize),
		Sort:     v.Get(ParamSort),
	}

	var err error
	if spec.Page, err = parseInt(v, ParamPage); err != nil {
		return Spec{}, err
	}
	if spec.PageSize, err = parseInt(v, ParamLimit); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

// Values encodes s as list endpoint query parameters, omitting empty fields.
func (s Spec) Values() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val = strings.TrimSpace(val); val != "" {
			v.Set(key, val)
		}
	}
	set(ParamName, s.Name)
	set(ParamIndustry, s.Industry)
	set(ParamLocation, s.Location)
	set(ParamSize, s.Size)
	set(ParamSort, s.Sort)
	if s.Page > 0 {
		v.Set(ParamPage, strconv.Itoa(s.Page))
	}
	if s.PageSize > 0 {
		v.Set(ParamLimit, strconv.Itoa(s.PageSize))
	}
	return v
}

func parseInt(v url.Values, key string) (int, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", e.ErrInvalidInput, key)
	}
	return n, nil
}
