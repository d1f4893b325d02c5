package teamcity

import "sort"

// Params is an ordered parameter list. Setting a name that already exists replaces
// the earlier value in place, so later parameter groups override earlier ones.
type Params []Param

// Text sets a visible text parameter.
func (p *Params) Text(name, value string) {
	p.Set(Param{Name: name, Value: value, Kind: ParamText, Display: DisplayNormal})
}

// TextWithDescription sets a visible text parameter with a description.
func (p *Params) TextWithDescription(name, value, description string) {
	p.Set(Param{Name: name, Value: value, Kind: ParamText, Display: DisplayNormal, Description: description})
}

// Hidden sets a text parameter that is not shown in the run dialog.
func (p *Params) Hidden(name, value, description string) {
	p.Set(Param{Name: name, Value: value, Kind: ParamText, Display: DisplayHidden, Description: description})
}

// HiddenPassword sets a secret parameter that is not shown in the run dialog.
func (p *Params) HiddenPassword(name, value, description string) {
	p.Set(Param{Name: name, Value: value, Kind: ParamPassword, Display: DisplayHidden, Description: description})
}

// Set adds param or replaces the one with the same name.
func (p *Params) Set(param Param) {
	for i := range *p {
		if (*p)[i].Name == param.Name {
			(*p)[i] = param
			return
		}
	}
	*p = append(*p, param)
}

// Get returns the named parameter.
func (p Params) Get(name string) (Param, bool) {
	for _, param := range p {
		if param.Name == name {
			return param, true
		}
	}
	return Param{}, false
}

// Value returns the named parameter's value, or "" when unset.
func (p Params) Value(name string) string {
	param, _ := p.Get(name)
	return param.Value
}

// Sorted returns a copy ordered by name.
func (p Params) Sorted() Params {
	out := make(Params, len(p))
	copy(out, p)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
