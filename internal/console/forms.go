package console

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/NivaraGame/adaptive-lms-sub001/internal/api"
)

// form is one parameter entry screen for an endpoint.
type form struct {
	endpoint api.Endpoint
	fields   []formField
	focus    int
}

type formField struct {
	param api.Param
	input textinput.Model
}

// newForm builds input fields for every endpoint parameter, prefilled from
// the most recent invocation when available.
func newForm(ep api.Endpoint, prefill map[string]string) form {
	f := form{endpoint: ep}
	for _, p := range ep.Params {
		ti := textinput.New()
		ti.Placeholder = p.Hint
		ti.CharLimit = 500
		ti.Width = 40
		if v, ok := prefill[p.Name]; ok {
			ti.SetValue(v)
		}
		f.fields = append(f.fields, formField{param: p, input: ti})
	}
	if len(f.fields) > 0 {
		f.fields[0].input.Focus()
	}
	return f
}

// values collects the non-empty field values.
func (f form) values() map[string]string {
	params := map[string]string{}
	for _, fld := range f.fields {
		if v := fld.input.Value(); v != "" {
			params[fld.param.Name] = v
		}
	}
	return params
}

// setValues replaces field contents, e.g. when applying a history entry.
func (f *form) setValues(params map[string]string) {
	for i := range f.fields {
		v := params[f.fields[i].param.Name]
		f.fields[i].input.SetValue(v)
		f.fields[i].input.SetCursor(len(v))
	}
}

func (f *form) next() { f.setFocus((f.focus + 1) % max(len(f.fields), 1)) }

func (f *form) prev() {
	n := max(len(f.fields), 1)
	f.setFocus((f.focus - 1 + n) % n)
}

func (f *form) setFocus(i int) {
	if len(f.fields) == 0 {
		return
	}
	f.fields[f.focus].input.Blur()
	f.focus = i
	f.fields[f.focus].input.Focus()
}

// update forwards a message to the focused field.
func (f form) update(msg tea.Msg) (form, tea.Cmd) {
	if len(f.fields) == 0 {
		return f, nil
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return f, cmd
}
