package handlers

import "stix-ui/app/server/models"

// Page is what every template receives.
type Page struct {
	Title   string
	User    *models.User
	Flashes []string
	CSRF    string
	Data    any
}

type Link struct {
	Text string
	URL  string
}

type ListView struct {
	Heading string
	AddURL  string
	Columns []string
	Rows    []ListRow
	Pager   *Pager
}

type ListRow struct {
	Cells     []Link // Cells without URL are plain text
	EditURL   string
	DeleteURL string
}

type Pager struct {
	Page    int
	PageMax int64
	PrevURL string
	NextURL string
}

type FormView struct {
	Heading string
	Action  string
	Submit  string
	Fields  []FormField
	Links   []Link
}

type FormField struct {
	Name    string
	Label   string
	Type    string // text, email, password, date, textarea, checkbox, select, hidden
	Value   string
	Checked bool
	Options []Option
	Help    string
	Errors  []string
}

type Option struct {
	Value    string
	Label    string
	Selected bool
}

type DeleteView struct {
	Heading   string
	Subject   string
	Action    string
	CancelURL string
}

type ErrorView struct {
	Code int
	Text string
}

type CountEntry struct {
	Label string
	URL   string
	Count int64
}

func textField(name, label, value string, errs FormErrors) FormField {
	return FormField{Name: name, Label: label, Type: "text", Value: value, Errors: errs[name]}
}

func typedField(typ, name, label, value string, errs FormErrors) FormField {
	return FormField{Name: name, Label: label, Type: typ, Value: value, Errors: errs[name]}
}

func checkboxField(name, label string, checked bool, errs FormErrors) FormField {
	return FormField{Name: name, Label: label, Type: "checkbox", Checked: checked, Errors: errs[name]}
}

func selectField(name, label, value string, choices []Option, errs FormErrors) FormField {
	options := make([]Option, 0, len(choices))
	for _, choice := range choices {
		choice.Selected = choice.Value == value
		options = append(options, choice)
	}
	return FormField{Name: name, Label: label, Type: "select", Value: value, Options: options, Errors: errs[name]}
}
