package forms

// FieldType is the widget name of a bound field, used by templates to pick markup.
func FieldType(b BoundField) string {
	return string(b.Widget)
}

// InputClass is the CSS class list for a bound field's control: "invalid" when it has
// errors, "valid" when the form was submitted and the field passed (passwords excepted).
func InputClass(b BoundField) string {
	css := ""
	if b.FormBound {
		if len(b.Errors) > 0 {
			css = "invalid"
		} else if b.Widget != PasswordInput {
			css = "valid"
		}
	}
	return "form-control " + css
}
