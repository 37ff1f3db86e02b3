package pages

import (
	"strconv"
	"strings"

	"batchbook/internal/views/markup"
)

// DefaultDash returns an em dash when the provided value is empty or whitespace.
func DefaultDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "—"
	}
	return value
}

// FormatAmount renders an optional quantity with its unit, e.g. "2.5 cups".
func FormatAmount(amount *float64, unit string) string {
	unit = strings.TrimSpace(unit)
	if amount == nil {
		return unit
	}
	value := strconv.FormatFloat(*amount, 'f', -1, 64)
	if unit == "" {
		return value
	}
	return value + " " + unit
}

// AmountValue is the form value of an optional amount.
func AmountValue(amount *float64) string {
	if amount == nil {
		return ""
	}
	return strconv.FormatFloat(*amount, 'f', -1, 64)
}

type field struct {
	label     string
	name      string
	value     string
	kind      string
	required  bool
	autofocus bool
	readonly  bool
}

func writeField(m *markup.Writer, f field) {
	kind := f.kind
	if kind == "" {
		kind = "text"
	}
	m.Raw(`<label>`)
	m.Text(f.label)
	m.Raw(`<input`)
	m.Attr("type", kind)
	m.Attr("name", f.name)
	if kind != "password" {
		m.Attr("value", f.value)
	}
	m.BoolAttr("required", f.required)
	m.BoolAttr("autofocus", f.autofocus)
	m.BoolAttr("readonly", f.readonly)
	m.Raw(`></label>`)
}

func writeTextarea(m *markup.Writer, label, name, value string) {
	m.Raw(`<label>`)
	m.Text(label)
	m.Raw(`<textarea`)
	m.Attr("name", name)
	m.Raw(`>`)
	m.Text(value)
	m.Raw(`</textarea></label>`)
}

func writeError(m *markup.Writer, message string) {
	if message == "" {
		return
	}
	m.Raw(`<p class="error" role="alert">`)
	m.Text(message)
	m.Raw(`</p>`)
}

func writeImage(m *markup.Writer, url, alt string) {
	if url == "" {
		return
	}
	m.Raw(`<img`)
	m.URLAttr("src", url)
	m.Attr("alt", alt)
	m.Raw(`>`)
}

// writeImageInput renders the upload control, keeping the current reference
// in a hidden field so a failed save does not lose it.
func writeImageInput(m *markup.Writer, current string) {
	m.Raw(`<fieldset class="image"><legend>Image</legend>`)
	m.Raw(`<input type="hidden" name="image_url"`)
	m.Attr("value", current)
	m.Raw(`>`)
	if current != "" {
		writeImage(m, current, "Current image")
		m.Raw(`<label><input type="checkbox" name="remove_image" value="1"> Remove image</label>`)
	}
	m.Raw(`<input type="file" name="image_file" accept="image/jpeg,image/png,image/gif"></fieldset>`)
}
