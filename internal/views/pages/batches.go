package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"batchbook/internal/catalog"
	"batchbook/internal/editor"
	"batchbook/internal/views/markup"
)

type BatchView struct {
	Detail catalog.BatchDetail
}

// Batch renders a stored batch in read mode.
func Batch(view BatchView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		d := view.Detail
		m := markup.New(w)
		m.Raw(`<article class="batch"><header><p class="recipe-name"><a`)
		m.URLAttr("href", "/recipes/"+d.Recipe.ID)
		m.Raw(`>`)
		m.Text(d.Recipe.Name)
		m.Raw(`</a></p><h1>`)
		m.Text(d.Batch.Name)
		m.Raw(`</h1><a`)
		m.URLAttr("href", "/batches/"+d.Batch.ID+"/edit")
		m.Raw(`>Edit batch</a></header>`)
		writeImage(m, d.Batch.ImageURL, d.Batch.Name)
		m.Raw(`<p class="notes">`)
		m.Text(DefaultDash(d.Batch.Notes))
		m.Raw(`</p>`)

		m.Raw(`<section><h2>Ingredients</h2><ul class="ingredients">`)
		for _, ingredient := range d.Ingredients {
			m.Raw(`<li>`)
			if amount := FormatAmount(ingredient.Amount, ingredient.Unit); amount != "" {
				m.Raw(`<span class="amount">`)
				m.Text(amount)
				m.Raw(`</span> `)
			}
			m.Text(ingredient.Description)
			if ingredient.Note != "" {
				m.Raw(` <em>`)
				m.Text(ingredient.Note)
				m.Raw(`</em>`)
			}
			m.Raw(`</li>`)
		}
		m.Raw(`</ul></section>`)

		m.Raw(`<section><h2>Steps</h2><ol class="steps">`)
		for _, step := range d.Steps {
			m.Raw(`<li`)
			m.Attr("value", fmt.Sprint(step.StepNumber))
			m.Raw(`>`)
			m.Text(step.Description)
			if step.Note != "" {
				m.Raw(` <em>`)
				m.Text(step.Note)
				m.Raw(`</em>`)
			}
			m.Raw(`</li>`)
		}
		m.Raw(`</ol></section></article>`)
		return m.Err()
	})
}

type BatchFormView struct {
	Editor     *editor.BatchEditor
	RecipeName string
	Action     string
	Error      string
	// Focus names the input that should receive focus, e.g. "step-2".
	Focus string
}

// BatchForm renders the batch editor. Every button posts the whole draft
// back with an action value so the server can rebuild the editor.
func BatchForm(view BatchFormView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		e := view.Editor
		m := markup.New(w)
		m.Raw(`<section class="panel batch-editor" id="batch-editor"><p class="recipe-name">`)
		m.Text(view.RecipeName)
		m.Raw(`</p><h1>`)
		if e.IsNew() {
			m.Text("New batch")
		} else {
			m.Text("Edit batch")
		}
		m.Raw(`</h1>`)
		writeError(m, view.Error)

		m.Raw(`<form method="post" enctype="multipart/form-data"`)
		m.URLAttr("action", view.Action)
		// first submit button in the form is the one Enter triggers
		m.Raw(`><button type="submit" name="action" value="save" hidden></button>`)
		writeField(m, field{label: "Name", name: "name", value: e.Batch.Name, required: true, autofocus: view.Focus == ""})
		writeTextarea(m, "Notes", "notes", e.Batch.Notes)
		writeImageInput(m, e.Batch.ImageURL)

		m.Raw(`<fieldset class="ingredients"><legend>Ingredients</legend>`)
		for i, d := range e.Ingredients {
			m.Raw(`<div class="row"><input type="hidden" name="ingredient_id"`)
			m.Attr("value", d.ID)
			m.Raw(`>`)
			writeField(m, field{
				label:     "Ingredient",
				name:      "ingredient_description",
				value:     d.Description,
				required:  true,
				autofocus: view.Focus == fmt.Sprintf("ingredient-%d", i),
			})
			writeField(m, field{label: "Amount", name: "ingredient_amount", value: AmountValue(d.Amount), kind: "number"})
			writeField(m, field{label: "Unit", name: "ingredient_unit", value: d.Unit})
			writeField(m, field{label: "Note", name: "ingredient_note", value: d.Note})
			writeActionButton(m, fmt.Sprintf("remove_ingredient:%d", i), "Remove")
			m.Raw(`</div>`)
		}
		writeActionButton(m, "add_ingredient", "Add ingredient")
		m.Raw(`</fieldset>`)

		m.Raw(`<fieldset class="steps"><legend>Steps</legend>`)
		for i, d := range e.Steps {
			m.Raw(`<div class="row"><span class="step-number">`)
			m.Int(i + 1)
			m.Raw(`</span><input type="hidden" name="step_id"`)
			m.Attr("value", d.ID)
			m.Raw(`>`)
			writeField(m, field{
				label:     "Step",
				name:      "step_description",
				value:     d.Description,
				required:  true,
				autofocus: view.Focus == fmt.Sprintf("step-%d", i),
			})
			writeField(m, field{label: "Note", name: "step_note", value: d.Note})
			writeActionButton(m, fmt.Sprintf("next_step:%d", i), "Next")
			writeActionButton(m, fmt.Sprintf("remove_step:%d", i), "Remove")
			m.Raw(`</div>`)
		}
		writeActionButton(m, "add_step", "Add step")
		m.Raw(`</fieldset>`)

		if e.IsNew() {
			m.Raw(`<fieldset class="import"><legend>Import from document</legend>`)
			m.Raw(`<input type="file" name="document" accept="application/pdf,text/plain">`)
			writeActionButton(m, "import", "Import")
			m.Raw(`</fieldset>`)
		}

		m.Raw(`<button type="submit" name="action" value="save" class="primary">Save batch</button></form></section>`)
		return m.Err()
	})
}

// writeActionButton renders a submit button that skips browser validation
// so drafts with blank rows can still be edited.
func writeActionButton(m *markup.Writer, action, label string) {
	m.Raw(`<button type="submit" name="action" formnovalidate`)
	m.Attr("value", action)
	m.Raw(`>`)
	m.Text(label)
	m.Raw(`</button>`)
}
