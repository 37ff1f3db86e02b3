package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"batchbook/internal/catalog"
	"batchbook/internal/views/markup"
	"batchbook/models"
)

type HomeView struct {
	Cards []catalog.RecipeCard
	Error string
}

// Home lists the signed-in user's recipes.
func Home(view HomeView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := markup.New(w)
		m.Raw(`<section class="recipes"><header><h1>Your recipes</h1><a class="button" href="/recipes/new">New recipe</a></header>`)
		switch {
		case view.Error != "":
			writeError(m, view.Error)
		case len(view.Cards) == 0:
			m.Raw(`<p class="empty">No recipes yet. Create your first one.</p>`)
		default:
			m.Raw(`<ul class="recipe-list">`)
			for _, card := range view.Cards {
				writeRecipeCard(m, card)
			}
			m.Raw(`</ul>`)
		}
		m.Raw(`</section>`)
		return m.Err()
	})
}

func writeRecipeCard(m *markup.Writer, card catalog.RecipeCard) {
	m.Raw(`<li class="recipe-card"><a`)
	m.URLAttr("href", "/recipes/"+card.Recipe.ID)
	m.Raw(`>`)
	writeImage(m, card.Image.URL, card.Recipe.Name)
	m.Raw(`<h2>`)
	m.Text(card.Recipe.Name)
	m.Raw(`</h2></a><p class="created">`)
	m.Text(card.CreatedLabel)
	m.Raw(`</p></li>`)
}

type RecipeFormView struct {
	ID       string
	Name     string
	Notes    string
	ImageURL string
	Error    string
}

func (v RecipeFormView) action() string {
	if v.ID == "" {
		return "/recipes/new"
	}
	return "/recipes/" + v.ID + "/edit"
}

// RecipeForm creates or edits a recipe.
func RecipeForm(view RecipeFormView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := markup.New(w)
		m.Raw(`<section class="panel"><h1>`)
		if view.ID == "" {
			m.Text("New recipe")
		} else {
			m.Text("Edit recipe")
		}
		m.Raw(`</h1>`)
		writeError(m, view.Error)
		m.Raw(`<form method="post" enctype="multipart/form-data"`)
		m.URLAttr("action", view.action())
		m.Raw(`>`)
		writeField(m, field{label: "Name", name: "name", value: view.Name, required: true, autofocus: true})
		writeTextarea(m, "Notes", "notes", view.Notes)
		writeImageInput(m, view.ImageURL)
		m.Raw(`<button type="submit">Save recipe</button></form></section>`)
		return m.Err()
	})
}

type RecipeView struct {
	Detail catalog.RecipeDetail
}

// Recipe shows a recipe with its display image and batch history.
func Recipe(view RecipeView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		recipe := view.Detail.Recipe
		m := markup.New(w)
		m.Raw(`<article class="recipe"><header><h1>`)
		m.Text(recipe.Name)
		m.Raw(`</h1><p class="created">`)
		m.Text(view.Detail.CreatedLabel)
		m.Raw(`</p><a`)
		m.URLAttr("href", "/recipes/"+recipe.ID+"/edit")
		m.Raw(`>Edit recipe</a></header>`)

		m.Raw(`<figure class="display-image">`)
		writeImage(m, view.Detail.Image.URL, recipe.Name)
		m.Raw(`<figcaption>`)
		m.Text(view.Detail.Image.Label())
		m.Raw(`</figcaption></figure>`)

		m.Raw(`<p class="notes">`)
		m.Text(DefaultDash(recipe.Notes))
		m.Raw(`</p>`)

		m.Raw(`<section class="batches"><header><h2>Batches</h2><a class="button"`)
		m.URLAttr("href", "/recipes/"+recipe.ID+"/batches/new")
		m.Raw(`>Start `)
		m.Text(models.DefaultBatchName(view.Detail.NextBatchNumber))
		m.Raw(`</a></header>`)
		if len(view.Detail.Batches) == 0 {
			m.Raw(`<p class="empty">No batches yet.</p>`)
		} else {
			m.Raw(`<ol class="batch-list">`)
			for _, batch := range view.Detail.Batches {
				m.Raw(`<li><a`)
				m.URLAttr("href", "/batches/"+batch.ID)
				m.Raw(`>`)
				m.Text(batch.Name)
				m.Raw(`</a> <span class="batch-date">`)
				m.Text(batch.CreatedOn.Format("Jan 2, 2006"))
				m.Raw(`</span></li>`)
			}
			m.Raw(`</ol>`)
		}
		m.Raw(`</section></article>`)
		return m.Err()
	})
}
