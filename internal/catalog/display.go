package catalog

import (
	"time"

	"github.com/dustin/go-humanize"

	"batchbook/models"
)

type ImageSource string

const (
	SourceNone   ImageSource = ""
	SourceBatch  ImageSource = "batch"
	SourceRecipe ImageSource = "recipe"
)

// DisplayImage is the image shown for a recipe and where it came from.
type DisplayImage struct {
	URL    string
	Source ImageSource
}

func (d DisplayImage) Label() string {
	switch d.Source {
	case SourceBatch:
		return "Latest batch image"
	case SourceRecipe:
		return "Recipe image"
	default:
		return "No image"
	}
}

// ResolveDisplayImage prefers the latest batch image over the recipe's own.
func ResolveDisplayImage(recipe models.Recipe, latestBatchImage string) DisplayImage {
	if latestBatchImage != "" {
		return DisplayImage{URL: latestBatchImage, Source: SourceBatch}
	}
	if recipe.ImageURL != "" {
		return DisplayImage{URL: recipe.ImageURL, Source: SourceRecipe}
	}
	return DisplayImage{}
}

// latestBatchImage expects batches newest first.
func latestBatchImage(batches []models.Batch) string {
	for _, batch := range batches {
		if batch.ImageURL != "" {
			return batch.ImageURL
		}
	}
	return ""
}

// FormatCreationDate renders a relative label for anything created since
// the start of the current week (weeks start on Sunday) and a calendar date
// otherwise.
func FormatCreationDate(created, now time.Time) string {
	created = created.In(now.Location())
	if !created.Before(startOfWeek(now)) {
		return "Created " + humanize.RelTime(created, now, "ago", "from now")
	}
	return "Created on " + created.Format("Jan 2, 2006")
}

func startOfWeek(now time.Time) time.Time {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return midnight.AddDate(0, 0, -int(now.Weekday()))
}
