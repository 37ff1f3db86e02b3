package handlers

import (
	"errors"
	"io"
	"net/http"

	"batchbook/internal/assets"
	"batchbook/internal/exceptions"
	"batchbook/internal/importer"
	applog "batchbook/internal/log"
)

const maxFormMemory = 8 << 20

// parseForm reads a multipart or urlencoded body.
func parseForm(r *http.Request) error {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return nil
}

// resolveImage applies the image controls of a form to current: the remove
// checkbox clears it and a selected file replaces it. Removed or replaced
// objects stay in storage.
func resolveImage(r *http.Request, ownerID, bucket, current string) (string, error) {
	url := current
	if r.PostFormValue("remove_image") != "" {
		url = ""
	}

	file, header, err := r.FormFile("image_file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return url, nil
		}
		return url, exceptions.InvalidInput("Could not read the uploaded image")
	}
	defer file.Close()

	uploaded, err := uploads.Upload(r.Context(), ownerID, assets.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}, bucket)
	if err != nil {
		return url, err
	}
	return uploaded, nil
}

// readDocument parses the optional write-up attached to a batch form.
func readDocument(r *http.Request) (importer.Document, error) {
	file, header, err := r.FormFile("document")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return importer.Document{}, exceptions.InvalidInput("Choose a document to import")
		}
		return importer.Document{}, exceptions.InvalidInput("Could not read the uploaded document")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, importer.MaxDocumentSize+1))
	if err != nil {
		return importer.Document{}, exceptions.InvalidInput("Could not read the uploaded document")
	}
	applog.Debug(r.Context(), "importing batch document", "name", header.Filename, "size", len(data))
	return importer.Parse(header.Filename, header.Header.Get("Content-Type"), data)
}
