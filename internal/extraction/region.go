// Package extraction reads the recruitment-form fields out of CV text through a text-generation model.
package extraction

import (
	"strings"
)

// FormMarker is the heading that opens the recruitment form inside a CV.
const FormMarker = "QUESTIONNAIRE DE RECRUTEMENT"

// formPageIndex is the page the form is normally printed on.
const formPageIndex = 2

// WindowSize bounds the text kept after the marker, in characters.
const WindowSize = 6000

// LocateForm isolates the recruitment form so the model never sees the rest of the CV.
// When the third page holds the marker the whole page is returned; otherwise a
// fixed window starting at the marker. Without a marker it fails with FormNotFoundError.
func LocateForm(text string) (string, error) {
	pages := strings.Split(text, "\f")
	if len(pages) > formPageIndex && strings.Contains(pages[formPageIndex], FormMarker) {
		return pages[formPageIndex], nil
	}

	idx := strings.Index(text, FormMarker)
	if idx < 0 {
		return "", &FormNotFoundError{Marker: FormMarker}
	}

	window := []rune(text[idx:])
	if len(window) > WindowSize {
		window = window[:WindowSize]
	}
	return string(window), nil
}
