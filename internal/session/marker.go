package session

import (
	"fmt"
	"strings"
)

const (
	textConfirmationPrefix  = "➕ Dodano (tekst): '"
	photoConfirmationPrefix = "✅ Zdjęcie zapisane na Drive jako: '"
	photoDescriptionPrefix  = "'\n➕ Usterka dodana do listy: '"
	countSuffix             = "'\n(Łącznie:"

	// markerDelimiter wraps the asset ref at the end of a photo confirmation.
	// INVISIBLE SEPARATOR + ZERO WIDTH SPACE + INVISIBLE SEPARATOR.
	markerDelimiter = "\u2063\u200b\u2063"
)

type MarkerKind int

const (
	MarkerText MarkerKind = iota + 1
	MarkerPhoto
)

// Marker is what a confirmation message tells about the entry it confirmed.
type Marker struct {
	Kind        MarkerKind
	Description string
	AssetRef    string
}

func EncodeTextConfirmation(description string, count int) string {
	return fmt.Sprintf("%s%s%s %d). Wpisz kolejną lub 'Koniec odbioru'.", textConfirmationPrefix, description, countSuffix, count)
}

func EncodePhotoConfirmation(filename, description string, count int, assetRef string) string {
	return fmt.Sprintf("%s%s%s%s%s %d).%s%s%s",
		photoConfirmationPrefix, filename,
		photoDescriptionPrefix, description,
		countSuffix, count,
		markerDelimiter, assetRef, markerDelimiter)
}

const (
	// Upper bounds used to check a confirmation fits before the entry is recorded.
	confirmationCountBound = 99999
	assetRefBound          = 128
)

// TextConfirmationFits reports whether the confirmation for description stays
// within one Discord message, so the entry keeps an undo handle.
func TextConfirmationFits(description string) bool {
	return fitsMessage(EncodeTextConfirmation(description, confirmationCountBound))
}

func PhotoConfirmationFits(filename, description string) bool {
	return fitsMessage(EncodePhotoConfirmation(filename, description, confirmationCountBound, strings.Repeat("x", assetRefBound)))
}

// DecodeMarker recovers the entry a confirmation refers to. It returns
// ErrNotRecognized for foreign text and ErrMalformedMarker for damaged confirmations.
func DecodeMarker(text string) (Marker, error) {
	switch {
	case strings.HasPrefix(text, textConfirmationPrefix):
		desc, ok := between(text, textConfirmationPrefix)
		if !ok {
			return Marker{}, fmt.Errorf("%w: text confirmation has no count suffix", ErrMalformedMarker)
		}
		return Marker{Kind: MarkerText, Description: desc}, nil
	case strings.HasPrefix(text, photoConfirmationPrefix):
		parts := strings.Split(text, markerDelimiter)
		if len(parts) != 3 || parts[2] != "" {
			return Marker{}, fmt.Errorf("%w: photo confirmation has %d marker parts", ErrMalformedMarker, len(parts))
		}
		if parts[1] == "" {
			return Marker{}, fmt.Errorf("%w: photo confirmation has an empty asset ref", ErrMalformedMarker)
		}
		desc, ok := between(parts[0], photoDescriptionPrefix)
		if !ok {
			return Marker{}, fmt.Errorf("%w: photo confirmation has no description", ErrMalformedMarker)
		}
		return Marker{Kind: MarkerPhoto, Description: desc, AssetRef: parts[1]}, nil
	default:
		return Marker{}, ErrNotRecognized
	}
}

// between returns the text after the first prefix and before the next countSuffix.
func between(text, prefix string) (string, bool) {
	start := strings.Index(text, prefix)
	if start < 0 {
		return "", false
	}
	rest := text[start+len(prefix):]
	end := strings.Index(rest, countSuffix)
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}
