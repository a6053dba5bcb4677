package session

import (
	"errors"
	"strings"
	"testing"
)

func TestTextConfirmationRoundTrip(t *testing.T) {
	descriptions := []string{"cieknący kran", "", "it's 'quoted'", "multi\nline", "ends with '", "(Łącznie: 3)"}
	for _, d := range descriptions {
		msg := EncodeTextConfirmation(d, 4)
		marker, err := DecodeMarker(msg)
		if err != nil {
			t.Fatalf("decode %q: unexpected error: %v", msg, err)
		}
		if marker.Kind != MarkerText || marker.Description != d || marker.AssetRef != "" {
			t.Fatalf("round trip of %q gave %+v", d, marker)
		}
	}
}

func TestTextConfirmationFormat(t *testing.T) {
	got := EncodeTextConfirmation("cieknący kran", 1)
	want := "➕ Dodano (tekst): 'cieknący kran'\n(Łącznie: 1). Wpisz kolejną lub 'Koniec odbioru'."
	if got != want {
		t.Fatalf("unexpected confirmation:\n%q\nwant\n%q", got, want)
	}
}

func TestPhotoConfirmationRoundTrip(t *testing.T) {
	cases := []struct {
		filename, description, ref string
	}{
		{"rysa - Acme.jpg", "rysa (zdjęcie)", "1AbCdEfGhIjKlMnOp"},
		{"a'b - c.jpg", "a'b (zdjęcie)", "id-with-dashes_and_underscores"},
		{"x.jpg", "", "r"},
	}
	for _, c := range cases {
		msg := EncodePhotoConfirmation(c.filename, c.description, 2, c.ref)
		if !strings.HasPrefix(msg, "✅ Zdjęcie zapisane na Drive jako: '") {
			t.Fatalf("unexpected prefix: %q", msg)
		}
		marker, err := DecodeMarker(msg)
		if err != nil {
			t.Fatalf("decode %q: unexpected error: %v", msg, err)
		}
		if marker.Kind != MarkerPhoto || marker.Description != c.description || marker.AssetRef != c.ref {
			t.Fatalf("round trip of %+v gave %+v", c, marker)
		}
	}
}

func TestPhotoConfirmationHidesRefBetweenDelimiters(t *testing.T) {
	msg := EncodePhotoConfirmation("rysa - Acme.jpg", "rysa (zdjęcie)", 1, "file-1")
	if !strings.HasSuffix(msg, markerDelimiter+"file-1"+markerDelimiter) {
		t.Fatalf("expected trailing delimited ref, got %q", msg)
	}
	if strings.Count(msg, markerDelimiter) != 2 {
		t.Fatalf("expected exactly two delimiters in %q", msg)
	}
}

func TestDecodeMarker_NotRecognized(t *testing.T) {
	for _, text := range []string{"", "hello", "✅ Rozpoczęto odbiór dla:", " ➕ Dodano (tekst): 'x'\n(Łącznie: 1)."} {
		if _, err := DecodeMarker(text); !errors.Is(err, ErrNotRecognized) {
			t.Fatalf("expected ErrNotRecognized for %q, got %v", text, err)
		}
	}
}

func TestDecodeMarker_MalformedText(t *testing.T) {
	if _, err := DecodeMarker("➕ Dodano (tekst): 'kran' bez licznika"); !errors.Is(err, ErrMalformedMarker) {
		t.Fatalf("expected ErrMalformedMarker, got %v", err)
	}
}

func TestDecodeMarker_MalformedPhoto(t *testing.T) {
	valid := EncodePhotoConfirmation("f.jpg", "d (zdjęcie)", 1, "ref")
	cases := map[string]string{
		"delimiters stripped": strings.ReplaceAll(valid, markerDelimiter, ""),
		"trailing text":       valid + " edytowano",
		"extra delimiter":     valid + markerDelimiter,
		"empty ref":           EncodePhotoConfirmation("f.jpg", "d", 1, ""),
		"no description":      "✅ Zdjęcie zapisane na Drive jako: 'f.jpg'" + markerDelimiter + "ref" + markerDelimiter,
	}
	for name, text := range cases {
		if _, err := DecodeMarker(text); !errors.Is(err, ErrMalformedMarker) {
			t.Fatalf("%s: expected ErrMalformedMarker, got %v", name, err)
		}
	}
}
