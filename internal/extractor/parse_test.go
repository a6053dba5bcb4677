package extractor

import (
	"errors"
	"testing"
)

func TestParseFields_PlainJSON(t *testing.T) {
	got, err := ParseFields(`{"numer_lokalu_budynku":"Lokal 46/2","rodzaj_usterki":"cieknący kran","podmiot_odpowiedzialny":"Acme"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Fields{UnitID: "Lokal 46/2", Defect: "cieknący kran", ResponsibleParty: "Acme"}
	if got != want {
		t.Fatalf("unexpected fields: %+v", got)
	}
}

func TestParseFields_StripsCodeFences(t *testing.T) {
	raw := "```json\n{\"numer_lokalu_budynku\":\"15\",\"rodzaj_usterki\":\"brak prądu\",\"podmiot_odpowiedzialny\":\"serwis\"}\n```\n"
	got, err := ParseFields(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UnitID != "15" || got.Defect != "brak prądu" || got.ResponsibleParty != "serwis" {
		t.Fatalf("unexpected fields: %+v", got)
	}
}

func TestParseFields_MissingFieldsBecomeNoData(t *testing.T) {
	got, err := ParseFields(`{"rodzaj_usterki":"  ","numer_lokalu_budynku":104}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UnitID != "104" {
		t.Fatalf("expected numeric unit to be stringified, got %q", got.UnitID)
	}
	if got.Defect != NoData || got.ResponsibleParty != NoData {
		t.Fatalf("expected no-data sentinels, got %+v", got)
	}
	if got.HasDefect() || got.HasResponsibleParty() || !got.HasUnit() {
		t.Fatalf("unexpected presence flags for %+v", got)
	}
}

func TestParseFields_Malformed(t *testing.T) {
	for _, raw := range []string{"", "not json", "[1,2]", "null", `{"numer_lokalu_budynku":`} {
		if _, err := ParseFields(raw); !errors.Is(err, ErrMalformedResponse) {
			t.Fatalf("expected ErrMalformedResponse for %q, got %v", raw, err)
		}
	}
}
