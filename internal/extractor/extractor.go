package extractor

import (
	"context"
	"errors"
)

// NoData is the sentinel the model places in any field it could not find.
const NoData = "BRAK DANYCH"

var ErrMalformedResponse = errors.New("extractor: malformed model response")

// Fields is the structured triple extracted from one operator message.
type Fields struct {
	UnitID           string `json:"numer_lokalu_budynku"`
	Defect           string `json:"rodzaj_usterki"`
	ResponsibleParty string `json:"podmiot_odpowiedzialny"`
}

func (f Fields) HasUnit() bool {
	return isPresent(f.UnitID)
}

func (f Fields) HasDefect() bool {
	return isPresent(f.Defect)
}

func (f Fields) HasResponsibleParty() bool {
	return isPresent(f.ResponsibleParty)
}

type Extractor interface {
	Extract(ctx context.Context, systemPrompt, userText string) (Fields, error)
}
