package scan

import (
	"context"
	"errors"

	"systrack/console/internal/models"
	"systrack/console/internal/upstream"
)

// LookupResult distinguishes "no such part" from every failure mode:
// not-found is a normal outcome, a NetworkError propagates.
type LookupResult struct {
	Barcode string
	Found   bool
	Part    models.Part
}

// Lookup maps decoded barcode text to a part record.
type Lookup struct {
	api *upstream.Client
}

func NewLookup(api *upstream.Client) *Lookup {
	return &Lookup{api: api}
}

func (l *Lookup) Resolve(ctx context.Context, token, text string) (LookupResult, error) {
	name := Normalize(text)
	if name == "" {
		return LookupResult{Barcode: name}, nil
	}

	part, err := l.api.PartByBarcode(ctx, token, name)
	if err != nil {
		var notFound *upstream.NotFoundError
		if errors.As(err, &notFound) {
			return LookupResult{Barcode: name}, nil
		}
		return LookupResult{}, err
	}
	return LookupResult{Barcode: name, Found: true, Part: part}, nil
}
