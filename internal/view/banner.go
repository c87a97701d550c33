package view

import (
	"context"
	"errors"

	"CoinBoard/internal/domain/models"
)

// Banner kinds besides the FetchError kinds.
const (
	KindEmptySelection = "empty_selection"
	KindMissingField   = "missing_field"
	KindTimeout        = "timeout"
	KindInternal       = "internal"
)

// ErrorBanner converts an error into the user-facing banner.
func ErrorBanner(err error) *models.ErrorView {
	if err == nil {
		return nil
	}
	if errors.Is(err, models.ErrEmptySelection) {
		return &models.ErrorView{Kind: KindEmptySelection, Message: "Please select at least one cryptocurrency."}
	}
	if errors.Is(err, models.ErrMissingField) {
		return &models.ErrorView{Kind: KindMissingField, Message: err.Error()}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &models.ErrorView{Kind: KindTimeout, Message: "Error fetching data: upstream did not answer in time"}
	}
	if fe, ok := models.AsFetchError(err); ok {
		return &models.ErrorView{Kind: string(fe.Kind), Status: fe.Status, Message: "Error fetching data: " + fe.Message}
	}
	return &models.ErrorView{Kind: KindInternal, Message: "Error fetching data: " + err.Error()}
}
