package queries

import (
	"github.com/go-playground/validator/v10"

	pkgerrors "kgraph/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateStruct(q any) error {
	if err := validate.Struct(q); err != nil {
		return pkgerrors.NewValidationError(err.Error()).WithCause(err)
	}
	return nil
}
