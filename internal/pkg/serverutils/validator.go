package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"sahayak-be/pkg/apperror"
)

var validate = validator.New()

// ValidateRequest checks a bound request DTO against its validate tags and
// folds violations into one KindValidation error.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
		}
		return apperror.Newf(apperror.KindValidation, "invalid request: %s", strings.Join(fields, ", "))
	}
	return apperror.Wrap(apperror.KindValidation, err, "invalid request")
}
