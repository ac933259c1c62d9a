package usecase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/shandysiswandi/gobacktest/internal/backtest/entity"
	"github.com/shandysiswandi/gobacktest/internal/pkg/pkgerror"
)

//nolint:gochecknoglobals // validator caches struct metadata; one instance is reused
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseParams decodes raw over DefaultParams. Empty input yields the
// defaults; unknown fields, trailing data and rule violations are errors.
func ParseParams(raw string) (entity.Params, error) {
	params := entity.DefaultParams()

	if strings.TrimSpace(raw) == "" {
		return params, nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&params); err != nil {
		return entity.Params{}, pkgerror.NewValidation("params_json is not valid", pkgerror.CodeInvalidInput, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return entity.Params{}, pkgerror.NewValidation("params_json must hold a single object", pkgerror.CodeInvalidInput, errors.New("trailing data after params object"))
	}

	if err := validate.Struct(params); err != nil {
		return entity.Params{}, pkgerror.NewValidation(describeValidation(err), pkgerror.CodeInvalidInput, err)
	}

	return params, nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "params_json is not valid"
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}

	return "invalid params: " + strings.Join(fields, ", ")
}
