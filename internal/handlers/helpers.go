package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	apperr "github.com/studybuddy/studybuddy-api/internal/errors"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a service error to its HTTP status and stable message.
func writeError(w http.ResponseWriter, err error) {
	status, message := apperr.Map(err)
	writeJSON(w, status, map[string]string{"error": message})
}

// decodeAndValidate decodes the JSON body into payload and applies its
// validate tags. Both failure modes come back as ErrInvalidArgument so the
// response is a 400 with a usable message.
func decodeAndValidate(r *http.Request, payload any) error {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		return apperr.InvalidArgumentf("invalid request body")
	}
	if err := validate.Struct(payload); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return apperr.InvalidArgumentf("field %s failed validation rule %q", fe.Field(), fe.Tag())
		}
		return apperr.InvalidArgumentf("invalid request body")
	}
	return nil
}
