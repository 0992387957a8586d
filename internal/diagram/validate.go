package diagram

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func validateSpec(spec NodeSpec) error {
	if err := validate.Struct(spec); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSpec, formatValidationError(err))
	}
	return nil
}

// ValidateText checks a title and description against the node limits.
func ValidateText(title, description string) error {
	return validateSpec(NodeSpec{Title: title, Description: description})
}

// ValidateColor accepts the colors the renderers draw: #rgb, #rrggbb and
// rgb(r, g, b).
func ValidateColor(c string) error {
	if err := validate.Var(c, "required,hexcolor|rgb"); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidColor, c)
	}
	return nil
}

// TruncateText cuts s to at most max runes and reports whether it did.
func TruncateText(s string, max int) (string, bool) {
	if utf8.RuneCountInString(s) <= max {
		return s, false
	}
	return string([]rune(s)[:max]), true
}

func formatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, e.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field, e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}
