package roster

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lucasb-eyer/go-colorful"
)

var ErrInvalid = errors.New("invalid roster")

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	_ = validate.RegisterValidation("color", validateColor)
}

func validateColor(fl validator.FieldLevel) bool {
	_, err := colorful.Hex(fl.Field().String())
	return err == nil
}

// Validator returns the shared validator with the roster-specific rules registered.
func Validator() *validator.Validate {
	return validate
}

func Validate(s *State) error {
	if s.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalid, s.Version)
	}
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, describe(err))
	}
	for _, c := range s.Competitors {
		for _, t := range AllTypes {
			e := c.Entry(t)
			if e.Division.Kind == DivisionDerived {
				return fmt.Errorf("%w: competitor %q: unresolved %v division", ErrInvalid, c.ID, t)
			}
			if _, ok := PoolIndex(e.Pool); !ok && e.Pool != "" {
				return fmt.Errorf("%w: competitor %q: bad %v pool %q", ErrInvalid, c.ID, t, e.Pool)
			}
		}
		if c.Forms.SubGroup != SubGroupNone {
			return fmt.Errorf("%w: competitor %q: sub-group is only allowed for sparring", ErrInvalid, c.ID)
		}
	}
	return nil
}

func describe(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, fmt.Sprintf("%v: failed %q", e.Namespace(), e.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
