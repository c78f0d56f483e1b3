package reader

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidInput = errors.New("invalid input")

var validate = validator.New(validator.WithRequiredStructEnabled())

// ImportInput describes a text to import. Pages fixes the page count; zero
// lets the service derive it from the number of sentences.
type ImportInput struct {
	LanguageID int64  `validate:"gt=0"`
	Title      string `validate:"required,max=256"`
	SourceURL  string `validate:"omitempty,url"`
	Text       string `validate:"required"`
	Pages      int
}

func (i *ImportInput) Validate() error {
	if err := validate.Struct(i); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// EditInput replaces the content of a text. An empty Title keeps the old one.
type EditInput struct {
	Title string `validate:"max=256"`
	Text  string `validate:"required"`
	Pages int
}

func (i *EditInput) Validate() error {
	if err := validate.Struct(i); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}
