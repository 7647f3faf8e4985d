package api

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/featherpress/featherpress/internal/models"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// registerValidations installs the custom binding validators used by the
// request schemas: "slug" for URL-safe identifiers and "feather" for the
// post content types.
func registerValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("feather", func(fl validator.FieldLevel) bool {
		return models.ValidFeather(models.Feather(fl.Field().String()))
	})
	_ = v.RegisterValidation("poststatus", func(fl validator.FieldLevel) bool {
		return models.ValidStatus(models.PostStatus(fl.Field().String()))
	})
}
