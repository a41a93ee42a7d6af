package validate

import (
	"fmt"
	"regexp"

	"lifelink/pkg/types"

	"github.com/go-playground/validator/v10"
)

var phoneReg = regexp.MustCompile(`^\+?[\d\s\-\(\)]{10,}$`)

func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register validation %q: %v", tag, err))
		}
	}

	mustRegister("is-blood-type", isBloodType)
	mustRegister("is-organ", isOrgan)
	mustRegister("is-urgency", isUrgency)
	mustRegister("is-phone", isPhone)
	mustRegister("is-role", isRole)
}

// Empty values pass; required handles presence.

func isBloodType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || types.BloodType(value).Valid()
}

func isOrgan(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || types.Organ(value).Valid()
}

func isUrgency(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || types.Urgency(value).Valid()
}

func isPhone(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || phoneReg.MatchString(value)
}

func isRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || types.Role(value).Valid()
}
