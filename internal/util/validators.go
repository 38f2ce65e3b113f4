package util

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	phonePattern        = regexp.MustCompile(`^(09\d{9}|989\d{9})$`)
	nationalCodePattern = regexp.MustCompile(`^\d{10}$`)
	digitsPattern       = regexp.MustCompile(`^\d+$`)
)

// ValidPhone accepts 09xxxxxxxxx and 989xxxxxxxxx mobile numbers.
func ValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

func ValidNationalCode(s string) bool {
	return nationalCodePattern.MatchString(s)
}

func IsDigits(s string) bool {
	return digitsPattern.MatchString(s)
}

var registerOnce sync.Once

// RegisterValidators installs the custom binding tags on gin's validator and
// makes field errors report JSON/form names instead of Go field names.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
		v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return ValidPhone(fl.Field().String())
		})
		v.RegisterValidation("nationalcode", func(fl validator.FieldLevel) bool {
			return ValidNationalCode(fl.Field().String())
		})
	})
}
