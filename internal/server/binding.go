package server

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// registerValidations installs custom binding validators on gin's
// validator engine. Safe to call more than once.
func registerValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	// Field errors report the json name the client sent, not the Go name.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("paymentterm", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "contra-entrega", "pago-adelantado", "mitad-adelanto":
			return true
		default:
			return false
		}
	})
	_ = v.RegisterValidation("paymentmethod", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "efectivo", "qr", "tarjeta":
			return true
		default:
			return false
		}
	})
}
