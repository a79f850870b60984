package delivery

import "github.com/go-playground/validator/v10"

// Shared validator instance for recipient field checks. Providers reject
// malformed addresses with opaque errors, so failing before the network
// call gives a usable validation message instead.
var validate = validator.New()

func validEmail(address string) bool {
	return validate.Var(address, "required,email") == nil
}

func validPhone(number string) bool {
	return validate.Var(number, "required,e164") == nil
}
