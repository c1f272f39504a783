// Package validator validates request and domain structs.
//
// The concrete implementation wraps go-playground/validator v10 and adds the
// domain rules for user classes and numeric passcodes.
package validator
