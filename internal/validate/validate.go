// Package validate holds the input grammars shared by every catalog and
// lending operation. Each check is a pure predicate over a single value.
package validate

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

const (
	isbnLength   = 13
	userIDLength = 12
)

const (
	isbnRules   = "required,isbn13sum"
	userIDRules = "required,userid"
	titleRules  = "required"
	nameRules   = "required"
	authorRules = "required,authorname"
)

// Letter runs joined by single spaces, hyphens, apostrophes or periods.
var authorPattern = regexp.MustCompile(`^\p{L}+(?:[ .'\-]\p{L}+)*$`)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("isbn13sum", validateISBN13)
	validate.RegisterValidation("userid", validateUserID)
	validate.RegisterValidation("authorname", validateAuthorName)
}

// ISBN reports whether isbn is a 13-digit string whose 1/3 weighted digit sum
// is a multiple of ten.
func ISBN(isbn string) bool {
	return validate.Var(isbn, isbnRules) == nil
}

// UserID reports whether id is exactly twelve decimal digits.
func UserID(id string) bool {
	return validate.Var(id, userIDRules) == nil
}

// Title reports whether title is non-empty.
func Title(title string) bool {
	return validate.Var(title, titleRules) == nil
}

// UserName reports whether name is non-empty.
func UserName(name string) bool {
	return validate.Var(name, nameRules) == nil
}

// Author reports whether author matches the author-name grammar.
func Author(author string) bool {
	return validate.Var(author, authorRules) == nil
}

func validateISBN13(fl validator.FieldLevel) bool {
	isbn := fl.Field().String()
	if len(isbn) != isbnLength || !allDigits(isbn) {
		return false
	}
	return ISBN13Checksum(isbn)%10 == 0
}

func validateUserID(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	return len(id) == userIDLength && allDigits(id)
}

func validateAuthorName(fl validator.FieldLevel) bool {
	return authorPattern.MatchString(fl.Field().String())
}

// ISBN13Checksum returns the weighted digit sum of s, weighting even indexes
// by 1 and odd indexes by 3. s must contain only ASCII digits.
func ISBN13Checksum(s string) int {
	sum := 0
	for i := 0; i < len(s); i++ {
		d := int(s[i] - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return sum
}

// CheckDigit returns the trailing digit that makes the 12-digit prefix a valid
// ISBN-13. It returns -1 when prefix is not twelve ASCII digits.
func CheckDigit(prefix string) int {
	if len(prefix) != isbnLength-1 || !allDigits(prefix) {
		return -1
	}
	return (10 - ISBN13Checksum(prefix)%10) % 10
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
