// Package validation checks request bodies against declarative field rules.
//
// Rules are evaluated in order and every violation is collected; validation is
// never fail-fast. A failed Result converts to Errors, which carries HTTP status
// 400 and renders as the list clients receive under "errors":
//
//	{"errors": [
//	    {"type": "field", "value": "0", "msg": "Pages must be a positive integer",
//	     "path": "pages", "location": "body"}
//	]}
//
// CreateRules holds the rules for creating a book. Updates are not validated
// here; see book.ParsePatch.
package validation
