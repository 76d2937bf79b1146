package errors_test

import (
	"fmt"

	"github.com/agentstation/tradematch/pkg/errors"
)

// Example demonstrates basic error creation and checking.
func Example() {
	err := errors.NewMissingFieldError("reference", []string{"UTI Value", "Party1 LEI"})

	if errors.IsMissingField(err) {
		fmt.Println(err)
	}

	// Output: missing required field(s) in reference: UTI Value, Party1 LEI
}

// Example_warnings shows how empty inputs are separated from fatal errors.
func Example_warnings() {
	issues := []error{
		errors.NewEmptyInputWarning("primary"),
		errors.NewConfigurationError("matcher", "no key pairs configured", nil),
	}

	for _, err := range issues {
		if errors.IsFatal(err) {
			fmt.Println("fatal:", err)
			continue
		}
		fmt.Println("warning:", err)
	}

	// Output:
	// warning: dataset primary has no records
	// fatal: configuration error in matcher: no key pairs configured
}
