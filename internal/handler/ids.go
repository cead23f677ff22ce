package handler

import (
	"fmt"

	"github.com/google/uuid"

	appErrors "github.com/salmaanit26/Query-Management-System/pkg/errors"
)

// checkIDs takes name/value pairs and rejects any non-empty value that is not
// a canonical UUID. Empty values are left to the service's own validation.
func checkIDs(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		name, value := pairs[i], pairs[i+1]
		if value == "" {
			continue
		}
		if _, err := uuid.Parse(value); err != nil || len(value) != 36 {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be a UUID", name))
		}
	}
	return nil
}
