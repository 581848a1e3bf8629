package feedback

import (
	"errors"
	"fmt"
)

// wrapContext attaches a context error to err unless it already carries it.
func wrapContext(err, ctxErr error) error {
	if ctxErr == nil || errors.Is(err, ctxErr) {
		return err
	}
	return fmt.Errorf("%w: %w", ctxErr, err)
}
