package sqlxrepos

import (
	"fmt"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/mentormatch/mentormatch/core"
)

// operator intervention: admin_shutdown, crash_shutdown, cannot_connect_now...
const pqClassOperatorIntervention pq.ErrorClass = "57"

// dbError wraps err with msg. A postgres server going away becomes a core shutdown error.
func dbError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code.Class() == pqClassOperatorIntervention {
		return core.NewShutdownError(fmt.Sprintf("%s: %s (%s)", msg, pqErr.Message, pqErr.Code.Name()))
	}
	return errors.Wrap(err, msg)
}
