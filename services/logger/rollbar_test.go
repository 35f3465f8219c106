package logsvc

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mentormatch/mentormatch/core/user"
)

func TestRollbarLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestLogger(log.New(&buf, "", 0))

	logger.Warn("stats cache unavailable", errors.New("dial tcp: connection refused"))
	logger.Error("Internal Server Error", user.User{ID: 7, Email: "alice@example.com"})
	logger.Info("anonymous", user.User{})

	assert.Equal(t,
		"WARN: stats cache unavailable\n"+
			"dial tcp: connection refused\n"+
			"ERROR: Internal Server Error\n"+
			"user: 7 <alice@example.com>\n"+
			"INFO: anonymous\n",
		buf.String(),
	)
}
