package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taskhub/internal/domain"
)

func TestGuard(t *testing.T) {
	var zero Verdict
	assert.Equal(t, VerdictDenied, zero)

	assert.NoError(t, Guard(VerdictGranted, "update task"))
	for _, v := range []Verdict{VerdictDenied, VerdictUnavailable} {
		err := Guard(v, "update task")
		assert.ErrorIs(t, err, domain.ErrForbidden, v.String())
		assert.EqualError(t, err, "not permitted to update task")
	}
}
