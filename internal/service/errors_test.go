package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesByKind(t *testing.T) {
	err := duplicateAccount("an account with this email already exists", nil)

	assert.ErrorIs(t, err, ErrDuplicateAccount)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, "an account with this email already exists", err.Error())

	wrapped := fmt.Errorf("register: %w", err)
	assert.ErrorIs(t, wrapped, ErrDuplicateAccount)
	assert.Equal(t, KindDuplicateAccount, KindOf(wrapped))
}

func TestStoreFailureKeepsCause(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := storeFailure("failed to get account", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrStoreFailure)
	assert.Contains(t, err.Error(), "disk I/O error")
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, KindStoreFailure, KindOf(errors.New("boom")))
}
