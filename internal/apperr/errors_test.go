package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
)

func TestCodeOf(t *testing.T) {
	t.Run("Wrapped app error", func(t *testing.T) {
		err := fmt.Errorf("loading rental: %w", NotFound("rental", "r-1"))
		assert.Equal(t, CodeNotFound, CodeOf(err))
		assert.True(t, IsCode(err, CodeNotFound))
	})

	t.Run("Foreign error", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})

	t.Run("Nil", func(t *testing.T) {
		assert.Equal(t, Code(""), CodeOf(nil))
		assert.False(t, IsCode(nil, CodeInternal))
	})
}

func TestBackendKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Backend(cause, "insert item")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "insert item failed: connection refused", err.Error())
	assert.Equal(t, CodeBackend, err.Code())
}

func TestValidationDetails(t *testing.T) {
	err := Validation("validation failed", map[string]string{"title": "is required"})
	assert.Equal(t, map[string]string{"title": "is required"}, err.FieldErrors())

	noFields := Validation("bad", nil)
	assert.Nil(t, noFields.Details())
}

func TestMetadataFor(t *testing.T) {
	tests := []struct {
		code     Code
		http     int
		grpcCode codes.Code
	}{
		{CodeValidation, http.StatusBadRequest, codes.InvalidArgument},
		{CodeNotFound, http.StatusNotFound, codes.NotFound},
		{CodeStateConflict, http.StatusUnprocessableEntity, codes.FailedPrecondition},
		{CodeForbidden, http.StatusForbidden, codes.PermissionDenied},
		{CodeBackend, http.StatusServiceUnavailable, codes.Unavailable},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError, codes.Internal},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			meta := MetadataFor(tt.code)
			assert.Equal(t, tt.http, meta.HTTPStatus)
			assert.Equal(t, tt.grpcCode, meta.GRPCCode)
		})
	}
}
