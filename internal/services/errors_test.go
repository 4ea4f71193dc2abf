package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceError(t *testing.T) {
	err := NewServiceError(CodeNotFound, "Record not found")
	assert.Equal(t, "Record not found", err.Error())
	assert.Nil(t, err.Details)

	wrapped := fmt.Errorf("lookup: %w", err)
	var svcErr *ServiceError
	require.True(t, errors.As(wrapped, &svcErr))
	assert.Equal(t, CodeNotFound, svcErr.Code)
}

func TestServiceError_JSON(t *testing.T) {
	err := NewServiceErrorWithDetails(CodeInvalidRequest, "Invalid record", map[string]interface{}{"field": "amountMl"})

	data, jerr := json.Marshal(err)
	require.NoError(t, jerr)
	assert.JSONEq(t, `{"code":"INVALID_REQUEST","message":"Invalid record","details":{"field":"amountMl"}}`, string(data))

	data, jerr = json.Marshal(NewServiceError(CodeFetchFailed, "boom"))
	require.NoError(t, jerr)
	assert.JSONEq(t, `{"code":"FETCH_FAILED","message":"boom"}`, string(data))
}
