package apierr

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/tallyledger/internal/model"
)

func TestWriteErrorMapsSentinels(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{model.ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized},
		{model.ErrIdentityUnknown, http.StatusUnauthorized, CodeUnauthorized},
		{model.ErrUserUnknown, http.StatusNotFound, CodeUserUnknown},
		{model.ErrDrinkUnknown, http.StatusNotFound, CodeDrinkUnknown},
		{model.ErrFreeDrinksDisabled, http.StatusConflict, CodeFreeDrinksDisabled},
		{model.ErrCommentRequired, http.StatusBadRequest, CodeCommentRequired},
		{model.ErrCashUserMissing, http.StatusConflict, CodeCashUserMissing},
		{model.ErrCannotRemoveCount, http.StatusConflict, CodeCannotRemoveCount},
		{model.ErrInvalidPin, http.StatusBadRequest, CodeInvalidPin},
		{fmt.Errorf("%w: disk full", model.ErrPinSaveFailed), http.StatusInternalServerError, CodePinSaveFailed},
		{model.ErrConfirmationRequired, http.StatusPreconditionFailed, CodeConfirmationRequired},
		{model.ErrNegativePrice, http.StatusBadRequest, CodeInvalidRequest},
		{NewInvalidRequestError("bad"), http.StatusBadRequest, CodeInvalidRequest},
		{fmt.Errorf("something else"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.code+"/"+tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.status, Status(tt.err))
		})
	}
}
