package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lorrc/service-desk-analytics/internal/core/errors"
)

type inner struct {
	Levels []string `json:"levels" validate:"max=2,dive,oneof=LOW HIGH"`
}

type sampleRequest struct {
	Name   string   `json:"name" validate:"required,max=5"`
	Score  *float64 `json:"score" validate:"omitempty,gte=0,lte=100"`
	Nested *inner   `json:"nested"`
}

func newRequest(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestDecodeAndValidate_OK(t *testing.T) {
	req, err := DecodeAndValidate[sampleRequest](httptest.NewRecorder(), newRequest(`{"name":"Ana","score":50,"nested":{"levels":["LOW"]}}`), 0)
	require.NoError(t, err)
	assert.Equal(t, "Ana", req.Name)
	assert.Equal(t, 50.0, *req.Score)
}

func TestDecodeAndValidate_FieldErrors(t *testing.T) {
	_, err := DecodeAndValidate[sampleRequest](httptest.NewRecorder(), newRequest(`{"name":"","score":101,"nested":{"levels":["MID"]}}`), 0)

	var verrs *apperrors.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, []string{"This field is required"}, verrs.Errors["name"])
	assert.Equal(t, []string{"Must be at most 100"}, verrs.Errors["score"])
	assert.Equal(t, []string{"Must be one of: LOW, HIGH"}, verrs.Errors["nested.levels[0]"])
}

func TestDecodeAndValidate_LengthMessages(t *testing.T) {
	_, err := DecodeAndValidate[sampleRequest](httptest.NewRecorder(), newRequest(`{"name":"Ana Maria","nested":{"levels":["LOW","LOW","HIGH"]}}`), 0)

	var verrs *apperrors.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, []string{"Must be at most 5 characters"}, verrs.Errors["name"])
	assert.Equal(t, []string{"Must contain at most 2 items"}, verrs.Errors["nested.levels"])
}

func TestDecodeAndValidate_BadBodies(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		limit  int64
		status int
	}{
		{"empty", "", 0, http.StatusBadRequest},
		{"malformed", `{"name":`, 0, http.StatusBadRequest},
		{"too large", `{"name":"Ana"}`, 4, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeAndValidate[sampleRequest](httptest.NewRecorder(), newRequest(tt.body), tt.limit)
			var appErr *apperrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.status, appErr.StatusCode)
		})
	}
}

func TestParseTimeQueryParam(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?from=2025-03-01&to=2025-03-31T23:00:00Z&bad=yesterday", nil)

	from, err := ParseTimeQueryParam(r, "from")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", from.Format("2006-01-02"))

	to, err := ParseTimeQueryParam(r, "to")
	require.NoError(t, err)
	assert.Equal(t, 23, to.Hour())

	missing, err := ParseTimeQueryParam(r, "asOf")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = ParseTimeQueryParam(r, "bad")
	var verrs *apperrors.ValidationErrors
	assert.True(t, errors.As(err, &verrs))

	assert.Nil(t, ParseStringQueryParam(r, "filterId"))
	assert.Equal(t, "yesterday", *ParseStringQueryParam(r, "bad"))
}
