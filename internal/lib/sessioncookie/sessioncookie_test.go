package sessioncookie

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestSignParse(t *testing.T) {
	value, err := Sign("sess-1", secret)
	require.NoError(t, err)

	id, err := Parse(value, secret)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", id)

	_, err = Parse(value, "other-secret")
	assert.Error(t, err)

	_, err = Parse("sess-1", secret)
	assert.Error(t, err)
}

func TestParseRejectsOtherPurpose(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     "sess-1",
		"purpose": "email_verification",
	})
	value, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = Parse(value, secret)
	assert.ErrorContains(t, err, "purpose")
}

func TestWriteRead(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, Write(rec, "sess-2", secret, true))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, Name, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookies[0])
	assert.Equal(t, "sess-2", Read(r, secret))
	assert.Empty(t, Read(r, "other-secret"))
	assert.Empty(t, Read(httptest.NewRequest(http.MethodGet, "/", nil), secret))
}
