package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCodec() *TokenCodec {
	return NewTokenCodec(CodecConfig{
		AccessSecret:  "access-secret-for-codec-tests",
		RefreshSecret: "refresh-secret-for-codec-tests",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Issuer:        "shop-test",
	})
}

func TestTokenCodec_AccessRoundTrip(t *testing.T) {
	c := testCodec()
	subject := uuid.New().String()

	token, err := c.IssueAccess(subject)
	require.NoError(t, err)

	claims, err := c.VerifyAccess(token)
	require.NoError(t, err)
	assert.Equal(t, subject, claims.Subject)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, "shop-test", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestTokenCodec_RefreshRoundTrip(t *testing.T) {
	c := testCodec()
	subject := uuid.New().String()

	token, err := c.IssueRefresh(subject)
	require.NoError(t, err)

	claims, err := c.VerifyRefresh(token)
	require.NoError(t, err)
	assert.Equal(t, subject, claims.Subject)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
}

func TestTokenCodec_CrossVerificationFails(t *testing.T) {
	c := testCodec()
	subject := uuid.New().String()

	access, err := c.IssueAccess(subject)
	require.NoError(t, err)
	refresh, err := c.IssueRefresh(subject)
	require.NoError(t, err)

	// The two classes are signed with independent secrets, so each fails the
	// other's signature check before the type claim is even consulted.
	_, err = c.VerifyRefresh(access)
	assert.Error(t, err)
	_, err = c.VerifyAccess(refresh)
	assert.Error(t, err)
}

func TestTokenCodec_UniqueTokenIDs(t *testing.T) {
	c := testCodec()
	subject := uuid.New().String()

	first, err := c.IssueRefresh(subject)
	require.NoError(t, err)
	second, err := c.IssueRefresh(subject)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	firstClaims, err := c.VerifyRefresh(first)
	require.NoError(t, err)
	secondClaims, err := c.VerifyRefresh(second)
	require.NoError(t, err)
	assert.NotEqual(t, firstClaims.ID, secondClaims.ID)
}

func TestTokenCodec_WrongIssuerRejected(t *testing.T) {
	other := NewTokenCodec(CodecConfig{
		AccessSecret:  "access-secret-for-codec-tests",
		RefreshSecret: "refresh-secret-for-codec-tests",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Issuer:        "someone-else",
	})

	token, err := other.IssueAccess(uuid.New().String())
	require.NoError(t, err)

	_, err = testCodec().VerifyAccess(token)
	assert.Error(t, err)
}

func TestTokenCodec_WrongSecretRejected(t *testing.T) {
	forged := NewTokenCodec(CodecConfig{
		AccessSecret:  "a-completely-different-secret",
		RefreshSecret: "another-completely-different-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Issuer:        "shop-test",
	})

	token, err := forged.IssueAccess(uuid.New().String())
	require.NoError(t, err)

	_, err = testCodec().VerifyAccess(token)
	assert.Error(t, err)
}

func TestTokenCodec_ExpiredTokenRejected(t *testing.T) {
	c := NewTokenCodec(CodecConfig{
		AccessSecret:  "access-secret-for-codec-tests",
		RefreshSecret: "refresh-secret-for-codec-tests",
		AccessTTL:     -1 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Issuer:        "shop-test",
	})

	token, err := c.IssueAccess(uuid.New().String())
	require.NoError(t, err)

	_, err = c.VerifyAccess(token)
	assert.Error(t, err)
}

func TestTokenCodec_NonUUIDSubjectRejected(t *testing.T) {
	c := testCodec()

	token, err := c.IssueAccess("admin")
	require.NoError(t, err)

	_, err = c.VerifyAccess(token)
	assert.Error(t, err)
}

func TestTokenCodec_GarbageRejected(t *testing.T) {
	c := testCodec()

	_, err := c.VerifyAccess("not-a-jwt")
	assert.Error(t, err)
	_, err = c.VerifyRefresh("")
	assert.Error(t, err)
}
