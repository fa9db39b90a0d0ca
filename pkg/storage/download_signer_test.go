package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDownloadSignerRoundTrip(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Hour)
	token, expiresAt, err := signer.Sign("sheets/EX-2026-001.csv")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	path, err := signer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "sheets/EX-2026-001.csv", path)
}

func TestDownloadSignerExpired(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Millisecond*10)
	token, _, err := signer.Sign("sheets/EX-2026-001.csv")
	require.NoError(t, err)
	time.Sleep(time.Millisecond * 20)

	_, err = signer.Verify(token)
	require.Error(t, err)
}

func TestDownloadSignerRejectsTampering(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Hour)
	token, _, err := signer.Sign("sheets/EX-2026-001.csv")
	require.NoError(t, err)

	_, err = signer.Verify(token + "x")
	require.Error(t, err)

	other := NewDownloadSigner("different", time.Hour)
	_, err = other.Verify(token)
	require.Error(t, err)
}
