package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExportSignatureRoundTrip(t *testing.T) {
	GenerateSecretKey()

	payload := ExportPayload{UID: "100000001"}
	signature, err := GenerateExportSignature(payload)
	require.NoError(t, err)
	require.NotEmpty(t, signature)

	require.True(t, ValidateExportSignature(payload, signature))
}

func TestExportSignatureRejectsTampering(t *testing.T) {
	GenerateSecretKey()

	signature, err := GenerateExportSignature(ExportPayload{UID: "100000001"})
	require.NoError(t, err)

	require.False(t, ValidateExportSignature(ExportPayload{UID: "100000002"}, signature))
	require.False(t, ValidateExportSignature(ExportPayload{UID: "100000001"}, "not-a-signature"))
}

func TestKeyRotationInvalidatesOldSignatures(t *testing.T) {
	GenerateSecretKey()
	payload := ExportPayload{UID: "100000001"}
	signature, err := GenerateExportSignature(payload)
	require.NoError(t, err)

	GenerateSecretKey()
	require.False(t, ValidateExportSignature(payload, signature))
}
