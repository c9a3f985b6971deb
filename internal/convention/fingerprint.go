package convention

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint digests the signed content of a convention: everything except
// the status, its justification, the validation date and the signatures.
// Any edit to what the parties agreed on changes the fingerprint.
func Fingerprint(c Convention) string {
	payload := c.Normalized()
	payload.Status = ""
	payload.StatusJustification = ""
	payload.DateValidation = nil
	payload.SignatureFingerprint = ""
	for _, role := range Roles {
		if identity := payload.Signatories.identity(role); identity != nil {
			identity.SignedAt = nil
		}
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		panic(fmt.Sprintf("convention: encode fingerprint payload: %v", err))
	}
	sum := blake2b.Sum256(encoded)
	return hex.EncodeToString(sum[:])
}
