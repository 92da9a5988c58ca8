package sql

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionCheckResult describes a detected SQL injection pattern in a
// caller-supplied free-text value.
type InjectionCheckResult struct {
	IsSQLi      bool   // True if SQL injection pattern detected
	Fingerprint string // libinjection fingerprint of the detected pattern
}

// CheckDescriptionForInjection screens a natural-language description for
// embedded SQL injection payloads before it is composed into a generation
// prompt. The probe validation downstream executes model output influenced by
// this text, so obvious smuggled SQL is rejected up front.
//
// Returns nil when the text is clean.
func CheckDescriptionForInjection(description string) *InjectionCheckResult {
	isSQLi, fingerprint := libinjection.IsSQLi(description)
	if isSQLi {
		return &InjectionCheckResult{
			IsSQLi:      true,
			Fingerprint: string(fingerprint),
		}
	}
	return nil
}
