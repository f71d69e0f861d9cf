// Package totp implements the one-time-password primitives behind two-factor
// authentication: RFC 4226 HOTP, RFC 6238 TOTP with clock-drift tolerance,
// provisioning URI generation for authenticator apps, single-use recovery
// codes, and AES-256-GCM helpers for encrypting secrets at rest.
//
// The package is self-contained and depends only on the standard crypto
// primitives plus the base32codec package for secret transport encoding, so
// services using it stay free of third-party OTP libraries.
//
// # Usage
//
// Enrolling a user:
//
//	secret, _ := totp.GenerateSecretKey()
//	uri, _ := totp.GetTOTPURI(totp.URIParams{
//	    Secret:      secret,
//	    AccountName: "alice@example.com",
//	    Issuer:      "Acme CMS",
//	})
//	// render uri as a QR code, then confirm with a code from the app:
//	ok, _ := totp.ValidateTOTP(secret, "123456")
//
// Validation accepts the previous, current, and next 30-second windows
// (DefaultWindow), and rejects malformed codes before computing any HMAC.
// Code comparison is constant-time.
//
// # Errors
//
// Exported operations return sentinel errors, possibly wrapped with
// errors.Join; inspect them with errors.Is against ErrInvalidSecret,
// ErrInvalidCode, and friends.
package totp
