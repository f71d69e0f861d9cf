// Package base32codec transcodes binary secrets to and from unpadded RFC 4648
// base32 text, the format consumed by TOTP authenticator apps.
//
// Decoding is deliberately forgiving: lowercase input and stray characters
// (spaces, dashes, '=' padding) are stripped instead of rejected, because
// users paste secrets from many sources. Encoding always produces canonical
// uppercase output.
package base32codec
