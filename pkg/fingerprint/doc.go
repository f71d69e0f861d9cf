// Package fingerprint derives a stable device hash from HTTP request
// characteristics, giving rate limiting a caller identity for requests that
// carry no authenticated account. The hash is one-way: it identifies a
// device/browser combination without being reversible to the inputs.
package fingerprint
