// Package qrcode renders provisioning URIs (and any other short content) as
// PNG QR codes, either raw bytes or a base64 data URI for direct embedding
// in HTML.
package qrcode
