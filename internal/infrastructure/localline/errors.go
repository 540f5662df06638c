package localline

import "errors"

var (
	// ErrAuthFailed indicates the token endpoint rejected the credentials
	ErrAuthFailed = errors.New("localline: authentication failed")

	// ErrUnavailable indicates the API could not be reached
	ErrUnavailable = errors.New("localline: platform unavailable")

	// ErrRequestFailed indicates the API returned a non-success status
	ErrRequestFailed = errors.New("localline: request failed")

	// ErrInvalidResponse indicates the API returned an unparsable body
	ErrInvalidResponse = errors.New("localline: invalid response")

	// ErrExportTimeout indicates an export did not complete within the poll budget
	ErrExportTimeout = errors.New("localline: export not complete after polling limit")

	// ErrExportFailed indicates the platform reported the export as failed
	ErrExportFailed = errors.New("localline: export failed")

	// ErrResponseTooLarge indicates a download exceeded the configured size cap
	ErrResponseTooLarge = errors.New("localline: response exceeds size limit")
)
