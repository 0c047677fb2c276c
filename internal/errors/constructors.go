package errors

// Constructors for the attendance error taxonomy. Each maps onto one
// user-visible message category so the UI layer can present accurate
// guidance without inspecting internals.

// ConnectionError indicates the store was unreachable after the retry budget
// was exhausted. Fatal to the calling operation; the whole operation may be
// retried by the caller.
func ConnectionError(err error, message string) *TimeclockError {
	return &TimeclockError{
		Category:  CategoryConnection,
		Severity:  SeverityFatal,
		Message:   message,
		Cause:     err,
		Retryable: true,
	}
}

// NotAuthenticatedError indicates no authenticated user context was supplied.
func NotAuthenticatedError() *TimeclockError {
	return New(CategoryAuth, SeverityWarning, "no authenticated user")
}

// InvalidPinError indicates the submitted PIN did not match the one on file.
func InvalidPinError() *TimeclockError {
	return New(CategoryPin, SeverityWarning, "attendance PIN does not match")
}

// AlreadyCheckedInError indicates a check-in was attempted while an open
// record exists for the user.
func AlreadyCheckedInError(recordID int64) *TimeclockError {
	return New(CategoryAlreadyCheckedIn, SeverityWarning, "user already has an open attendance record").
		WithContext("record_id", recordID)
}

// NoOpenRecordError indicates a check-out was attempted with no open record.
func NoOpenRecordError() *TimeclockError {
	return New(CategoryNoOpenRecord, SeverityWarning, "user has no open attendance record")
}

// NotFoundError indicates a referenced record vanished between read and
// write (lost race). The caller may re-attempt the whole operation.
func NotFoundError(message string) *TimeclockError {
	return &TimeclockError{
		Category:  CategoryNotFound,
		Severity:  SeverityError,
		Message:   message,
		Retryable: true,
	}
}

// ConstraintError indicates malformed record data at insert time. This is a
// programmer error and is never retried.
func ConstraintError(message string) *TimeclockError {
	return New(CategoryConstraint, SeverityError, message)
}

// StorageError wraps an unexpected failure from the backing store.
func StorageError(err error, message string) *TimeclockError {
	return Wrap(err, CategoryStorage, SeverityError, message)
}

// ConfigError indicates invalid or unloadable configuration.
func ConfigError(message string) *TimeclockError {
	return New(CategoryConfig, SeverityFatal, message)
}
