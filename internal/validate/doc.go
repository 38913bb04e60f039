// Package validate checks and sanitizes verification requests before any
// prompt is built or model is called.
//
// Validation covers argument shape (required task context, exactly one input
// mode, size caps). Sanitization covers file paths (traversal, null bytes)
// and secret redaction of code content, so credentials in reviewed code never
// leave the process.
package validate
