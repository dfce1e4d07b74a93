// Package errors provides structured error handling for pocketbible.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Asset errors (storage, binary formats)
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryAsset indicates asset storage and format errors.
	CategoryAsset Category = "ASSET"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
	// SeverityInfo indicates informational only.
	SeverityInfo Severity = "INFO"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound   = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    = "ERR_102_CONFIG_INVALID"
	ErrCodeConfigPermission = "ERR_103_CONFIG_PERMISSION"

	// Asset errors (200-299)
	ErrCodeAssetNotFound    = "ERR_201_ASSET_NOT_FOUND"
	ErrCodeFormatInvalid    = "ERR_202_FORMAT_INVALID"
	ErrCodeBoundsViolation  = "ERR_203_BOUNDS_VIOLATION"
	ErrCodeAllocationFailed = "ERR_204_ALLOCATION_FAILED"
	ErrCodeIOFailure        = "ERR_205_IO_FAILURE"
	ErrCodeManifestMismatch = "ERR_206_MANIFEST_MISMATCH"
	ErrCodeAssetLocked      = "ERR_207_ASSET_LOCKED"

	// Validation errors (400-499)
	ErrCodeInvalidReference = "ERR_401_INVALID_REFERENCE"
	ErrCodeInvalidQuery     = "ERR_402_INVALID_QUERY"
	ErrCodeInvalidSource    = "ERR_403_INVALID_SOURCE"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// Kind is the failure taxonomy shared by every asset reader.
type Kind int

const (
	// KindNone means no error.
	KindNone Kind = iota
	// KindNotFound is an expected, non-exceptional absence.
	KindNotFound
	// KindFormatInvalid is a magic/version mismatch or truncated header.
	KindFormatInvalid
	// KindBoundsViolation is a length field that would read past the blob end.
	KindBoundsViolation
	// KindAllocationFailure is a buffer that exceeds the memory budget.
	KindAllocationFailure
	// KindIOFailure is a read/seek/open failure after validation.
	KindIOFailure
	// KindOther covers configuration, validation and internal errors.
	KindOther
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNotFound:
		return "not_found"
	case KindFormatInvalid:
		return "format_invalid"
	case KindBoundsViolation:
		return "bounds_violation"
	case KindAllocationFailure:
		return "allocation_failure"
	case KindIOFailure:
		return "io_failure"
	default:
		return "other"
	}
}

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract numeric portion (e.g., "101" from "ERR_101_CONFIG_NOT_FOUND")
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryAsset
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
// Missing assets are expected on a device without media, so they only warn.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeAssetNotFound:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// kindFromCode maps an error code onto the asset failure taxonomy.
func kindFromCode(code string) Kind {
	switch code {
	case ErrCodeAssetNotFound:
		return KindNotFound
	case ErrCodeFormatInvalid, ErrCodeManifestMismatch:
		return KindFormatInvalid
	case ErrCodeBoundsViolation:
		return KindBoundsViolation
	case ErrCodeAllocationFailed:
		return KindAllocationFailure
	case ErrCodeIOFailure, ErrCodeAssetLocked:
		return KindIOFailure
	case "":
		return KindNone
	default:
		return KindOther
	}
}
