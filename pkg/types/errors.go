package types

import "errors"

// Field definition and type registry errors.
var (
	ErrInvalidDataType   = errors.New("invalid data type")
	ErrUnknownType       = errors.New("unknown type")
	ErrDuplicateType     = errors.New("type already registered")
	ErrInvalidName       = errors.New("invalid field name")
	ErrDuplicateStoreKey = errors.New("store key already used in carrier")
	ErrFieldNotFound     = errors.New("field not found")
	ErrTypeMismatch      = errors.New("type mismatch")
)

// Value conversion errors. Both are deterministic: retrying never helps.
var (
	ErrCast        = errors.New("cannot cast value")
	ErrDeserialize = errors.New("cannot deserialize stored value")
)

// Predicate errors.
var (
	ErrUnsupportedOperator = errors.New("operator not supported for data type")
	ErrInvalidOperand      = errors.New("invalid operand")
	ErrUnknownDialect      = errors.New("unknown dialect")
)

// Store errors.
var (
	ErrNotFound        = errors.New("record not found")
	ErrInvalidID       = errors.New("invalid record ID")
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrSchemaRequired  = errors.New("schema is required")
)
