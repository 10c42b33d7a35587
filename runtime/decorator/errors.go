package decorator

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode is a stable identifier for an annotator failure.
type ErrorCode string

const (
	CodeInvalidKey       ErrorCode = "MDA001"
	CodeKeyAlreadyExists ErrorCode = "MDA002"
	CodeKeyNotFound      ErrorCode = "MDA003"
	CodeMetadataNotFound ErrorCode = "MDA004"
	CodeInvalidTarget    ErrorCode = "MDA005"
	CodePropertyNotFound ErrorCode = "MDA006"
	CodeAmbiguousMember  ErrorCode = "MDA007"
)

// Sentinel errors. Every error returned by this package unwraps to one of them.
var (
	ErrInvalidKey       = errors.New("invalid metadata key")
	ErrKeyAlreadyExists = errors.New("metadata key already exists")
	ErrKeyNotFound      = errors.New("metadata key not found")
	ErrMetadataNotFound = errors.New("metadata not found")
	ErrInvalidTarget    = errors.New("invalid target")
	ErrPropertyNotFound = errors.New("property not found")
	ErrAmbiguousMember  = errors.New("ambiguous member name")
)

// ErrInvalidArguments is returned by Call when the arguments do not fit the
// installed definition.
var ErrInvalidArguments = errors.New("invalid call arguments")

var codes = map[error]ErrorCode{
	ErrInvalidKey:       CodeInvalidKey,
	ErrKeyAlreadyExists: CodeKeyAlreadyExists,
	ErrKeyNotFound:      CodeKeyNotFound,
	ErrMetadataNotFound: CodeMetadataNotFound,
	ErrInvalidTarget:    CodeInvalidTarget,
	ErrPropertyNotFound: CodePropertyNotFound,
	ErrAmbiguousMember:  CodeAmbiguousMember,
}

// Error carries the member and key a failure refers to.
type Error struct {
	Code   ErrorCode `json:"code"`
	Kind   error     `json:"-"`
	Member string    `json:"member,omitempty"`
	Key    string    `json:"key,omitempty"`

	// Candidates lists the full member names an ambiguous name matched.
	Candidates []string `json:"candidates,omitempty"`
}

func newError(kind error, member MemberKey, key string) *Error {
	return &Error{
		Code:   codes[kind],
		Kind:   kind,
		Member: member.String(),
		Key:    key,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	switch {
	case e.Key != "" && e.Member != "":
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Key, e.Member)
	case e.Member != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Member)
	case e.Key != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Key)
	}
	return e.Kind.Error()
}

// Unwrap returns the sentinel so errors.Is works against the Err* values.
func (e *Error) Unwrap() error {
	return e.Kind
}

// ToJSON returns the error as an indented JSON object
func (e *Error) ToJSON() (string, error) {
	payload := struct {
		*Error
		Message string `json:"message"`
	}{e, e.Kind.Error()}

	bytes, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
