package salesking

import (
	"errors"
	"strings"
)

// Error codes carried by *Error. They are stable and safe to compare against.
const (
	CodeSchemaNotFound        = "SCHEMA_NOTFOUND"
	CodeSchemaInvalid         = "SCHEMA_INVALID"
	CodeInvalidProperty       = "SET_INVALIDPROPERTY"
	CodePropertyValidation    = "SET_PROPERTYVALIDATION"
	CodeBindInvalidType       = "BIND_INVALIDTYPE"
	CodeCreateError           = "CREATE_ERROR"
	CodeUpdateError           = "UPDATE_ERROR"
	CodeLoadError             = "LOAD_ERROR"
	CodeLoadIDNotSet          = "LOAD_IDNOTSET"
	CodeDeleteError           = "DELETE_ERROR"
	CodeDeleteIDNotSet        = "DELETE_IDNOTSET"
	CodeEndpointNotFound      = "ENDPOINT_NOTFOUND"
	CodeFilterNotExisting     = "FILTER_NOTEXISTING"
	CodeFilterInvalid         = "FILTER_INVALID"
	CodeUndefinedMethod       = "CALL_UNDEFINEDMETHOD"
	CodeSortInvalidDirection  = "SORT_INVALIDDIRECTION"
	CodeSortByCannotSort      = "SORTBY_CANNOTSORT"
	CodeSortByInvalidProperty = "SORTBY_INVALIDPROPERTY"
	CodePerPageOnlyInt        = "PERPAGE_ONLYINT"
	CodeMissingConfig         = "INITLIBRARY_MISSINGCONF"
	CodeTransferError         = "REQUEST_TRANSFERERROR"
	CodeRequestTokenError     = "REQUESTTOKEN_ERROR"
)

// Sentinel errors, one per kind of failure. Every *Error unwraps to the
// sentinel matching its code.
var (
	ErrSchemaNotFound        = errors.New("schema not found")
	ErrSchemaInvalid         = errors.New("schema invalid")
	ErrInvalidProperty       = errors.New("invalid property")
	ErrPropertyValidation    = errors.New("property validation failed")
	ErrBindInvalidType       = errors.New("invalid bind data type")
	ErrCreate                = errors.New("create failed")
	ErrUpdate                = errors.New("update failed")
	ErrLoad                  = errors.New("load failed")
	ErrIDNotSet              = errors.New("id not set")
	ErrDelete                = errors.New("delete failed")
	ErrEndpointNotFound      = errors.New("endpoint not found")
	ErrFilterNotExisting     = errors.New("filter does not exist")
	ErrFilterInvalid         = errors.New("invalid filter value")
	ErrUndefinedMethod       = errors.New("undefined method")
	ErrSortInvalidDirection  = errors.New("invalid sort direction")
	ErrCannotSort            = errors.New("resource type cannot be sorted")
	ErrSortByInvalidProperty = errors.New("invalid sort property")
	ErrPerPage               = errors.New("invalid per page value")
	ErrMissingConfig         = errors.New("missing configuration")
	ErrTransfer              = errors.New("request transfer failed")
	ErrRequestToken          = errors.New("access token request failed")
)

var sentinels = map[string]error{
	CodeSchemaNotFound:        ErrSchemaNotFound,
	CodeSchemaInvalid:         ErrSchemaInvalid,
	CodeInvalidProperty:       ErrInvalidProperty,
	CodePropertyValidation:    ErrPropertyValidation,
	CodeBindInvalidType:       ErrBindInvalidType,
	CodeCreateError:           ErrCreate,
	CodeUpdateError:           ErrUpdate,
	CodeLoadError:             ErrLoad,
	CodeLoadIDNotSet:          ErrIDNotSet,
	CodeDeleteError:           ErrDelete,
	CodeDeleteIDNotSet:        ErrIDNotSet,
	CodeEndpointNotFound:      ErrEndpointNotFound,
	CodeFilterNotExisting:     ErrFilterNotExisting,
	CodeFilterInvalid:         ErrFilterInvalid,
	CodeUndefinedMethod:       ErrUndefinedMethod,
	CodeSortInvalidDirection:  ErrSortInvalidDirection,
	CodeSortByCannotSort:      ErrCannotSort,
	CodeSortByInvalidProperty: ErrSortByInvalidProperty,
	CodePerPageOnlyInt:        ErrPerPage,
	CodeMissingConfig:         ErrMissingConfig,
	CodeTransferError:         ErrTransfer,
	CodeRequestTokenError:     ErrRequestToken,
}

// Error is returned by every operation of this package.
type Error struct {
	// Op is the operation that failed, e.g. "Save" or "AddFilter".
	Op string

	// Code is the machine readable error code.
	Code string

	// Msg is a human readable description.
	Msg string

	// Context holds additional details such as the offending property and
	// value.
	Context map[string]any

	// Response is the server response for status errors.
	Response *Response

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	if e.Msg != "" {
		b.WriteString(e.Msg)
		if e.Err != nil {
			b.WriteString(": ")
		}
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the sentinel for the error code and the underlying cause.
func (e *Error) Unwrap() []error {
	var errs []error
	if s, ok := sentinels[e.Code]; ok {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// CodeOf returns the code of the first *Error in err's chain, or the empty
// string.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// ResponseOf returns the server response attached to err, if any.
func ResponseOf(err error) *Response {
	var e *Error
	if errors.As(err, &e) {
		return e.Response
	}
	return nil
}
