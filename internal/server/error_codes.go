package server

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument       = 1000
	ErrCodeInvalidJSON           = 1001
	ErrCodeRequestTooLarge       = 1002
	ErrCodeInvalidQuery          = 1003
	ErrCodeInvalidID             = 1004
	ErrCodeInvalidStatus         = 1005
	ErrCodeMissingRequired       = 1009
	ErrCodeSelfRelationship      = 1015
	ErrCodeRelationshipNotOnTask = 1016
	ErrCodeGroupDepthExceeded    = 1017
	ErrCodeGroupCycle            = 1018

	// Domain state (2xxx)
	ErrCodeNotFound              = 2000
	ErrCodeTaskNotFound          = 2001
	ErrCodeTaskIDExists          = 2101
	ErrCodeConflict              = 2102
	ErrCodeTypeNameTaken         = 2103
	ErrCodeTemplateNameTaken     = 2104
	ErrCodeGroupNotEmpty         = 2105
	ErrCodeTransitionBlocked     = 2201
	ErrCodeSystemTypeProtected   = 2202
	ErrCodeRelationshipTypeInUse = 2203

	// Auth & limits (3xxx)
	ErrCodeUnauthorized      = 3001
	ErrCodeForbidden         = 3002
	ErrCodeResourceExhausted = 3003

	// Internal/system (4xxx)
	ErrCodeInternal       = 4001
	ErrCodeStoreFailure   = 4002
	ErrCodeDataCorrupt    = 4003
	ErrCodeNotImplemented = 4005
)

// domainErrorCodes maps the string codes carried by domain errors to their
// numeric form.
var domainErrorCodes = map[string]int{
	"self_relationship":        ErrCodeSelfRelationship,
	"relationship_not_on_task": ErrCodeRelationshipNotOnTask,
	"group_depth_exceeded":     ErrCodeGroupDepthExceeded,
	"group_cycle":              ErrCodeGroupCycle,
	"type_name_taken":          ErrCodeTypeNameTaken,
	"template_name_taken":      ErrCodeTemplateNameTaken,
	"group_not_empty":          ErrCodeGroupNotEmpty,
	"transition_blocked":       ErrCodeTransitionBlocked,
	"system_type":              ErrCodeSystemTypeProtected,
	"relationship_type_in_use": ErrCodeRelationshipTypeInUse,
}

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 401:
		return ErrCodeUnauthorized
	case 403:
		return ErrCodeForbidden
	case 404:
		return ErrCodeNotFound
	case 409:
		return ErrCodeConflict
	case 429:
		return ErrCodeResourceExhausted
	case 500:
		return ErrCodeInternal
	case 501:
		return ErrCodeNotImplemented
	default:
		return 0
	}
}
