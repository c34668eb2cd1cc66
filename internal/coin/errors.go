package coin

import "errors"

// Errors returned by the parameterizer. Each is terminal for the build that
// produced it: patching is deterministic, so a failure means the inputs and
// the template disagree.
var (
	ErrUnknownTemplateKind     = errors.New("unknown template kind")
	ErrIdentifierSubstitution  = errors.New("identifier substitution failed")
	ErrUnsupportedConstantType = errors.New("unsupported constant type")
	ErrConstantNotFound        = errors.New("constant not found in module")
	ErrEncoding                = errors.New("value does not fit constant type")
	ErrInvalidMetadata         = errors.New("invalid coin metadata")
)
