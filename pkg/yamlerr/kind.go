package yamlerr

// Category groups error kinds by the stage that reports them.
type Category string

const (
	Lexical   Category = "lexical"
	Syntactic Category = "syntactic"
	Semantic  Category = "semantic"
)

// Kind identifies what went wrong.
type Kind int

const (
	// Lexical
	UnexpectedCharacter Kind = iota + 1
	InvalidEscape
	UnterminatedString
	InvalidNumber
	InvalidTag
	InvalidAnchor
	InvalidAlias
	InvalidDirective
	InvalidIndentation
	UnexpectedEOF
	EmptyScalar

	// Syntactic
	UnexpectedToken
	ExpectedToken
	DuplicateKey
	RecursionLimitExceeded
	Internal

	// Semantic
	UnresolvedAlias
	CircularReference
	ConflictingAnchor
	InvalidTagKind
	UnknownTag
	UnknownTagHandle
	TagResolutionFailed
	ValidationDepthExceeded
	ExpansionLimitExceeded
	InvalidDocumentStructure
	TypeMismatch
	ReferenceTracking
)

var kindNames = map[Kind]string{
	UnexpectedCharacter:      "UnexpectedCharacter",
	InvalidEscape:            "InvalidEscape",
	UnterminatedString:       "UnterminatedString",
	InvalidNumber:            "InvalidNumber",
	InvalidTag:               "InvalidTag",
	InvalidAnchor:            "InvalidAnchor",
	InvalidAlias:             "InvalidAlias",
	InvalidDirective:         "InvalidDirective",
	InvalidIndentation:       "InvalidIndentation",
	UnexpectedEOF:            "UnexpectedEOF",
	EmptyScalar:              "EmptyScalar",
	UnexpectedToken:          "UnexpectedToken",
	ExpectedToken:            "ExpectedToken",
	DuplicateKey:             "DuplicateKey",
	RecursionLimitExceeded:   "RecursionLimitExceeded",
	Internal:                 "Internal",
	UnresolvedAlias:          "UnresolvedAlias",
	CircularReference:        "CircularReference",
	ConflictingAnchor:        "ConflictingAnchor",
	InvalidTagKind:           "InvalidTagKind",
	UnknownTag:               "UnknownTag",
	UnknownTagHandle:         "UnknownTagHandle",
	TagResolutionFailed:      "TagResolutionFailed",
	ValidationDepthExceeded:  "ValidationDepthExceeded",
	ExpansionLimitExceeded:   "ExpansionLimitExceeded",
	InvalidDocumentStructure: "InvalidDocumentStructure",
	TypeMismatch:             "TypeMismatch",
	ReferenceTracking:        "ReferenceTracking",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Category returns the stage the kind belongs to.
func (k Kind) Category() Category {
	switch {
	case k >= UnexpectedCharacter && k <= EmptyScalar:
		return Lexical
	case k >= UnexpectedToken && k <= Internal:
		return Syntactic
	default:
		return Semantic
	}
}
