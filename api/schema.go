package api

// Attribute keys of a value snapshot. Raw keys come straight from the filed
// document; derived keys are added once the document has finished loading.
const (
	// Raw keys.
	AttrID            = "id"
	AttrParameterName = "parameterName"
	AttrPrefix        = "prefix"
	AttrURI           = "uri"
	AttrContextRef    = "contextRef"
	AttrDecimals      = "decimals"
	AttrContinuedAt   = "continuedAt"

	// Derived keys (AttrValue and AttrUnitRef overlay the raw attribute).
	AttrValue            = "value"
	AttrLabel            = "label"
	AttrUnitRef          = "unitRef"
	AttrDateLabel        = "dateLabel"
	AttrDate             = "date"
	AttrSegment          = "segment"
	AttrSegmentDimension = "segmentDimension"
	AttrIdentifier       = "identifier"
	AttrNumberOfMonths   = "numberOfMonths"
	AttrCompanyName      = "companyName"
	AttrTradingSymbol    = "tradingSymbol"
	AttrIncorporation    = "incorporation"
	AttrLocation         = "location"
	AttrSICCode          = "sicCode"
	AttrSICDescription   = "sicDescription"
	AttrForm             = "form"
	AttrFile             = "file"
)

// DerivedKeys lists the derived snapshot keys in a stable order.
var DerivedKeys = []string{
	AttrValue, AttrLabel, AttrUnitRef, AttrDateLabel, AttrDate, AttrSegment,
	AttrSegmentDimension, AttrIdentifier, AttrNumberOfMonths, AttrCompanyName,
	AttrTradingSymbol, AttrIncorporation, AttrLocation, AttrSICCode,
	AttrSICDescription, AttrForm, AttrFile,
}

// ValueRecord is the per-fact snapshot handed to reporting collaborators.
type ValueRecord struct {
	// Parameter is the reported concept (local name).
	Parameter string `json:"parameter"`
	// Context is the contextRef the fact was reported under.
	Context string `json:"context,omitempty"`
	// Attributes is the merged raw + derived attribute view.
	Attributes map[string]string `json:"attributes"`
}

// PresentationNode is the JSON shape of a presentation tree node.
type PresentationNode struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Label    string             `json:"label,omitempty"`
	Role     string             `json:"role,omitempty"`
	Order    float64            `json:"order"`
	Priority float64            `json:"priority"`
	Children []PresentationNode `json:"children,omitempty"`
}

// Estimate is a quarterly value that was not filed but derived from two
// cumulative values.
type Estimate struct {
	Parameter  string  `json:"parameter"`
	Label      string  `json:"label"`
	Segment    string  `json:"segment,omitempty"`
	Start      string  `json:"start"`
	End        string  `json:"end"`
	Months     int     `json:"months"`
	Value      string  `json:"value"` // exact decimal
	Cumulative string  `json:"cumulative"` // contextRef of the minuend
	Previous   string  `json:"previous"`   // contextRef of the subtrahend
}
