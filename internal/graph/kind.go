package graph

// Kind is the immutable tag of a Node.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindDocument
	KindValue
	KindContext
	KindEntity
	KindIdentifier
	KindSegment
	KindExplicitMember
	KindTypedMember
	KindPeriod
	KindStartDate
	KindEndDate
	KindInstant
	KindUnit
	KindMeasure
	KindUnitNumerator
	KindUnitDenominator
	KindLabel
	KindLabelArc
	KindLabelLink
	KindLoc
	KindPresentationLink
	KindPresentationArc
	KindCalculationLink
	KindCalculationArc
	KindDefinitionLink
	KindDefinitionArc
	KindRoleRef
	KindArcroleRef
	KindSchemaRef
	KindContinuation
	KindFragment
	KindOther

	kindCount
)

var kindNames = [kindCount]string{
	KindEmpty:            "empty",
	KindDocument:         "document",
	KindValue:            "value",
	KindContext:          "context",
	KindEntity:           "entity",
	KindIdentifier:       "identifier",
	KindSegment:          "segment",
	KindExplicitMember:   "explicitMember",
	KindTypedMember:      "typedMember",
	KindPeriod:           "period",
	KindStartDate:        "startDate",
	KindEndDate:          "endDate",
	KindInstant:          "instant",
	KindUnit:             "unit",
	KindMeasure:          "measure",
	KindUnitNumerator:    "unitNumerator",
	KindUnitDenominator:  "unitDenominator",
	KindLabel:            "label",
	KindLabelArc:         "labelArc",
	KindLabelLink:        "labelLink",
	KindLoc:              "loc",
	KindPresentationLink: "presentationLink",
	KindPresentationArc:  "presentationArc",
	KindCalculationLink:  "calculationLink",
	KindCalculationArc:   "calculationArc",
	KindDefinitionLink:   "definitionLink",
	KindDefinitionArc:    "definitionArc",
	KindRoleRef:          "roleRef",
	KindArcroleRef:       "arcroleRef",
	KindSchemaRef:        "schemaRef",
	KindContinuation:     "continuation",
	KindFragment:         "fragment",
	KindOther:            "other",
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, kindCount)
	for k, name := range kindNames {
		m[name] = Kind(k)
	}
	return m
}()

func (k Kind) String() string {
	if k >= kindCount {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind maps a tag name to its Kind. Names are case-sensitive.
func ParseKind(name string) (Kind, bool) {
	k, ok := kindByName[name]
	return k, ok
}

// Kinds returns every kind except KindEmpty, in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount-1)
	for k := KindDocument; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}
