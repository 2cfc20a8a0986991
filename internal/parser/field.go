package parser

// FieldName is the identifier of a Datastar event stream field.
type FieldName string

// A Field represents an unprocessed field of a single event. The Name is the field's identifier, which is used to
// process the fields afterwards.
type Field struct {
	Name  FieldName
	Value string
}

// IsEventEnd returns true if the field is EventEnd.
func (f *Field) IsEventEnd() bool {
	return f.Name == EventEnd.Name
}

const (
	FieldNameData          = FieldName("data")
	FieldNameEvent         = FieldName("event")
	FieldNameID            = FieldName("id")
	FieldNameRetryDuration = FieldName("retryDuration")

	maxFieldNameLength = len(FieldNameRetryDuration)
)

// EventEnd is not an actual field. If a parser's Next method returns an EventEnd
// field it means that all the fields parsed before this one are part of a single event.
//
// The EventEnd field has no meaning outside parsing.
var EventEnd = Field{}

func getFieldName(b string) (FieldName, bool) {
	if len(b) == 0 {
		return "", false
	}
	switch FieldName(trimNewline(b)) {
	case FieldNameData:
		return FieldNameData, true
	case FieldNameEvent:
		return FieldNameEvent, true
	case FieldNameID:
		return FieldNameID, true
	case FieldNameRetryDuration:
		return FieldNameRetryDuration, true
	default:
		return "", isNewlineChar(b[0])
	}
}
