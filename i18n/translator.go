package i18n

// Translator retrieves human-readable messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{}

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch code {
	case "invalid_type":
		return "invalid type"
	case "required":
		return "required property missing"
	case "unknown_key":
		return "unknown key"
	case "kind_missing":
		return "record kind missing"
	case "kind_unknown":
		return "unknown record kind"
	case "union_ambiguous":
		return "value matches more than one accepted shape"
	case "invalid_enum":
		return "value not in the accepted set"
	case "invalid_format":
		return "malformed value"
	case "pattern":
		return "value does not match the required pattern"
	case "out_of_range":
		return "value out of range"
	case "name_mismatch":
		return "member key and name attribute disagree"
	case "parse_error":
		return "parse error"
	case "missing_source":
		return "no source field or derivation policy"
	case "missing_attribute":
		return "required host attribute missing"
	}
	return code
}

var currentTranslator Translator = dictTranslator{}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
