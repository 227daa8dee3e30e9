package types

// Helpers for building wire mappings. Each one writes the key only when the
// value is present, so a serialized request never carries null fields.

func putString(m map[string]any, key string, v *string) {
	if v != nil {
		m[key] = *v
	}
}

func putBool(m map[string]any, key string, v *bool) {
	if v != nil {
		m[key] = *v
	}
}

func putInt64(m map[string]any, key string, v *int64) {
	if v != nil {
		m[key] = *v
	}
}

func putTemplate(m map[string]any, key string, v TemplateID) {
	if !v.IsZero() {
		m[key] = v.wire()
	}
}

func putData(m map[string]any, key string, v map[string]any) {
	if v != nil {
		m[key] = v
	}
}

func putStrings(m map[string]any, key string, v []string) {
	if v != nil {
		m[key] = v
	}
}

func putStringMap(m map[string]any, key string, v map[string]string) {
	if v != nil {
		m[key] = v
	}
}
