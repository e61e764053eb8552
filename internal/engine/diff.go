package engine

// Diff computes the field-level changes between the last-known server
// snapshot and a submitted form. Only changed, non-empty values are
// kept, so a partial edit form never clears fields it did not carry.
// An empty result means the update is a no-op and no request is sent.
func Diff(original, form map[string]string) map[string]string {
	updates := make(map[string]string)
	for key, value := range form {
		if value == "" {
			continue
		}
		if value == original[key] {
			continue
		}
		updates[key] = value
	}
	return updates
}
