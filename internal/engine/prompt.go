package engine

// BuildPrompt concatenates the fixed prompt labels with the two inputs.
// The template is a wire contract: fixed order, newline separated, and the
// stray space before "Assistant-Answer:" included. No escaping, no length
// limits; arbitrary text passes through unchanged.
func BuildPrompt(system, user string) string {
	return "System-Prompt: " + system + "\nUser-Prompt: " + user + "\n Assistant-Answer: "
}
