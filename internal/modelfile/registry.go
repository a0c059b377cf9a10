package modelfile

import "fmt"

// Model describes a resolvable checkpoint. Path is filled in by Resolve.
type Model struct {
	ID   string
	Name string
	// Repository on the checkpoint host, e.g. "HuggingFaceTB/SmolLM2-135M-Instruct-GGUF".
	Repo string
	// Artifact filename inside the repository.
	File string
	// Expected artifact size in bytes (0 = unknown, skip the size check).
	SizeBytes int64
	// Absolute path of the local artifact once resolved.
	Path string
}

// DefaultModelID is the checkpoint served when no model is configured.
const DefaultModelID = "smollm2-135m-instruct"

// builtins maps known model ids to their artifacts. IDs are stable strings;
// quantization choice is part of the entry, not the id.
var builtins = map[string]Model{
	"smollm2-135m-instruct": {
		ID:   "smollm2-135m-instruct",
		Name: "SmolLM2 135M Instruct (Q8_0)",
		Repo: "HuggingFaceTB/SmolLM2-135M-Instruct-GGUF",
		File: "smollm2-135m-instruct-q8_0.gguf",
	},
	"smollm2-360m-instruct": {
		ID:   "smollm2-360m-instruct",
		Name: "SmolLM2 360M Instruct (Q8_0)",
		Repo: "HuggingFaceTB/SmolLM2-360M-Instruct-GGUF",
		File: "smollm2-360m-instruct-q8_0.gguf",
	},
	"tinyllama-1.1b-chat": {
		ID:   "tinyllama-1.1b-chat",
		Name: "TinyLlama 1.1B Chat (Q4_K_M)",
		Repo: "TheBloke/TinyLlama-1.1B-Chat-v1.0-GGUF",
		File: "tinyllama-1.1b-chat-v1.0.Q4_K_M.gguf",
	},
}

// Lookup returns the builtin entry for id.
func Lookup(id string) (Model, error) {
	m, ok := builtins[id]
	if !ok {
		return Model{}, fmt.Errorf("unknown model id: %s", id)
	}
	return m, nil
}

// KnownIDs lists the builtin model ids (order unspecified).
func KnownIDs() []string {
	out := make([]string, 0, len(builtins))
	for id := range builtins {
		out = append(out, id)
	}
	return out
}
