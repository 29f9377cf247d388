// ABOUTME: Uniform success/data/error result for callers outside the engine
// ABOUTME: Folds an (value, error) pair into the shape the pages and the API return

package crud

// Result is the uniform outcome of a mutation.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Outcome converts a value/error pair into a Result.
func Outcome(data any, err error) Result {
	if err != nil {
		return Result{Error: err.Error()}
	}
	return Result{Success: true, Data: data}
}
