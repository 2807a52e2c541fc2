package blob

import memorystore "mealweek/internal/infra/blob/memory"

// NewMemory returns an in-process archive that forgets everything on exit.
func NewMemory() Store { return memorystore.New() }
