package cooccurrence

import "context"

// Repository persists a built graph to an external graph store.
type Repository interface {
	// EnsureSchema creates the constraints and indexes the store needs.
	EnsureSchema(ctx context.Context) error

	// SaveGraph writes every node and edge of g, merging by word.
	SaveGraph(ctx context.Context, g *Graph) error

	// Reset removes every stored word node.
	Reset(ctx context.Context) error
}

//Personal.AI order the ending
