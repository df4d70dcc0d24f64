package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/psdrun/pkg/adapters/file"
	"github.com/aretw0/psdrun/pkg/domain"
)

// readInput reads path, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func readDocument(ctx context.Context, path string) (*domain.Document, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	doc, err := file.NewParser().Parse(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layer dump %s: %w", path, err)
	}
	return doc, nil
}
