// Package mocks provides mock implementations of core interfaces for testing.
package mocks

import (
	"context"
	"image"
	"reelsmith/internal/types"

	"github.com/stretchr/testify/mock"
)

// MockTextRecognizer is a mock implementation of types.TextRecognizer
type MockTextRecognizer struct {
	mock.Mock
}

func (m *MockTextRecognizer) Recognize(ctx context.Context, frame image.Image) ([]types.GlyphBox, error) {
	args := m.Called(ctx, frame)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.GlyphBox), args.Error(1)
}

// MockCaptionProvider is a mock implementation of types.CaptionProvider
type MockCaptionProvider struct {
	mock.Mock
}

func (m *MockCaptionProvider) Candidates(ctx context.Context, req types.CaptionRequest) ([]string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockObjectStore is a mock implementation of types.ObjectStore
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) List(ctx context.Context, prefix string) ([]types.Asset, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Asset), args.Error(1)
}

func (m *MockObjectStore) Download(ctx context.Context, key string, destPath string) error {
	args := m.Called(ctx, key, destPath)
	return args.Error(0)
}

func (m *MockObjectStore) Upload(ctx context.Context, localPath string, key string) (string, error) {
	args := m.Called(ctx, localPath, key)
	return args.String(0), args.Error(1)
}
