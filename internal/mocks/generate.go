// Package mocks provides mock implementations for testing the jobrelay system.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the core interfaces. The mocks are generated using go:generate directives
// and are checked in so tests build without a generation step.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockJobRepository(ctrl)
//	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(job, nil)
package mocks

// Generate mock for JobRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=job_repository_mock.go github.com/jobrelay/jobrelay/internal/core JobRepository

// Generate mock for WebhookNotifier interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=webhook_notifier_mock.go github.com/jobrelay/jobrelay/internal/core WebhookNotifier

// Generate mock for CacheRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=cache_repository_mock.go github.com/jobrelay/jobrelay/internal/core CacheRepository
