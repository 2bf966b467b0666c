// SPDX-License-Identifier: Apache-2.0

package vec

import "go.uber.org/zap"

type config struct {
	allocator Allocator
	logger    *zap.Logger
}

// Option represents a configuration option for a vector.
type Option func(*config)

// WithAllocator sets the allocator the vector takes its storage blocks from.
// If no allocator is set, blocks are made on the Go heap.
func WithAllocator(a Allocator) Option {
	return func(c *config) {
		c.allocator = a
	}
}

// WithLogger sets the logger used to trace reallocations at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}
