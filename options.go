package go_blockbuffer

import "go.uber.org/zap"

type OptionFn func(*BlockBuffer)

type options struct {
	// maxChunkSize caps the staging chunk used while flushing, whatever the
	// sink prefers.
	maxChunkSize uint64

	logger *zap.Logger
}

const defaultMaxChunkSize = 1024 * 1024 * 1024 // 1GB

var defaultOptions = options{
	maxChunkSize: defaultMaxChunkSize,
}

func WithMaxChunkSize(size uint64) OptionFn {
	return func(b *BlockBuffer) {
		if size > 0 {
			b.opts.maxChunkSize = size
		}
	}
}

func WithLogger(logger *zap.Logger) OptionFn {
	return func(b *BlockBuffer) {
		b.opts.logger = logger
	}
}
