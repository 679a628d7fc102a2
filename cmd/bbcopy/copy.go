package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	go_blockbuffer "github.com/datnguyenzzz/nogodb/lib/go-blockbuffer"
	"github.com/datnguyenzzz/nogodb/lib/go-blockbuffer/bytesbufferpool"
	go_fs "github.com/datnguyenzzz/nogodb/lib/go-blockbuffer/fs"
	"github.com/datnguyenzzz/nogodb/lib/go-blockbuffer/stream"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

const maxLineSize = 16 * 1024 * 1024

type report struct {
	bytes            uint64
	stripes          int
	columns          int
	ioCount          uint64
	naturalWriteSize uint64
	elapsed          time.Duration
}

func (r *report) print(out io.Writer) {
	fmt.Fprintf(out, "written:            %s\n", humanize.IBytes(r.bytes))
	fmt.Fprintf(out, "stripes:            %d\n", r.stripes)
	fmt.Fprintf(out, "columns:            %d\n", r.columns)
	fmt.Fprintf(out, "io operations:      %s\n", humanize.Comma(int64(r.ioCount)))
	fmt.Fprintf(out, "natural write size: %s\n", humanize.IBytes(r.naturalWriteSize))
	fmt.Fprintf(out, "elapsed:            %s\n", r.elapsed)
}

func columnName(i int) string {
	return "col-" + strconv.Itoa(i)
}

func runCopy(ctx context.Context, in io.Reader, cfg Config, objectNum int64) (*report, error) {
	start := time.Now()
	s, err := cfg.parseSizes()
	if err != nil {
		return nil, err
	}
	if cfg.Delimiter == "" {
		return nil, fmt.Errorf("delimiter cannot be empty")
	}

	storage, err := go_fs.NewLocalStorage(cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	defer storage.Close()

	writable, _, err := storage.Create(go_fs.TypeColumnar, objectNum)
	if err != nil {
		return nil, err
	}
	natural := writable.NaturalWriteSize()
	writable = go_fs.NewThrottledWritable(ctx, writable, int(s.rateLimit))

	metrics := &go_blockbuffer.WriterMetrics{}
	w := stream.NewWriter(writable, bytesbufferpool.NewLimitedPool(int(s.poolLimit)),
		stream.WithBlockSize(s.blockSize),
		stream.WithMetrics(metrics))

	var (
		buffered uint64
		columns  int
		newline  = []byte{'\n'}
	)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), cfg.Delimiter)
		columns = max(columns, len(fields))
		for i, field := range fields {
			st, err := w.Stream(columnName(i))
			if err != nil {
				w.Abort()
				return nil, err
			}
			if _, err := st.Write([]byte(field)); err != nil {
				w.Abort()
				return nil, err
			}
			if _, err := st.Write(newline); err != nil {
				w.Abort()
				return nil, err
			}
			buffered += uint64(len(field)) + 1
		}

		if buffered >= s.stripeSize {
			if _, err := w.FlushStripe(); err != nil {
				w.Abort()
				return nil, err
			}
			zap.L().Debug("stripe handed off", zap.Uint64("bytes", buffered), zap.Int("stripe", len(w.Stripes())))
			buffered = 0
		}
	}
	if err := scanner.Err(); err != nil {
		w.Abort()
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return &report{
		bytes:            w.Offset(),
		stripes:          len(w.Stripes()),
		columns:          columns,
		ioCount:          metrics.IOCount.Load(),
		naturalWriteSize: natural,
		elapsed:          time.Since(start),
	}, nil
}

func probeNaturalWriteSize(dir string) (uint64, error) {
	storage, err := go_fs.NewLocalStorage(dir)
	if err != nil {
		return 0, err
	}
	defer storage.Close()

	probe, _, err := storage.Create(go_fs.TypeScratch, time.Now().UnixNano())
	if err != nil {
		return 0, err
	}
	defer probe.Abort()
	return probe.NaturalWriteSize(), nil
}
