package mq

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/geoirb/go-brochure/internal/brochure"
	"github.com/geoirb/go-brochure/internal/kafka"
)

type generateServe struct {
	svc       brochure.Service
	transport *GenerateTransport
	publish   kafka.Publish
	timeout   time.Duration
	logger    log.Logger
}

func (s *generateServe) Handle(ctx context.Context, message []byte) {
	var (
		document []byte
		pages    int
	)
	req, err := s.transport.DecodeRequest(message)
	if err != nil {
		err = fmt.Errorf("%w: %v", brochure.ErrInvalidRequest, err)
	} else {
		document, pages, err = s.generate(ctx, req)
	}

	if err = s.publish(s.transport.EncodeResponse(req.UUID, document, pages, err)); err != nil {
		level.Error(s.logger).Log("msg", "publish", "uuid", req.UUID, "err", err)
	}
}

func (s *generateServe) generate(ctx context.Context, req brochure.Request) ([]byte, int, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	a, err := s.svc.Generate(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	defer a.Close()

	document, err := os.ReadFile(a.Path)
	if err != nil {
		return nil, 0, err
	}
	return document, a.Pages, nil
}

// NewGenerateHandler ...
func NewGenerateHandler(
	svc brochure.Service,
	transport *GenerateTransport,
	publish kafka.Publish,
	timeout time.Duration,
	logger log.Logger,
) kafka.Handler {
	s := &generateServe{
		svc:       svc,
		transport: transport,
		publish:   publish,
		timeout:   timeout,
		logger:    log.WithPrefix(logger, "transport", "kafka"),
	}

	return s.Handle
}
