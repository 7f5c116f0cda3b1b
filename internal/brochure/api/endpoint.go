package api

import (
	"context"
	"time"

	"github.com/go-kit/kit/endpoint"
	"github.com/google/uuid"

	"github.com/geoirb/go-brochure/internal/brochure"
)

func makeGenerateEndpoint(svc brochure.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(generateRequest)
		return svc.Generate(ctx, brochure.Request{
			UUID: uuid.New().String(),
			RU:   req.RU,
			EN:   req.EN,
		})
	}
}

// timeout bounds the whole batch.
func timeout(d time.Duration) endpoint.Middleware {
	return func(next endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (interface{}, error) {
			if d <= 0 {
				return next(ctx, request)
			}
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next(ctx, request)
		}
	}
}
