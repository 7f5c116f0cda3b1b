package api

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/go-kit/kit/transport"
	httptransport "github.com/go-kit/kit/transport/http"

	"github.com/geoirb/go-brochure/internal/brochure"
	"github.com/geoirb/go-brochure/internal/store"
)

const (
	attachmentName = "brochures.pdf"
	maxRequestSize = 1 << 10
)

//go:embed index.html
var indexPage []byte

type builder func(payload interface{}, err error) ([]byte, error)

// NewHandler returns http handler of brochure service.
func NewHandler(
	svc brochure.Service,
	builder builder,
	batchTimeout time.Duration,
	logger log.Logger,
) http.Handler {
	generate := httptransport.NewServer(
		timeout(batchTimeout)(makeGenerateEndpoint(svc)),
		decodeGenerateRequest,
		encodeGenerateResponse,
		httptransport.ServerErrorEncoder(newErrorEncoder(builder)),
		httptransport.ServerErrorHandler(transport.NewLogErrorHandler(level.Error(logger))),
	)

	r := chi.NewRouter()
	r.Get("/", index)
	r.Get("/healthz", healthz)
	r.Method(http.MethodPost, "/generate", generate)
	return r
}

func index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexPage)
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func decodeGenerateRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req generateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestSize)).Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", brochure.ErrInvalidRequest, err)
	}
	return req, nil
}

// encodeGenerateResponse streams merged PDF and removes the batch files.
func encodeGenerateResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	a := response.(*brochure.Artifact)
	defer a.Close()

	f, err := a.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+attachmentName+`"`)
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.Header().Set("X-Brochure-Pages", strconv.Itoa(a.Pages))
	w.WriteHeader(http.StatusOK)
	_, err = io.Copy(w, f)
	return err
}

func newErrorEncoder(builder builder) httptransport.ErrorEncoder {
	return func(_ context.Context, err error, w http.ResponseWriter) {
		body, _ := builder(nil, err)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(statusCode(err))
		w.Write(body)
	}
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, brochure.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrInsufficientRows):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
