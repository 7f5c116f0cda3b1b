package mq

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoirb/go-brochure/internal/brochure"
	responsepkg "github.com/geoirb/go-brochure/internal/response"
	"github.com/geoirb/go-brochure/internal/store"
)

var testPDF = []byte("%PDF-1.4 test")

type fakeService struct {
	req brochure.Request
	a   *brochure.Artifact
	err error
}

func (s *fakeService) Generate(_ context.Context, req brochure.Request) (*brochure.Artifact, error) {
	s.req = req
	return s.a, s.err
}

type published struct {
	UUID    string          `json:"uuid"`
	IsOk    bool            `json:"is_ok"`
	Payload json.RawMessage `json:"payload"`
}

func newTestHandler(svc brochure.Service, messages *[]published) func([]byte) {
	h := NewGenerateHandler(
		svc,
		NewGenerateTransport(responsepkg.BuildWithID),
		func(message []byte) error {
			var p published
			if err := json.Unmarshal(message, &p); err != nil {
				return err
			}
			*messages = append(*messages, p)
			return nil
		},
		time.Minute,
		log.NewNopLogger(),
	)
	return func(message []byte) {
		h(context.Background(), message)
	}
}

func TestHandle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "batch")
	require.NoError(t, os.Mkdir(dir, 0o700))
	path := filepath.Join(dir, "brochures.pdf")
	require.NoError(t, os.WriteFile(path, testPDF, 0o600))

	var messages []published
	svc := &fakeService{a: brochure.NewArtifact(dir, path, 6, 3)}
	handle := newTestHandler(svc, &messages)

	handle([]byte(`{"uuid":"req-1","ru":2,"en":1}`))
	assert.Equal(t, brochure.Request{UUID: "req-1", RU: 2, EN: 1}, svc.req)

	require.Len(t, messages, 1)
	assert.Equal(t, "req-1", messages[0].UUID)
	assert.True(t, messages[0].IsOk)
	var res response
	require.NoError(t, json.Unmarshal(messages[0].Payload, &res))
	assert.Equal(t, testPDF, res.Document)
	assert.Equal(t, 6, res.Pages)

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestHandleErrors(t *testing.T) {
	t.Run("service error", func(t *testing.T) {
		var messages []published
		handle := newTestHandler(&fakeService{err: &brochure.StageError{Stage: brochure.StageFetch, Err: store.ErrInsufficientRows}}, &messages)

		handle([]byte(`{"uuid":"req-2","ru":600}`))
		require.Len(t, messages, 1)
		assert.Equal(t, "req-2", messages[0].UUID)
		assert.False(t, messages[0].IsOk)
		var msg string
		require.NoError(t, json.Unmarshal(messages[0].Payload, &msg))
		assert.Contains(t, msg, store.ErrInsufficientRows.Error())
	})

	t.Run("malformed message", func(t *testing.T) {
		var messages []published
		svc := &fakeService{}
		handle := newTestHandler(svc, &messages)

		handle([]byte(`{"uuid":`))
		require.Len(t, messages, 1)
		assert.False(t, messages[0].IsOk)
		assert.Equal(t, brochure.Request{}, svc.req)
	})
}
