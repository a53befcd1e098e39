package protocol

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/codes"
)

// Uploader posts completed audio clips to the evaluator over HTTP, the
// out-of-band alternative to streaming them on the socket.
type Uploader struct {
	endpoint string
	client   *http.Client
}

func NewUploader(endpoint string) *Uploader {
	return &Uploader{
		endpoint: endpoint,
		client:   &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

// UploadClip sends one recorded clip as a multipart form with audio,
// trial_number and session_id fields.
func (u *Uploader) UploadClip(ctx context.Context, sessionID string, trialNumber int, wavData []byte) error {
	ctx, span := tracer.Start(ctx, "upload clip")
	defer span.End()

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)

	part, err := form.CreateFormFile("audio", fmt.Sprintf("trial_%d.wav", trialNumber))
	if err != nil {
		return fmt.Errorf("failed to build multipart form: %w", err)
	}
	if _, err := part.Write(wavData); err != nil {
		return fmt.Errorf("failed to write audio part: %w", err)
	}
	if err := form.WriteField("trial_number", strconv.Itoa(trialNumber)); err != nil {
		return fmt.Errorf("failed to write trial_number field: %w", err)
	}
	if err := form.WriteField("session_id", sessionID); err != nil {
		return fmt.Errorf("failed to write session_id field: %w", err)
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		recordedErr := fmt.Errorf("clip upload failed: %w", err)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		return recordedErr
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		recordedErr := fmt.Errorf("clip upload rejected with status %d", resp.StatusCode)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		return recordedErr
	}

	logger.InfoContext(ctx, "uploaded clip", "trial_number", trialNumber, "bytes", len(wavData))
	return nil
}
