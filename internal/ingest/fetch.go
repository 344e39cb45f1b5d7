package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/scalli-crm/cliente-scalli-sub000/internal/utils"
)

// FetchError cubre fallas de transporte y respuestas no-2xx del link de
// export. Es reintentable y nunca pisa el último snapshot bueno.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ErrEmptyDataset: el parseo anduvo pero no produjo ninguna fila usable.
// Casi siempre es un link de export mal configurado, no un problema de red.
var ErrEmptyDataset = errors.New("empty dataset")

// FetchRaw trae el texto tabular crudo de un origen. El engine es agnóstico
// de cómo se obtuvo: bytes de entrada, texto de salida, puede fallar.
func FetchRaw(ctx context.Context, c HTTPClient, url string) (string, error) {
	if url == "" {
		return "", &FetchError{URL: url, Err: errors.New("empty url")}
	}
	var body string
	bo := utils.NewBackoff(100*time.Millisecond, 150*time.Millisecond, 2)
	err := bo.Do(func(i int) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return &FetchError{URL: url, Err: err}
		}
		resp, err := c.Do(req)
		if err != nil {
			return &FetchError{URL: url, Err: err}
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
			return &FetchError{URL: url, Status: resp.StatusCode}
		}
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return &FetchError{URL: url, Err: err}
		}
		body = string(b)
		return nil
	})
	if err != nil {
		return "", err
	}
	return body, nil
}
