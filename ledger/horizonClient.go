package ledger

import (
	"context"
	"fmt"
	"net/http"
	"offline-reconciler-go/transactions"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	PAYMENTS_PATH = "/payments"
)

type paymentRequest struct {
	ID          string `json:"id"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Amount      string `json:"amount"`
	Timestamp   int64  `json:"timestamp"`
	Nonce       string `json:"nonce"`
	Signature   string `json:"signature"`
	Memo        string `json:"memo,omitempty"`
}

type paymentResponse struct {
	Hash string `json:"hash"`
}

// HorizonClient submits payments to a settlement gateway in front of the ledger.
// The gateway answers 409 with the original hash for ids it has already settled.
type HorizonClient struct {
	baseURL string
	client  *resty.Client
}

func NewHorizonClient(
	baseURL string, timeout time.Duration, retryCount int,
) *HorizonClient {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(retryCount)
	client.SetRetryWaitTime(500 * time.Millisecond)
	client.SetRetryMaxWaitTime(5 * time.Second)

	return &HorizonClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (h *HorizonClient) Submit(
	ctx context.Context, tx *transactions.Transaction,
) (string, error) {
	request := paymentRequest{
		ID:          tx.ID,
		Source:      tx.Sender,
		Destination: tx.Recipient,
		Amount:      tx.AmountString(),
		Timestamp:   tx.Timestamp,
		Nonce:       tx.Nonce,
		Signature:   tx.Signature,
		Memo:        tx.Memo,
	}

	var result paymentResponse
	response, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(request).
		SetResult(&result).
		SetError(&result).
		Post(h.baseURL + PAYMENTS_PATH)
	if err != nil {
		return "", fmt.Errorf("submitting %s: %w", tx.ID, err)
	}

	switch response.StatusCode() {
	case http.StatusOK, http.StatusCreated:
		if len(result.Hash) == 0 {
			return "", &SubmissionError{
				StatusCode: response.StatusCode(),
				Body:       "response carries no hash",
			}
		}
		return result.Hash, nil
	case http.StatusConflict:
		return result.Hash, ErrAlreadySettled
	default:
		return "", &SubmissionError{
			StatusCode: response.StatusCode(),
			Body:       response.String(),
		}
	}
}
