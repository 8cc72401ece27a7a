package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"bosjol-tactical/models"

	"gorm.io/gorm"
)

// SettledPayment is one cleared card payment reported by the payment provider.
// Reference is the attendee-scoped reference we attach at signup time:
// "<event_id>:<player_id>".
type SettledPayment struct {
	Reference string    `json:"reference"`
	EventID   string    `json:"event_id"`
	PlayerID  string    `json:"player_id"`
	Amount    float64   `json:"amount"`
	SettledAt time.Time `json:"settled_at"`
}

type getSettledPaymentsResponse struct {
	Payments []SettledPayment `json:"payments"`
}

// PaymentSyncWorker polls the card-payment provider for settled payments and
// flips the matching attendee's payment status to paid_card. Cash payments are
// recorded at the field by staff and never flow through here.
type PaymentSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string
	endpointPath string
	serviceToken string
	httpClient   *http.Client
}

func NewPaymentSyncWorker(db *gorm.DB, baseURL, endpointPath, serviceToken string) *PaymentSyncWorker {
	return &PaymentSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      baseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *PaymentSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Payment Sync Worker (card provider → attendees)…")
	go w.run(ctx)
}

func (w *PaymentSyncWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx); err != nil {
				log.Printf("❌ Payment sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Payment Sync Worker stopped")
			return
		}
	}
}

func (w *PaymentSyncWorker) syncBatch(ctx context.Context) error {
	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid payment provider URL %q: %w", w.baseURL, err)
	}
	endpoint := base.JoinPath(w.endpointPath)
	q := endpoint.Query()
	q.Set("since", w.getLastSettledAt().UTC().Format(time.RFC3339))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call payment provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("payment provider returned status %d: %s", resp.StatusCode, string(body))
	}

	var settled getSettledPaymentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&settled); err != nil {
		return fmt.Errorf("failed to decode payment response: %w", err)
	}
	if len(settled.Payments) == 0 {
		return nil
	}

	applied := 0
	for _, p := range settled.Payments {
		if p.EventID == "" || p.PlayerID == "" {
			continue
		}
		// Only flip attendees still marked unpaid; cash settled at the
		// field wins over a late card settlement.
		res := w.db.Model(&models.Attendee{}).
			Where("event_id = ? AND player_id = ? AND payment_status = ?",
				p.EventID, p.PlayerID, models.PaymentUnpaid).
			Update("payment_status", models.PaymentPaidCard)
		if res.Error != nil {
			log.Printf("⚠️ Failed to mark payment for event %s player %s: %v", p.EventID, p.PlayerID, res.Error)
			continue
		}
		applied += int(res.RowsAffected)
	}

	if applied > 0 {
		log.Printf("[SYNC] ✅ Marked %d attendee(s) as paid by card", applied)
	}
	return nil
}

// getLastSettledAt approximates a cursor: payments settle close to event day,
// so a 7-day lookback with idempotent updates is enough.
func (w *PaymentSyncWorker) getLastSettledAt() time.Time {
	return time.Now().AddDate(0, 0, -7)
}
