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

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MirroredMember matches the JSON shape of the membership service's public
// profiles endpoint.
type MirroredMember struct {
	ExternalID string    `json:"external_id"`
	Callsign   string    `json:"callsign"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	AvatarURL  string    `json:"avatar_url"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type getMemberChangesResponse struct {
	Members []MirroredMember `json:"members"`
}

// MemberSyncWorker mirrors club member contact details from the membership
// service into the local roster. It only touches profile columns — stats,
// rank and history stay owned by finalization.
type MemberSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string
	endpointPath string
	serviceToken string
	httpClient   *http.Client
}

func NewMemberSyncWorker(db *gorm.DB, baseURL, endpointPath, serviceToken string) *MemberSyncWorker {
	return &MemberSyncWorker{
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

func (w *MemberSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Member Sync Worker (membership service → players)…")
	go w.run(ctx)
}

func (w *MemberSyncWorker) run(ctx context.Context) {
	// Initial backfill from the beginning of time.
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial member sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.getLastSyncTime()); err != nil {
				log.Printf("❌ Member sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Member Sync Worker stopped")
			return
		}
	}
}

// getLastSyncTime finds the most recent UpdatedAt synced into the roster.
func (w *MemberSyncWorker) getLastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM players WHERE deleted_at IS NULL AND external_member_id <> ''").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

func (w *MemberSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid membership service URL %q: %w", w.baseURL, err)
	}
	endpoint := base.JoinPath(w.endpointPath)
	q := endpoint.Query()
	q.Set("since", since.UTC().Format(time.RFC3339))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call membership service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("membership service returned status %d: %s", resp.StatusCode, string(body))
	}

	var changes getMemberChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&changes); err != nil {
		return fmt.Errorf("failed to decode membership response: %w", err)
	}
	if len(changes.Members) == 0 {
		return nil
	}

	players := make([]models.Player, 0, len(changes.Members))
	for _, m := range changes.Members {
		if m.ExternalID == "" || m.Callsign == "" {
			continue
		}
		players = append(players, models.Player{
			ID:               uuid.NewString(), // used only on first insert
			ExternalMemberID: m.ExternalID,
			Callsign:         m.Callsign,
			FirstName:        m.FirstName,
			LastName:         m.LastName,
			Email:            m.Email,
			Phone:            m.Phone,
			AvatarURL:        m.AvatarURL,
		})
	}
	if len(players) == 0 {
		return nil
	}

	// Upsert profile columns only; existing stats are never overwritten.
	if err := w.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_member_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"callsign",
			"first_name",
			"last_name",
			"email",
			"phone",
			"avatar_url",
			"updated_at",
		}),
	}).Create(&players).Error; err != nil {
		return fmt.Errorf("failed to upsert %d player(s): %w", len(players), err)
	}

	log.Printf("[SYNC] ✅ Upserted %d member profile(s) into roster", len(players))
	return nil
}
