package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/config"
	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/domain"
)

// RecordStoreResolver resolves participants against an Airtable-style
// record store over HTTP.
type RecordStoreResolver struct {
	baseURL      string
	collectionID string
	token        string
	httpClient   *http.Client
	logger       *zap.Logger
}

// NewRecordStoreResolver builds the default roster backend.
func NewRecordStoreResolver(cfg config.RosterConfig, logger *zap.Logger) *RecordStoreResolver {
	return &RecordStoreResolver{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		collectionID: cfg.CollectionID,
		token:        cfg.Token,
		httpClient:   &http.Client{Timeout: cfg.UpstreamTimeout()},
		logger:       logger,
	}
}

type recordList struct {
	Records []struct {
		ID     string         `json:"id"`
		Fields map[string]any `json:"fields"`
	} `json:"records"`
}

// Resolve queries the collection for at most one record matching the UUID.
// Non-success statuses and empty result sets both read as unknown identity.
func (r *RecordStoreResolver) Resolve(ctx context.Context, uuid string) (*domain.Participant, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.lookupURL(uuid), nil)
	if err != nil {
		return nil, fmt.Errorf("build roster request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.token)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("roster lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.logger.Warn("roster lookup returned non-success status",
			zap.Int("status", resp.StatusCode),
		)
		return nil, nil
	}

	var list recordList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode roster response: %w", err)
	}
	if len(list.Records) == 0 {
		return nil, nil
	}

	fields := list.Records[0].Fields
	return &domain.Participant{
		UUID:            uuid,
		Role:            roleFromAttribute(fields["Role"]),
		ZoomEmail:       contactFromAttribute(fields["ZoomEmail"]),
		AllowedMeetings: allowedMeetingsFromAttribute(fields["AllowedMeetings"]),
	}, nil
}

func (r *RecordStoreResolver) lookupURL(uuid string) string {
	formula := fmt.Sprintf("{UUID}='%s'", strings.ReplaceAll(uuid, "'", `\'`))
	return fmt.Sprintf("%s/%s?maxRecords=1&filterByFormula=%s",
		r.baseURL, r.collectionID, url.QueryEscape(formula))
}
