package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gescom/internal/apierror"
	"gescom/internal/dto"
	"gescom/internal/model"
	"gescom/internal/repository"
	"gescom/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// notFound converts gorm.ErrRecordNotFound into a 404 business error naming
// the entity; other errors pass through.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.NotFound(format, args...)
	}
	return err
}

func parseID(s, champ string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, apierror.Validation("%s invalide", champ)
	}
	return id, nil
}

func parseOptionalID(s *string, champ string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := parseID(*s, champ)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// parseDate reads a YYYY-MM-DD date, defaulting to now when empty.
func parseDate(s, champ string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, apierror.Validation("%s invalide (format attendu AAAA-MM-JJ)", champ)
	}
	return t, nil
}

func optionalIDString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

// uniqueArticles rejects a line set naming the same article twice: line
// collections are diffed by article.
func uniqueArticles(ids []uuid.UUID) error {
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return apierror.Validation("l'article %s figure plusieurs fois dans les lignes", id)
		}
		seen[id] = true
	}
	return nil
}

func refLabel(prefix, numero string) string {
	return fmt.Sprintf("%s %s", prefix, numero)
}

func totauxToResponse(t model.Totaux) dto.TotauxResponse {
	return dto.TotauxResponse{
		SousTotal:   t.SousTotal,
		TotalRemise: t.TotalRemise,
		TotalFodec:  t.TotalFodec,
		TotalTVA:    t.TotalTVA,
		GrandTotal:  t.GrandTotal,
	}
}

// documentFilter converts the query-string filter of a document listing.
func documentFilter(f dto.DocumentFilter) (repository.DocumentFilter, error) {
	out := repository.DocumentFilter{Statut: f.Statut, Page: f.Page, Limit: f.Limit}
	var err error
	if out.TiersID, err = parseOptionalID(&f.TiersID, "tiers_id"); err != nil {
		return out, err
	}
	if f.Depuis != "" {
		t, err := parseDate(f.Depuis, "depuis")
		if err != nil {
			return out, err
		}
		out.Depuis = &t
	}
	if f.Jusqua != "" {
		t, err := parseDate(f.Jusqua, "jusqua")
		if err != nil {
			return out, err
		}
		end := t.AddDate(0, 0, 1)
		out.Jusqua = &end
	}
	return out, nil
}

// envoyerDocument enqueues the PDF + email job of a document.
func envoyerDocument(ctx context.Context, d *worker.Dispatcher, document string, id uuid.UUID, email string) error {
	if d == nil {
		return apierror.Indisponible("file de travaux indisponible")
	}
	err := d.EnqueueDocument(ctx, worker.DocumentPayload{Document: document, ID: id.String(), Email: email})
	if err != nil {
		log.Warn().Err(err).Str("document", document).Str("id", id.String()).Msg("enqueue document job failed")
		return apierror.Indisponible("file de travaux indisponible")
	}
	return nil
}

func decimalOr(v *decimal.Decimal, def decimal.Decimal) decimal.Decimal {
	if v == nil {
		return def
	}
	return *v
}

func minDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
