package service

import (
	"context"
	"time"

	"gescom/internal/dto"
	"gescom/internal/model"
	"gescom/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ajustement is one delta-based change of an article's quantity counters.
type Ajustement struct {
	ArticleID   uuid.UUID
	Qte         decimal.Decimal
	QtePhysique decimal.Decimal
	QteVirtual  decimal.Decimal
	Type        string
	Motif       string
	ReferenceID *uuid.UUID
}

func (a Ajustement) nul() bool {
	return a.Qte.IsZero() && a.QtePhysique.IsZero() && a.QteVirtual.IsZero()
}

// mouvementPhysique moves qte and qte_physique together, the way receptions,
// client orders and deliveries do.
func mouvementPhysique(articleID uuid.UUID, delta decimal.Decimal, typ, motif string, ref uuid.UUID) Ajustement {
	return Ajustement{ArticleID: articleID, Qte: delta, QtePhysique: delta, Type: typ, Motif: motif, ReferenceID: &ref}
}

// mouvementVirtuel moves qte_virtual only, the way purchase orders do.
func mouvementVirtuel(articleID uuid.UUID, delta decimal.Decimal, motif string, ref uuid.UUID) Ajustement {
	return Ajustement{ArticleID: articleID, QteVirtual: delta, Type: model.MouvementCommandeFournisseur, Motif: motif, ReferenceID: &ref}
}

// InventaireService is the only writer of the article quantity counters.
// Every document service calls it inside its own transaction.
type InventaireService interface {
	// ArticleTx loads and locks an article for the rest of the transaction.
	ArticleTx(tx *gorm.DB, id uuid.UUID) (*model.Article, error)
	// AjusterTx applies the deltas and journals them; it returns the article
	// with its new counters.
	AjusterTx(tx *gorm.DB, a Ajustement) (*model.Article, error)
	// FixerQteTx overwrites qte with an absolute value (depot reconciliation).
	FixerQteTx(tx *gorm.DB, articleID uuid.UUID, qte decimal.Decimal, typ, motif string, ref *uuid.UUID) error
	ListerMouvements(ctx context.Context, filter dto.MouvementFilter) (*dto.Page[dto.MouvementResponse], error)
}

type inventaireService struct {
	articles   repository.ArticleRepository
	mouvements repository.MouvementStockRepository
}

func NewInventaireService(articles repository.ArticleRepository, mouvements repository.MouvementStockRepository) InventaireService {
	return &inventaireService{articles: articles, mouvements: mouvements}
}

func (s *inventaireService) ArticleTx(tx *gorm.DB, id uuid.UUID) (*model.Article, error) {
	a, err := s.articles.FindForUpdateTx(tx, id)
	if err != nil {
		return nil, notFound(err, "Article %s introuvable", id)
	}
	return a, nil
}

func (s *inventaireService) AjusterTx(tx *gorm.DB, aj Ajustement) (*model.Article, error) {
	art, err := s.ArticleTx(tx, aj.ArticleID)
	if err != nil {
		return nil, err
	}
	if aj.nul() {
		return art, nil
	}
	if err := s.articles.AddQuantitesTx(tx, aj.ArticleID, aj.Qte, aj.QtePhysique, aj.QteVirtual); err != nil {
		return nil, err
	}
	art.Qte = art.Qte.Add(aj.Qte)
	art.QtePhysique = art.QtePhysique.Add(aj.QtePhysique)
	art.QteVirtual = art.QteVirtual.Add(aj.QteVirtual)

	mov := &model.MouvementStock{
		ArticleID:        aj.ArticleID,
		Type:             aj.Type,
		DeltaQte:         aj.Qte,
		DeltaQtePhysique: aj.QtePhysique,
		DeltaQteVirtual:  aj.QteVirtual,
		QteApres:         art.Qte,
		QtePhysiqueApres: art.QtePhysique,
		QteVirtualApres:  art.QteVirtual,
		Motif:            aj.Motif,
		ReferenceID:      aj.ReferenceID,
	}
	if err := s.mouvements.CreateTx(tx, mov); err != nil {
		return nil, err
	}
	return art, nil
}

func (s *inventaireService) FixerQteTx(tx *gorm.DB, articleID uuid.UUID, qte decimal.Decimal, typ, motif string, ref *uuid.UUID) error {
	art, err := s.ArticleTx(tx, articleID)
	if err != nil {
		return err
	}
	delta := qte.Sub(art.Qte)
	if delta.IsZero() {
		return nil
	}
	if err := s.articles.SetQteTx(tx, articleID, qte); err != nil {
		return err
	}
	return s.mouvements.CreateTx(tx, &model.MouvementStock{
		ArticleID:        articleID,
		Type:             typ,
		DeltaQte:         delta,
		QteApres:         qte,
		QtePhysiqueApres: art.QtePhysique,
		QteVirtualApres:  art.QteVirtual,
		Motif:            motif,
		ReferenceID:      ref,
	})
}

func (s *inventaireService) ListerMouvements(ctx context.Context, filter dto.MouvementFilter) (*dto.Page[dto.MouvementResponse], error) {
	f := repository.MouvementStockFilter{Type: filter.Type, Page: filter.Page, Limit: filter.Limit}
	var err error
	if f.ArticleID, err = parseOptionalID(&filter.ArticleID, "article_id"); err != nil {
		return nil, err
	}
	if f.ReferenceID, err = parseOptionalID(&filter.ReferenceID, "reference_id"); err != nil {
		return nil, err
	}
	if filter.Depuis != "" {
		t, err := parseDate(filter.Depuis, "depuis")
		if err != nil {
			return nil, err
		}
		f.Depuis = &t
	}
	if filter.Jusqua != "" {
		t, err := parseDate(filter.Jusqua, "jusqua")
		if err != nil {
			return nil, err
		}
		end := t.AddDate(0, 0, 1)
		f.Jusqua = &end
	}

	rows, total, err := s.mouvements.List(ctx, f)
	if err != nil {
		return nil, err
	}
	data := make([]dto.MouvementResponse, 0, len(rows))
	for _, m := range rows {
		r := dto.MouvementResponse{
			ID:               m.ID.String(),
			ArticleID:        m.ArticleID.String(),
			Type:             m.Type,
			DeltaQte:         m.DeltaQte,
			DeltaQtePhysique: m.DeltaQtePhysique,
			DeltaQteVirtual:  m.DeltaQteVirtual,
			QteApres:         m.QteApres,
			QtePhysiqueApres: m.QtePhysiqueApres,
			QteVirtualApres:  m.QteVirtualApres,
			Motif:            m.Motif,
			ReferenceID:      optionalIDString(m.ReferenceID),
			CreatedAt:        m.CreatedAt.Format(time.RFC3339),
		}
		if m.Article != nil {
			r.Article = m.Article.Designation
		}
		data = append(data, r)
	}
	return dto.NewPage(data, total, filter.Page, filter.Limit), nil
}
